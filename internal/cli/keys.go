package cli

import "strings"

var envKeyReplacer = strings.NewReplacer(".", "_")

// configKeys lists every key of model.Config. Binding them lets Unmarshal
// see EVITREND_* variables for keys absent from the config file.
var configKeys = []string{
	"llm.provider", "llm.model", "llm.api_key", "llm.base_url", "llm.timeout",
	"llm.http_proxy", "llm.https_proxy", "llm.no_proxy",
	"classifier.model", "classifier.temperature", "classifier.max_tokens",
	"story.enabled", "story.model", "story.temperature", "story.max_tokens",
	"cache.enabled", "cache.dir", "cache.memory_ttl", "cache.disk_ttl",
	"rate_limiting.requests_per_second", "rate_limiting.burst_size",
	"output.dir", "output.verbose", "output.write_tsv", "output.write_xlsx", "output.write_html",
	"analysis.mode", "analysis.shift_display_limit",
}
