package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/evitrend/internal/model"
)

// BuildCorrectnessPrompt asks whether a sentence implies "subject relationship object".
// The reply is expected to start with Yes or No.
func BuildCorrectnessPrompt(evidenceText, subject, relationship, object string) string {
	return fmt.Sprintf(`You need to check if the following sentence implies the statement.
Sentence: "%s"
Statement: "%s %s %s"
Only answer "Yes" or "No".
`, evidenceText, subject, relationship, object)
}

// IsAffirmative reports whether a correctness reply counts as yes
func IsAffirmative(reply string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(reply)), "yes")
}

// BuildStoryPrompt combines validated evidence with the rendered trend report
func BuildStoryPrompt(statements []model.Statement, reportText string) string {
	var b strings.Builder
	b.WriteString("Below are several correctness=1 evidences describing a biological relationship:\n\n")

	blocks := make([]string, 0, len(statements))
	for _, stmt := range statements {
		var texts []string
		for _, ev := range stmt.Evidence {
			if !ev.IsValidated() {
				continue
			}
			texts = append(texts, fmt.Sprintf("In %s (PMID: %s): %s",
				orDefault(ev.DisplayYear(), "unknown year"),
				orDefault(ev.SourceID, "unknown PMID"),
				orDefault(ev.Text, "No evidence text")))
		}
		blocks = append(blocks, fmt.Sprintf("The '%s' relationship between %s and %s is supported by:\n%s",
			orDefault(stmt.Type, "Unknown type"),
			orDefault(stmt.Subj.Name, "Unknown subject"),
			orDefault(stmt.Obj.Name, "Unknown object"),
			strings.Join(texts, " ")))
	}
	b.WriteString(strings.Join(blocks, "\n"))

	b.WriteString("\n\nAdditionally, we have a trend/conflict analysis:\n")
	b.WriteString(reportText)
	b.WriteString("\nPlease produce a coherent scientific story discussing:\n")
	b.WriteString("1) The studied relationship,\n")
	b.WriteString("2) New discoveries,\n")
	b.WriteString("3) Possible reasons for interest shifts.\n")
	b.WriteString("Use an objective and scholarly tone.\n")
	return b.String()
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
