package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/evitrend/internal/model"
)

// Analyzer runs the analysis for one relationship triple
type Analyzer interface {
	AnalyzeTriple(ctx context.Context, triple model.Triple) (*model.Report, error)
}

// TripleResult represents the outcome for one triple
type TripleResult struct {
	Triple model.Triple
	Report *model.Report
	Error  error
}

// GetError returns the error from the result
func (r *TripleResult) GetError() error {
	return r.Error
}

// BatchProcessor runs the analyzer over many triples one after another.
// Triples share the corpus file, so they are never run concurrently.
type BatchProcessor struct {
	analyzer Analyzer
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer) *BatchProcessor {
	return &BatchProcessor{analyzer: analyzer}
}

// ProcessTriples analyzes each triple in order. Once ctx is done the
// remaining triples are reported with the context error.
func (b *BatchProcessor) ProcessTriples(ctx context.Context, triples []model.Triple) []*TripleResult {
	results := make([]*TripleResult, 0, len(triples))

	for _, t := range triples {
		if err := ctx.Err(); err != nil {
			results = append(results, &TripleResult{Triple: t, Error: err})
			continue
		}

		report, err := b.analyzer.AnalyzeTriple(ctx, t)
		results = append(results, &TripleResult{Triple: t, Report: report, Error: err})
	}

	return results
}

// ProcessFile reads triples from a file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*TripleResult, error) {
	triples, err := ReadTriplesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read triples: %w", err)
	}

	return b.ProcessTriples(ctx, triples), nil
}

// ReadTriplesFromFile reads tab-separated "type<TAB>subject<TAB>object" lines.
// Blank lines and # comments are skipped; repeated triples are dropped.
func ReadTriplesFromFile(filePath string) ([]model.Triple, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var triples []model.Triple
	seen := make(map[model.Triple]bool)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 tab-separated fields (type, subject, object), got %d", lineNo, len(fields))
		}

		t := model.Triple{
			Type:    strings.TrimSpace(fields[0]),
			Subject: strings.TrimSpace(fields[1]),
			Object:  strings.TrimSpace(fields[2]),
		}
		if !t.Valid() {
			return nil, fmt.Errorf("line %d: empty field in %q", lineNo, line)
		}

		if !seen[t] {
			seen[t] = true
			triples = append(triples, t)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return triples, nil
}
