// internal/table/table.go

// Package table builds the results table view: dynamic evaluator columns,
// collapsible transcripts and the empty-state placeholder. It is shared by the
// web and terminal dashboards and by the plain-text CLI output.
package table

import (
	"fmt"

	"github.com/mwiater/evalboard/internal/evaluation"
	"github.com/mwiater/evalboard/internal/util"
)

const (
	// CollapsedLines is how many transcript lines a collapsed cell shows.
	CollapsedLines = 5
	// Elision is appended to a collapsed transcript.
	Elision = "\n..."
	// ExpandHint is the affordance shown under a collapsed transcript.
	ExpandHint = "Click to expand"
	// EmptyMessage is shown in place of rows when there are no results.
	EmptyMessage = "No data available. Upload a JSON file to get started."
	// MissingScore fills a score cell for an evaluator a row does not have.
	MissingScore = "-"
)

// BaseHeaders are the columns every table has, before the score columns.
var BaseHeaders = []string{"Test ID", "Type", "Customer Prompt", "Transcript"}

// Score is one evaluator cell of a row.
type Score struct {
	Evaluator string
	Text      string
	Passed    bool
	Present   bool
}

// Row is one rendered test result.
type Row struct {
	TestID         int
	Type           string
	CustomerPrompt string
	Transcript     string
	Collapsible    bool
	Expanded       bool
	ShowHint       bool
	Scores         []Score
}

// View is the rendered table.
type View struct {
	Generation uint64
	Headers    []string
	Evaluators []string
	Rows       []Row
}

// Empty reports whether the table has no rows.
func (v View) Empty() bool { return len(v.Rows) == 0 }

// ColSpan is the width of the empty-state placeholder.
func (v View) ColSpan() int { return len(v.Headers) }

// EvaluatorNames returns the union of evaluator names across results, in
// order of first appearance.
func EvaluatorNames(results []evaluation.TestResult) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range results {
		for _, e := range r.EvaluationResults {
			if seen[e.Name] {
				continue
			}
			seen[e.Name] = true
			names = append(names, e.Name)
		}
	}
	return names
}

// FormatScore renders a score with two decimals.
func FormatScore(score evaluation.Float) string {
	return fmt.Sprintf("%.2f", float64(score))
}

// Transcript returns the text shown for a transcript cell and whether the
// expand hint is shown. The transcript itself is never modified.
func Transcript(transcript string, expanded bool) (string, bool) {
	if expanded {
		return transcript, false
	}
	head, truncated := util.FirstLines(transcript, CollapsedLines)
	if !truncated {
		return transcript, false
	}
	return head + Elision, true
}

// Collapsible reports whether a transcript is long enough to collapse.
func Collapsible(transcript string) bool {
	return len(util.SplitLines(transcript)) > CollapsedLines
}

// Build renders results for the given result-set generation. exp may be nil,
// in which case every row is collapsed.
func Build(results []evaluation.TestResult, generation uint64, exp *Expansion) View {
	evaluators := EvaluatorNames(results)
	headers := make([]string, 0, len(BaseHeaders)+len(evaluators))
	headers = append(headers, BaseHeaders...)
	for _, name := range evaluators {
		headers = append(headers, name+" Score")
	}

	view := View{
		Generation: generation,
		Headers:    headers,
		Evaluators: evaluators,
		Rows:       make([]Row, 0, len(results)),
	}
	for _, r := range results {
		expanded := exp != nil && exp.IsExpanded(generation, r.TestID)
		text, hint := Transcript(r.Transcript, expanded)
		view.Rows = append(view.Rows, Row{
			TestID:         r.TestID,
			Type:           r.CallType,
			CustomerPrompt: r.CustomerConfig.SystemPrompt,
			Transcript:     text,
			Collapsible:    Collapsible(r.Transcript),
			Expanded:       expanded,
			ShowHint:       hint,
			Scores:         rowScores(r, evaluators),
		})
	}
	return view
}

func rowScores(r evaluation.TestResult, evaluators []string) []Score {
	byName := make(map[string]evaluation.EvaluationResult, len(r.EvaluationResults))
	for _, e := range r.EvaluationResults {
		if _, dup := byName[e.Name]; !dup {
			byName[e.Name] = e
		}
	}
	scores := make([]Score, len(evaluators))
	for i, name := range evaluators {
		e, ok := byName[name]
		if !ok {
			scores[i] = Score{Evaluator: name, Text: MissingScore}
			continue
		}
		scores[i] = Score{Evaluator: name, Text: FormatScore(e.Score), Passed: e.Passed, Present: true}
	}
	return scores
}
