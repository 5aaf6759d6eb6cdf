// internal/table/table_test.go
package table

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mwiater/evalboard/internal/evaluation"
)

func result(id int, transcript string, evals ...evaluation.EvaluationResult) evaluation.TestResult {
	return evaluation.TestResult{
		TestID:            id,
		CallType:          "inbound",
		Transcript:        transcript,
		EvaluationResults: evals,
		CustomerConfig:    evaluation.ModelConfig{SystemPrompt: "customer prompt"},
	}
}

func eval(name string, score float64, passed bool) evaluation.EvaluationResult {
	return evaluation.EvaluationResult{Name: name, Score: evaluation.Float(score), Passed: passed}
}

const sevenLines = "l1\nl2\nl3\nl4\nl5\nl6\nl7"

func TestTranscriptCollapseAndExpand(t *testing.T) {
	text, hint := Transcript(sevenLines, false)
	if text != "l1\nl2\nl3\nl4\nl5\n..." || !hint {
		t.Fatalf("collapsed transcript = %q hint=%v", text, hint)
	}
	text, hint = Transcript(sevenLines, true)
	if text != sevenLines || hint {
		t.Fatalf("expanded transcript = %q hint=%v", text, hint)
	}
	text, hint = Transcript("a\nb\nc\nd\ne", false)
	if text != "a\nb\nc\nd\ne" || hint {
		t.Fatalf("five-line transcript should not collapse, got %q hint=%v", text, hint)
	}
}

func TestBuildHeadersUseEvaluatorUnion(t *testing.T) {
	results := []evaluation.TestResult{
		result(1, "x", eval("accuracy", 0.5, true)),
		result(2, "y", eval("politeness", 1, true), eval("accuracy", 0.25, false)),
	}
	view := Build(results, 1, nil)

	want := []string{"Test ID", "Type", "Customer Prompt", "Transcript", "accuracy Score", "politeness Score"}
	if strings.Join(view.Headers, ",") != strings.Join(want, ",") {
		t.Fatalf("headers = %v, want %v", view.Headers, want)
	}
	if view.ColSpan() != 6 {
		t.Fatalf("expected colspan 6, got %d", view.ColSpan())
	}

	first := view.Rows[0].Scores
	if first[0].Text != "0.50" || !first[0].Present {
		t.Fatalf("unexpected first score %+v", first[0])
	}
	if first[1].Text != MissingScore || first[1].Present {
		t.Fatalf("expected missing politeness score, got %+v", first[1])
	}
	second := view.Rows[1].Scores
	if second[0].Text != "0.25" || second[0].Passed || second[1].Text != "1.00" {
		t.Fatalf("unexpected second row scores %+v", second)
	}
	if view.Rows[1].CustomerPrompt != "customer prompt" {
		t.Fatalf("unexpected customer prompt %q", view.Rows[1].CustomerPrompt)
	}
}

func TestBuildEmpty(t *testing.T) {
	view := Build(nil, 0, nil)
	if !view.Empty() {
		t.Fatal("expected empty view")
	}
	if view.ColSpan() != len(BaseHeaders) {
		t.Fatalf("expected colspan %d, got %d", len(BaseHeaders), view.ColSpan())
	}
}

func TestFormatScoreNaN(t *testing.T) {
	if got := FormatScore(evaluation.NaN()); got != "NaN" {
		t.Fatalf("FormatScore(NaN) = %q", got)
	}
	if got := FormatScore(0.4567); got != "0.46" {
		t.Fatalf("FormatScore = %q", got)
	}
}

func TestExpansionToggleAndGenerationReset(t *testing.T) {
	exp := NewExpansion()
	results := []evaluation.TestResult{result(1, sevenLines), result(2, sevenLines)}

	if !exp.Toggle(1, 1) {
		t.Fatal("expected first toggle to expand")
	}
	view := Build(results, 1, exp)
	if !view.Rows[0].Expanded || view.Rows[0].ShowHint || view.Rows[0].Transcript != sevenLines {
		t.Fatalf("expected row 1 expanded, got %+v", view.Rows[0])
	}
	if view.Rows[1].Expanded || !view.Rows[1].ShowHint {
		t.Fatalf("expected row 2 collapsed, got %+v", view.Rows[1])
	}
	if results[0].Transcript != sevenLines {
		t.Fatal("expanding must not mutate the transcript")
	}

	view = Build(results, 2, exp)
	if view.Rows[0].Expanded {
		t.Fatal("expected expansion reset for a new generation")
	}
	if exp.Toggle(2, 1) != true || exp.Toggle(2, 1) != false {
		t.Fatal("expected toggle to flip state")
	}
}

func TestCheckUploadName(t *testing.T) {
	if err := CheckUploadName("report.json"); err != nil {
		t.Fatalf("expected .json accepted, got %v", err)
	}
	for _, name := range []string{"report.txt", "report.JSON", "json", ""} {
		if err := CheckUploadName(name); !errors.Is(err, ErrNotJSON) {
			t.Fatalf("expected ErrNotJSON for %q, got %v", name, err)
		}
	}
}

func TestRenderText(t *testing.T) {
	results := []evaluation.TestResult{
		result(7, sevenLines, eval("accuracy", 0.9, true)),
		result(8, "short", eval("accuracy", 0.1, false)),
	}
	var buf bytes.Buffer
	if err := RenderText(&buf, Build(results, 1, nil), TextOptions{NoColor: true, PromptWidth: 8}); err != nil {
		t.Fatalf("RenderText error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Test ID | Type | Customer Prompt | Transcript | accuracy Score", "#7  inbound", "customer…", "    l5\n    ...", "(use --full to expand)", "accuracy 0.90", "accuracy 0.10"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "l6") {
		t.Fatalf("collapsed output should not contain line 6:\n%s", out)
	}

	buf.Reset()
	if err := RenderText(&buf, Build(nil, 0, nil), TextOptions{NoColor: true}); err != nil {
		t.Fatalf("RenderText error: %v", err)
	}
	if !strings.Contains(buf.String(), EmptyMessage) {
		t.Fatalf("expected empty message, got %s", buf.String())
	}

	buf.Reset()
	wrapped := []evaluation.TestResult{result(9, "alpha beta gamma", eval("accuracy", 1, true))}
	if err := RenderText(&buf, Build(wrapped, 1, nil), TextOptions{NoColor: true, WrapWidth: 10}); err != nil {
		t.Fatalf("RenderText error: %v", err)
	}
	if !strings.Contains(buf.String(), "    alpha beta\n    gamma\n") {
		t.Fatalf("expected wrapped transcript, got:\n%s", buf.String())
	}
}
