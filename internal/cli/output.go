// internal/cli/output.go
package evalboard

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/mwiater/evalboard/internal/evaluation"
	"github.com/mwiater/evalboard/internal/form"
	"github.com/mwiater/evalboard/internal/table"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// outputOptions controls how results are written.
type outputOptions struct {
	Format      string
	Full        bool
	NoColor     bool
	PromptWidth int
	WrapWidth   int
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", formatTable, "output format: table, json or yaml")
	cmd.Flags().Bool("full", false, "show full transcripts in table output")
	cmd.Flags().Bool("noColor", false, "disable colored table output")
	cmd.Flags().Int("promptWidth", 80, "truncate customer prompts in table output (0 keeps them whole)")
	cmd.Flags().Int("wrap", 0, "wrap transcript lines in table output at this width (0 disables)")
}

func readOutputOptions(cmd *cobra.Command) (outputOptions, error) {
	format, _ := cmd.Flags().GetString("format")
	full, _ := cmd.Flags().GetBool("full")
	noColor, _ := cmd.Flags().GetBool("noColor")
	width, _ := cmd.Flags().GetInt("promptWidth")
	wrap, _ := cmd.Flags().GetInt("wrap")
	opts := outputOptions{Format: format, Full: full, NoColor: noColor, PromptWidth: width, WrapWidth: wrap}
	return opts, opts.validate()
}

func (o outputOptions) validate() error {
	switch o.Format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (want table, json or yaml)", o.Format)
	}
}

// writeReport renders a report in the requested format.
func writeReport(out io.Writer, report evaluation.RunReport, opts outputOptions) error {
	switch opts.Format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		results := report.Tests.Results()
		var exp *table.Expansion
		if opts.Full {
			exp = expandAll(results)
		}
		return table.RenderText(out, table.Build(results, 0, exp), table.TextOptions{
			PromptWidth: opts.PromptWidth,
			WrapWidth:   opts.WrapWidth,
			NoColor:     opts.NoColor,
		})
	}
}

// writeResults renders freshly evaluated results as a new report.
func writeResults(out io.Writer, results []evaluation.TestResult, opts outputOptions) error {
	return writeReport(out, evaluation.NewRunReport(time.Now().UTC().Format(time.RFC3339), results), opts)
}

func expandAll(results []evaluation.TestResult) *table.Expansion {
	exp := table.NewExpansion()
	seen := make(map[int]bool, len(results))
	for _, r := range results {
		if !seen[r.TestID] {
			exp.Toggle(0, r.TestID)
			seen[r.TestID] = true
		}
	}
	return exp
}

// readReport reads a run report file, accepting only .json names.
func readReport(path string) ([]byte, error) {
	if err := table.CheckUploadName(path); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return data, nil
}

// configOverrides holds config flags the user set, keyed by form field. It
// satisfies form.Values so overrides parse exactly like form input.
type configOverrides map[string]string

// overrideFlags maps flag names to the config fields they edit.
var overrideFlags = map[string]string{
	"model":        form.FieldModel,
	"temperature":  form.FieldTemperature,
	"maxTokens":    form.FieldMaxTokens,
	"systemPrompt": form.FieldSystemPrompt,
}

func (o configOverrides) Has(key string) bool {
	_, ok := o[key]
	return ok
}

func (o configOverrides) Get(key string) string { return o[key] }

func addOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().String("model", "", "model name")
	cmd.Flags().String("temperature", "", "sampling temperature")
	cmd.Flags().String("maxTokens", "", "maximum tokens")
	cmd.Flags().String("systemPrompt", "", "system prompt")
}

func collectOverrides(cmd *cobra.Command) configOverrides {
	o := configOverrides{}
	for flag, field := range overrideFlags {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			o[field] = v
		}
	}
	return o
}
