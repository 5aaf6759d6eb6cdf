package evalboard

import (
	"context"
	"fmt"
	"io"

	"github.com/mwiater/evalboard/internal/appconfig"
	"github.com/mwiater/evalboard/internal/backend"
	"github.com/mwiater/evalboard/internal/dashboard"
	"github.com/mwiater/evalboard/internal/form"
)

func runGenerate(ctx context.Context, out io.Writer, cfg *appconfig.Config, reportPath string, overrides configOverrides, synthetic form.Synthetic, opts outputOptions) error {
	orch := dashboard.New(backend.New(cfg))
	if reportPath != "" {
		data, err := readReport(reportPath)
		if err != nil {
			return err
		}
		if err := orch.UploadReport(data); err != nil {
			return fmt.Errorf("%s: %w", reportPath, err)
		}
	}
	orch.SetConfig(form.ApplyValues(orch.Config(), overrides))

	if err := orch.TryGenerateSyntheticAndRun(ctx, synthetic.NumTests, synthetic.MaxThreads); err != nil {
		return err
	}
	return writeResults(out, orch.Snapshot().TestResults, opts)
}
