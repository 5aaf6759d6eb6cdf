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

func runRerun(ctx context.Context, out io.Writer, cfg *appconfig.Config, path string, overrides configOverrides, opts outputOptions) error {
	data, err := readReport(path)
	if err != nil {
		return err
	}
	orch := dashboard.New(backend.New(cfg))
	if err := orch.UploadReport(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	orch.SetConfig(form.ApplyValues(orch.Config(), overrides))

	if err := orch.TryRerun(ctx); err != nil {
		return err
	}
	return writeResults(out, orch.Snapshot().TestResults, opts)
}
