package evalboard

import (
	"fmt"
	"io"

	"github.com/mwiater/evalboard/internal/evaluation"
	"github.com/mwiater/evalboard/internal/logging"
)

func runInspect(out io.Writer, path string, opts outputOptions) error {
	data, err := readReport(path)
	if err != nil {
		return err
	}
	report, err := evaluation.ParseRunReport(data)
	if err != nil {
		logging.LogEvent("Error parsing run report %s: %v", path, err)
		return fmt.Errorf("%s: %w", path, err)
	}
	return writeReport(out, report, opts)
}
