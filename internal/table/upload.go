// internal/table/upload.go
package table

import (
	"errors"
	"strings"
)

// UploadErrorMessage is shown when a non-JSON file is selected.
const UploadErrorMessage = "Please upload a JSON file"

// ErrNotJSON is returned by CheckUploadName for names without a .json suffix.
var ErrNotJSON = errors.New(UploadErrorMessage)

// CheckUploadName accepts only file names ending in ".json".
func CheckUploadName(name string) error {
	if !strings.HasSuffix(name, ".json") {
		return ErrNotJSON
	}
	return nil
}
