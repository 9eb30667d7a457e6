package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ruslano69/dbclean/pkg/executor"
	"github.com/ruslano69/dbclean/pkg/export"
	"github.com/ruslano69/dbclean/pkg/processors"
)

// CleanFile loads a CSV/XLSX file, runs the cleaning chain and writes the result.
// Without a configured chain only duplicates are removed.
func CleanFile(ctx context.Context, rt *Runtime, path string) error {
	started := time.Now()

	result, err := LoadFile(path, rt.Output.Sheet)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.out(), "Loaded %d row(s), %d column(s) from %s\n", result.Len(), len(result.Columns), path)

	local := *rt
	if local.Chain == nil || local.Chain.Len() == 0 {
		chain, err := processors.FromConfig(nil)
		if err != nil {
			return fmt.Errorf("failed to build default cleaning chain: %w", err)
		}
		local.Chain = chain
	}

	return deliver(ctx, &local, &run{
		name:    displayName(path),
		dbType:  "file",
		started: started,
		result:  result,
	})
}

// LoadFile reads a result from .xlsx, .csv or .csv.zst
func LoadFile(path, sheet string) (*executor.Result, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return export.FromXLSX(path, sheet)
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".csv.zst"):
		return export.FromCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s (supported: .xlsx, .csv, .csv.zst)", filepath.Ext(path))
	}
}
