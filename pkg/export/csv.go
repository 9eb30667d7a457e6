package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ruslano69/dbclean/pkg/executor"
)

// ToCSV сохраняет результат в CSV с заголовком. Путь *.zst сжимается zstd.
func ToCSV(result *executor.Result, path string) (*Report, error) {
	if result == nil {
		return nil, fmt.Errorf("result is nil")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(result.Columns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(result.Strings()); err != nil {
		return nil, fmt.Errorf("failed to write rows: %w", err)
	}

	data := buf.Bytes()
	if isCompressed(path) {
		var err error
		if data, err = compress(data); err != nil {
			return nil, err
		}
	}

	return writeFile(path, data, result.Len())
}

// FromCSV читает CSV (или *.zst) с заголовком в первой строке
func FromCSV(path string) (*executor.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	if isCompressed(path) {
		if data, err = decompress(data); err != nil {
			return nil, err
		}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return executor.FromStrings(header, padRows(records, len(header))), nil
}

// padRows выравнивает строки по числу колонок заголовка
func padRows(records [][]string, width int) [][]string {
	for i, rec := range records {
		switch {
		case len(rec) < width:
			padded := make([]string, width)
			copy(padded, rec)
			records[i] = padded
		case len(rec) > width:
			records[i] = rec[:width]
		}
	}
	return records
}
