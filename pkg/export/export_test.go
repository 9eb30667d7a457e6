package export

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ruslano69/dbclean/pkg/executor"
)

func sampleResult() *executor.Result {
	return &executor.Result{
		Columns: []string{"id", "name", "city"},
		Rows: []executor.Row{
			{int64(3), "Carol", "Kazan"},
			{int64(1), "Alice, Jr.", nil},
			{int64(2), `Bob "B"`, "Moscow"},
		},
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	for _, name := range []string{"out.csv", "out.csv.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			report, err := ToCSV(sampleResult(), path)
			if err != nil {
				t.Fatalf("ToCSV failed: %v", err)
			}
			if report.Rows != 3 {
				t.Errorf("Expected 3 rows, got %d", report.Rows)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("Stat failed: %v", err)
			}
			if info.Size() != report.Bytes {
				t.Errorf("Report bytes %d != file size %d", report.Bytes, info.Size())
			}

			sum, err := FileChecksum(path)
			if err != nil {
				t.Fatalf("FileChecksum failed: %v", err)
			}
			if sum != report.Checksum {
				t.Errorf("Checksum mismatch: %s vs %s", sum, report.Checksum)
			}

			loaded, err := FromCSV(path)
			if err != nil {
				t.Fatalf("FromCSV failed: %v", err)
			}
			expected := [][]string{
				{"3", "Carol", "Kazan"},
				{"1", "Alice, Jr.", ""},
				{"2", `Bob "B"`, "Moscow"},
			}
			if !reflect.DeepEqual(loaded.Columns, []string{"id", "name", "city"}) {
				t.Errorf("Unexpected columns: %v", loaded.Columns)
			}
			if !reflect.DeepEqual(loaded.Strings(), expected) {
				t.Errorf("Unexpected rows: %v", loaded.Strings())
			}
		})
	}
}

func TestCSV_Compressed(t *testing.T) {
	dir := t.TempDir()
	plain, err := ToCSV(sampleResult(), filepath.Join(dir, "a.csv"))
	if err != nil {
		t.Fatalf("ToCSV failed: %v", err)
	}
	packed, err := ToCSV(sampleResult(), filepath.Join(dir, "a.csv.zst"))
	if err != nil {
		t.Fatalf("ToCSV failed: %v", err)
	}
	if plain.Checksum == packed.Checksum {
		t.Error("Compressed file should differ from plain CSV")
	}

	data, _ := os.ReadFile(filepath.Join(dir, "a.csv.zst"))
	// zstd magic number 0xFD2FB528 (little endian)
	if len(data) < 4 || data[0] != 0x28 || data[1] != 0xB5 || data[2] != 0x2F || data[3] != 0xFD {
		t.Errorf("Expected zstd frame, got % x", data[:4])
	}
}

func TestFromCSV_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := FromCSV(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("Expected error for missing file")
	}

	empty := filepath.Join(dir, "empty.csv")
	os.WriteFile(empty, nil, 0o644)
	if _, err := FromCSV(empty); err == nil {
		t.Error("Expected error for empty file")
	}
}

func TestXLSX_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	report, err := ToXLSX(sampleResult(), path, "users")
	if err != nil {
		t.Fatalf("ToXLSX failed: %v", err)
	}
	if report.Rows != 3 || report.Checksum == "" {
		t.Errorf("Unexpected report: %+v", report)
	}

	loaded, err := FromXLSX(path, "")
	if err != nil {
		t.Fatalf("FromXLSX failed: %v", err)
	}

	expected := [][]string{
		{"3", "Carol", "Kazan"},
		{"1", "Alice, Jr.", ""},
		{"2", `Bob "B"`, "Moscow"},
	}
	if !reflect.DeepEqual(loaded.Columns, []string{"id", "name", "city"}) {
		t.Errorf("Unexpected columns: %v", loaded.Columns)
	}
	if !reflect.DeepEqual(loaded.Strings(), expected) {
		t.Errorf("Unexpected rows: %v", loaded.Strings())
	}

	if _, err := FromXLSX(path, "missing"); err == nil {
		t.Error("Expected error for missing sheet")
	}
}

func TestChecksum_Stable(t *testing.T) {
	a := Checksum([]byte("dbclean"))
	if a != Checksum([]byte("dbclean")) || len(a) != 16 {
		t.Errorf("Unexpected checksum: %s", a)
	}
	if a == Checksum([]byte("dbclean!")) {
		t.Error("Different input must give different checksum")
	}
}
