// Package export сохраняет результат запроса в файлы (CSV, XLSX) и
// загружает их обратно, а также отправляет файлы в S3-совместимое хранилище.
// Каждая запись возвращает Report с контрольной суммой xxh3 записанных байт.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
)

// Report - итог записи файла
type Report struct {
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
	Bytes    int64  `json:"bytes"`
	Checksum string `json:"checksum"` // xxh3-64, hex
}

// Checksum вычисляет xxh3 (64-bit) хеш в hex
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

// FileChecksum вычисляет xxh3 хеш содержимого файла
func FileChecksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return Checksum(data), nil
}

// isCompressed - файл пишется/читается через zstd
func isCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}

// compress сжимает данные zstd. Уровень 3 - баланс скорости и размера.
func compress(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(3)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, nil), nil
}

// decompress распаковывает zstd данные
func decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(bytes.NewReader(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return out, nil
}

// writeFile записывает данные, создавая каталог, и возвращает Report
func writeFile(path string, data []byte, rows int) (*Report, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &Report{
		Path:     path,
		Rows:     rows,
		Bytes:    int64(len(data)),
		Checksum: Checksum(data),
	}, nil
}
