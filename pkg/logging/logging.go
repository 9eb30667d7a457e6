// Package logging настраивает глобальный zerolog логгер:
// человекочитаемый вывод в stderr и, при необходимости, JSON файл.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config - секция logging конфигурационного файла
type Config struct {
	Level   string `yaml:"level"`   // trace, debug, info, warn, error (по умолчанию info)
	File    string `yaml:"file"`    // путь к JSON логу, пусто - без файла
	Console bool   `yaml:"console"` // писать в stderr
	JSON    bool   `yaml:"json"`    // stderr в JSON вместо ConsoleWriter
}

// Setup устанавливает log.Logger и уровень. Возвращает функцию закрытия файла лога.
func Setup(cfg Config) (func() error, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	closer := func() error { return nil }

	if cfg.Console {
		if cfg.JSON {
			writers = append(writers, os.Stderr)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		}
	}

	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f.Close
	}

	if len(writers) == 0 {
		log.Logger = zerolog.Nop()
		return closer, nil
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	return closer, nil
}
