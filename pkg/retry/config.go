package retry

import (
	"fmt"
	"time"
)

// BackoffStrategy определяет стратегию задержки между повторами
type BackoffStrategy string

const (
	BackoffConstant    BackoffStrategy = "constant"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// Config - повторы доставки результата во внешние системы
// (брокер, Redis, S3). Выполнение SQL запросов не повторяется.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// MaxAttempts - количество попыток, включая первую
	MaxAttempts int `yaml:"max_attempts"`

	InitialDelayMs int `yaml:"initial_delay_ms"`
	MaxDelayMs     int `yaml:"max_delay_ms"`

	Strategy   BackoffStrategy `yaml:"strategy"`
	Multiplier float64         `yaml:"multiplier"` // для exponential, по умолчанию 2.0

	// Jitter - случайное отклонение задержки (0.0 - 1.0)
	Jitter float64 `yaml:"jitter"`

	// DeadLetterFile - JSON файл для недоставленных сообщений, пусто - не сохранять
	DeadLetterFile string `yaml:"dead_letter_file"`

	// DeadLetterMax - лимит записей, старые удаляются (0 = без лимита)
	DeadLetterMax int `yaml:"dead_letter_max"`
}

// InitialDelay возвращает начальную задержку
func (c *Config) InitialDelay() time.Duration {
	return time.Duration(c.InitialDelayMs) * time.Millisecond
}

// MaxDelay возвращает максимальную задержку
func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMs) * time.Millisecond
}

// Validate проверяет конфигурацию и подставляет значения по умолчанию
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.InitialDelayMs < 0 {
		return fmt.Errorf("initial_delay_ms must be >= 0")
	}
	if c.MaxDelayMs == 0 {
		c.MaxDelayMs = c.InitialDelayMs
	}
	if c.MaxDelayMs < c.InitialDelayMs {
		return fmt.Errorf("max_delay_ms (%d) must be >= initial_delay_ms (%d)", c.MaxDelayMs, c.InitialDelayMs)
	}

	switch c.Strategy {
	case "":
		c.Strategy = BackoffExponential
	case BackoffConstant, BackoffLinear, BackoffExponential:
	default:
		return fmt.Errorf("invalid backoff strategy: %s", c.Strategy)
	}

	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.Jitter < 0 || c.Jitter > 1.0 {
		return fmt.Errorf("jitter must be between 0.0 and 1.0, got %f", c.Jitter)
	}

	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию (повторы выключены)
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		MaxAttempts:    3,
		InitialDelayMs: 1000,
		MaxDelayMs:     30000,
		Strategy:       BackoffExponential,
		Multiplier:     2.0,
		Jitter:         0.1,
		DeadLetterFile: "dead_letters.json",
		DeadLetterMax:  1000,
	}
}
