package retry

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
)

// Func - одна попытка доставки
type Func func(ctx context.Context) error

// Retryer повторяет доставку с задержкой и сохраняет
// недоставленные сообщения в dead letter файл
type Retryer struct {
	config Config
	dead   *DeadLetters
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryer создает новый Retryer
func NewRetryer(config Config) (*Retryer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}

	r := &Retryer{config: config, sleep: sleepContext}
	if config.DeadLetterFile != "" {
		dead, err := OpenDeadLetters(config.DeadLetterFile, config.DeadLetterMax)
		if err != nil {
			return nil, err
		}
		r.dead = dead
	}
	return r, nil
}

// Do выполняет fn до MaxAttempts раз. После последней неудачи
// payload сохраняется в dead letter файл с указанием target и key.
// nil Retryer выполняет fn один раз.
func (r *Retryer) Do(ctx context.Context, target, key string, payload []byte, fn Func) error {
	if r == nil || !r.config.Enabled {
		return fn(ctx)
	}

	var err error
	attempt := 0
	for attempt < r.config.MaxAttempts {
		attempt++
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == r.config.MaxAttempts || ctx.Err() != nil {
			break
		}

		delay := r.delay(attempt)
		log.Warn().Err(err).
			Str("target", target).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("delivery failed, retrying")

		if serr := r.sleep(ctx, delay); serr != nil {
			break
		}
	}

	if r.dead != nil && payload != nil {
		entry := Entry{
			Target:   target,
			Key:      key,
			FailedAt: time.Now().UTC(),
			Attempts: attempt,
			Error:    err.Error(),
			Payload:  json.RawMessage(payload),
		}
		if derr := r.dead.Add(entry); derr != nil {
			log.Error().Err(derr).Str("target", target).Msg("failed to save dead letter")
		} else {
			log.Warn().Str("target", target).Str("file", r.config.DeadLetterFile).Msg("message saved to dead letters")
		}
	}

	return fmt.Errorf("delivery to %s failed after %d attempt(s): %w", target, attempt, err)
}

// DeadLetters возвращает хранилище недоставленных сообщений (nil если выключено)
func (r *Retryer) DeadLetters() *DeadLetters {
	if r == nil {
		return nil
	}
	return r.dead
}

// delay вычисляет задержку перед попыткой attempt+1
func (r *Retryer) delay(attempt int) time.Duration {
	initial := r.config.InitialDelay()

	var d time.Duration
	switch r.config.Strategy {
	case BackoffLinear:
		d = initial * time.Duration(attempt)
	case BackoffExponential:
		d = time.Duration(float64(initial) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	default:
		d = initial
	}

	if maxDelay := r.config.MaxDelay(); d > maxDelay {
		d = maxDelay
	}

	if r.config.Jitter > 0 {
		d += time.Duration(float64(d) * r.config.Jitter * (rand.Float64()*2 - 1))
		if d < 0 {
			d = initial
		}
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
