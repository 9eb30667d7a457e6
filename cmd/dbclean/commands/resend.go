package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/dbclean/pkg/brokers"
	"github.com/ruslano69/dbclean/pkg/resultlog"
	"github.com/ruslano69/dbclean/pkg/retry"
)

// ResendDeadLetters sends stored undelivered messages again.
// Delivered entries are removed; failed ones stay for the next run.
func ResendDeadLetters(ctx context.Context, rt *Runtime, brokerCfg *brokers.Config, logCfg *resultlog.Config) error {
	dead := rt.Retry.DeadLetters()
	if dead == nil {
		return fmt.Errorf("dead letters are disabled: set delivery.dead_letter_file in config")
	}

	entries := dead.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(rt.out(), "No dead letters")
		return nil
	}

	sent, failed := 0, 0
	for _, e := range entries {
		if err := resendEntry(ctx, e, brokerCfg, logCfg); err != nil {
			log.Warn().Err(err).Str("id", e.ID).Str("target", e.Target).Msg("resend failed")
			failed++
			continue
		}
		if _, err := dead.Remove(e.ID); err != nil {
			return err
		}
		sent++
	}

	fmt.Fprintf(rt.out(), "✓ Resent %d message(s), %d left\n", sent, failed)
	if failed > 0 {
		return fmt.Errorf("%d message(s) could not be resent", failed)
	}
	return nil
}

func resendEntry(ctx context.Context, e retry.Entry, brokerCfg *brokers.Config, logCfg *resultlog.Config) error {
	switch e.Target {
	case "broker":
		if brokerCfg == nil {
			return fmt.Errorf("no 'broker' section in config")
		}
		broker, err := connectBroker(ctx, *brokerCfg)
		if err != nil {
			return err
		}
		defer broker.Close()
		return broker.Send(ctx, e.Key, e.Payload)

	case "result_log":
		if logCfg == nil {
			return fmt.Errorf("no 'result_log' section in config")
		}
		var outcome resultlog.Outcome
		if err := json.Unmarshal(e.Payload, &outcome); err != nil {
			return fmt.Errorf("invalid result log payload: %w", err)
		}
		publisher := resultlog.NewRedisPublisher(*logCfg)
		defer publisher.Close()
		return publisher.Publish(ctx, outcome)

	default:
		return fmt.Errorf("unknown dead letter target: %s", e.Target)
	}
}
