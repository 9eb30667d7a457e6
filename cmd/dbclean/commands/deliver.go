package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/dbclean/pkg/brokers"
	"github.com/ruslano69/dbclean/pkg/executor"
	"github.com/ruslano69/dbclean/pkg/export"
	"github.com/ruslano69/dbclean/pkg/presenter"
	"github.com/ruslano69/dbclean/pkg/resultlog"
	"github.com/ruslano69/dbclean/pkg/security"
)

// deliver cleans, presents, exports and publishes a finished run.
// The execution error (if any) is presented and returned as *PresentedError.
func deliver(ctx context.Context, rt *Runtime, r *run) error {
	outcome := resultlog.NewOutcome(r.name, r.started, r.err)
	outcome.DBType = r.dbType
	outcome.SQL = r.sql
	outcome.User = security.CurrentUser()
	outcome.Rows = r.result.Len()

	var sinkErr error
	if r.err == nil {
		sinkErr = deliverResult(ctx, rt, r, &outcome)
	} else if !r.presented {
		if err := presenter.Render(rt.out(), rt.Format, nil, r.err); err != nil {
			log.Error().Err(err).Msg("failed to present execution error")
		} else {
			r.presented = true
		}
	}

	if rt.ResultLog != nil && rt.ResultLog.Enabled {
		if err := logOutcome(ctx, rt, outcome); err != nil {
			log.Warn().Err(err).Msg("result log publish failed")
		}
	}

	if r.err != nil {
		if !r.presented {
			return r.err
		}
		return &PresentedError{Err: r.err}
	}
	return sinkErr
}

func deliverResult(ctx context.Context, rt *Runtime, r *run, outcome *resultlog.Outcome) error {
	result := r.result
	if rt.Chain != nil && rt.Chain.Len() > 0 {
		cleaned, err := rt.Chain.Process(ctx, result.Strings(), result.Columns)
		if err != nil {
			return fmt.Errorf("cleaning failed: %w", err)
		}
		result = executor.FromStrings(result.Columns, cleaned)
		log.Info().
			Strs("processors", rt.Chain.Names()).
			Int("rows_in", r.result.Len()).
			Int("rows_out", result.Len()).
			Msg("result cleaned")
	}
	outcome.RowsClean = result.Len()

	if !r.presented {
		if err := presenter.Render(rt.out(), rt.Format, result, nil); err != nil {
			return fmt.Errorf("failed to present result: %w", err)
		}
	}

	if rt.Output.WriteBack != "" {
		written, err := writeBack(ctx, rt, r, result)
		if err != nil {
			return err
		}
		outcome.RowsWritten = written
	}

	report, err := exportResult(ctx, rt, result)
	if err != nil {
		return err
	}
	if report != nil {
		outcome.ExportPath = report.Path
		outcome.Checksum = report.Checksum
	}

	if rt.Broker != nil {
		msg := &brokers.ResultMessage{
			Query:  r.name,
			DBType: r.dbType,
			SQL:    r.sql,
			Result: result,
		}
		if report != nil {
			msg.Checksum = report.Checksum
		}
		if err := publish(ctx, rt, msg); err != nil {
			return err
		}
	}

	return nil
}

// writeBack appends the result to rt.Output.WriteBack. Files loaded by
// --clean have no executor, so a connection is opened for them.
func writeBack(ctx context.Context, rt *Runtime, r *run, result *executor.Result) (int64, error) {
	exec := r.exec
	if exec == nil {
		adapter, opened, err := rt.open(ctx)
		if err != nil {
			return 0, err
		}
		defer adapter.Close(ctx)
		exec = opened
	}

	written, err := exec.Insert(ctx, rt.Output.WriteBack, result)
	if err != nil {
		return 0, fmt.Errorf("write-back to %s failed: %w", rt.Output.WriteBack, err)
	}
	fmt.Fprintf(rt.out(), "✓ Written %d row(s) to table: %s\n", written, rt.Output.WriteBack)
	return written, nil
}

// exportResult writes XLSX and/or CSV and uploads the last file to S3.
// Returns the report of the last written file.
func exportResult(ctx context.Context, rt *Runtime, result *executor.Result) (*export.Report, error) {
	var report *export.Report

	if rt.Output.XLSX != "" {
		r, err := export.ToXLSX(result, rt.Output.XLSX, rt.Output.Sheet)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(rt.out(), "✓ Written %d row(s) to: %s (xxh3 %s)\n", r.Rows, r.Path, r.Checksum)
		report = r
	}

	if rt.Output.CSV != "" {
		r, err := export.ToCSV(result, rt.Output.CSV)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(rt.out(), "✓ Written %d row(s) to: %s (xxh3 %s)\n", r.Rows, r.Path, r.Checksum)
		report = r
	}

	if rt.Output.S3Key != "" || rt.Output.UploadS3 {
		if report == nil {
			return nil, fmt.Errorf("S3 upload requires --export-xlsx or --export-csv")
		}
		if rt.S3 == nil {
			return nil, fmt.Errorf("S3 upload requires an 's3' section in config")
		}
		var location string
		err := rt.Retry.Do(ctx, "s3", report.Path, nil, func(ctx context.Context) error {
			var uerr error
			location, uerr = export.UploadS3(ctx, *rt.S3, report.Path, rt.Output.S3Key)
			return uerr
		})
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(rt.out(), "✓ Uploaded to: %s\n", location)
	}

	return report, nil
}

func publish(ctx context.Context, rt *Runtime, msg *brokers.ResultMessage) error {
	body, err := msg.Encode()
	if err != nil {
		return err
	}

	return rt.Retry.Do(ctx, "broker", msg.Query, body, func(ctx context.Context) error {
		broker, err := connectBroker(ctx, *rt.Broker)
		if err != nil {
			return err
		}
		defer broker.Close()

		if err := brokers.PublishResult(ctx, broker, msg); err != nil {
			return fmt.Errorf("failed to publish result: %w", err)
		}
		return nil
	})
}

func connectBroker(ctx context.Context, cfg brokers.Config) (brokers.MessageBroker, error) {
	broker, err := brokers.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create broker: %w", err)
	}
	if err := broker.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	return broker, nil
}

func logOutcome(ctx context.Context, rt *Runtime, outcome resultlog.Outcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	return rt.Retry.Do(ctx, "result_log", outcome.QueryName, payload, func(ctx context.Context) error {
		publisher := resultlog.NewRedisPublisher(*rt.ResultLog)
		defer publisher.Close()
		return publisher.Publish(ctx, outcome)
	})
}

// displayName returns the file name without directories and extensions
func displayName(path string) string {
	base := filepath.Base(path)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
