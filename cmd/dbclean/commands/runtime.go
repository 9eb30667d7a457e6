package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ruslano69/dbclean/pkg/adapters"
	"github.com/ruslano69/dbclean/pkg/brokers"
	"github.com/ruslano69/dbclean/pkg/core/query"
	"github.com/ruslano69/dbclean/pkg/executor"
	"github.com/ruslano69/dbclean/pkg/export"
	"github.com/ruslano69/dbclean/pkg/presenter"
	"github.com/ruslano69/dbclean/pkg/processors"
	"github.com/ruslano69/dbclean/pkg/resultlog"
	"github.com/ruslano69/dbclean/pkg/retry"
)

// Runtime holds everything a command needs besides its own arguments
type Runtime struct {
	DB       adapters.Config
	Executor executor.Options
	Format   presenter.Format
	ShowSQL  bool

	// Chain cleans query results before output; nil disables cleaning
	Chain *processors.Chain

	Output OutputOptions

	// Optional sinks; nil or disabled means not used
	S3        *export.S3Config
	Broker    *brokers.Config
	ResultLog *resultlog.Config

	// Retry wraps deliveries to the sinks above; nil sends once
	Retry *retry.Retryer

	Out io.Writer
}

// OutputOptions holds export targets for a result
type OutputOptions struct {
	XLSX  string
	CSV   string
	Sheet string
	S3Key string

	// UploadS3 uploads the exported file even without S3Key
	UploadS3 bool

	// WriteBack appends the cleaned result to this existing table
	WriteBack string
}

// PresentedError is an execution error that was already shown to the user
type PresentedError struct {
	Err error
}

func (e *PresentedError) Error() string { return e.Err.Error() }

func (e *PresentedError) Unwrap() error { return e.Err }

// QuerySpec describes a query built from flags, config or the interactive builder
type QuerySpec struct {
	Name       string
	Select     string
	From       string
	Conditions []query.Condition
}

func (rt *Runtime) out() io.Writer {
	if rt.Out == nil {
		return os.Stdout
	}
	return rt.Out
}

// open connects the adapter and builds an executor for it
func (rt *Runtime) open(ctx context.Context) (adapters.Adapter, *executor.Executor, error) {
	adapter, err := adapters.New(ctx, rt.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create adapter: %w", err)
	}
	return adapter, executor.New(adapter, rt.Executor), nil
}

// run is one execution passed through cleaning, output and sinks
type run struct {
	name      string
	dbType    string
	sql       string
	started   time.Time
	result    *executor.Result
	err       error
	presented bool

	// exec is the executor that produced the result; nil for files
	exec *executor.Executor
}
