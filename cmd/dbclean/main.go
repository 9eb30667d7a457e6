package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/dbclean/cmd/dbclean/commands"
	"github.com/ruslano69/dbclean/pkg/executor"
	"github.com/ruslano69/dbclean/pkg/logging"
	"github.com/ruslano69/dbclean/pkg/metrics"
	"github.com/ruslano69/dbclean/pkg/presenter"
	"github.com/ruslano69/dbclean/pkg/processors"
	"github.com/ruslano69/dbclean/pkg/resultlog"
	"github.com/ruslano69/dbclean/pkg/retry"
	"github.com/ruslano69/dbclean/pkg/security"

	_ "github.com/ruslano69/dbclean/pkg/adapters/mssql"
	_ "github.com/ruslano69/dbclean/pkg/adapters/mysql"
	_ "github.com/ruslano69/dbclean/pkg/adapters/odbc"
	_ "github.com/ruslano69/dbclean/pkg/adapters/postgres"
	_ "github.com/ruslano69/dbclean/pkg/adapters/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := ParseFlags()

	if *flags.Version {
		PrintVersion()
		os.Exit(0)
	}

	if *flags.Help {
		PrintHelp()
		os.Exit(0)
	}

	// Handle config creation
	for dbType, requested := range map[string]bool{
		"postgres": *flags.CreateConfigPG,
		"mssql":    *flags.CreateConfigMSSQL,
		"sqlite":   *flags.CreateConfigSQLite,
		"mysql":    *flags.CreateConfigMySQL,
		"odbc":     *flags.CreateConfigODBC,
	} {
		if requested {
			createConfigTemplate(dbType)
			return
		}
	}

	if !commandWasSpecified(flags) {
		PrintHelp()
		os.Exit(1)
	}

	config, err := LoadConfig(*flags.Config)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	closeLog, err := logging.Setup(config.Logging)
	if err != nil {
		fatal("Failed to set up logging: %v", err)
	}
	defer closeLog()

	rt, recorder, err := buildRuntime(flags, config)
	if err != nil {
		fatal("%v", err)
	}

	cmdErr := route(ctx, flags, config, rt)

	if config.Metrics.Textfile != "" {
		if err := recorder.WriteTextfile(config.Metrics.Textfile); err != nil {
			log.Warn().Err(err).Str("path", config.Metrics.Textfile).Msg("failed to write metrics")
		}
	}

	if cmdErr != nil {
		// ошибка выполнения уже выведена презентером
		var presented *commands.PresentedError
		if errors.As(cmdErr, &presented) {
			closeLog()
			os.Exit(1)
		}
		closeLog()
		fatal("Command failed: %v", cmdErr)
	}
}

func route(ctx context.Context, flags *Flags, config *Config, rt *commands.Runtime) error {
	switch {
	case *flags.List:
		return commands.ListTables(ctx, rt)
	case *flags.TestConnection:
		return commands.TestConnection(ctx, rt)
	case *flags.Fetch != "":
		return commands.FetchTable(ctx, rt, *flags.Fetch, *flags.ChunkSize)
	case *flags.SQL != "":
		return commands.RunSQL(ctx, rt, *flags.Name, *flags.SQL)
	case *flags.Query:
		spec, err := BuildQuerySpec(*flags.Select, *flags.From, *flags.Where, config.Query)
		if err != nil {
			return err
		}
		if *flags.Name != "" {
			spec.Name = *flags.Name
		}
		return commands.RunQuery(ctx, rt, spec)
	case *flags.Interactive:
		return commands.Interactive(ctx, rt)
	case *flags.Clean != "":
		return commands.CleanFile(ctx, rt, *flags.Clean)
	case *flags.ResendDead:
		var logCfg *resultlog.Config
		if config.ResultLog.Address != "" {
			logCfg = &config.ResultLog
		}
		return commands.ResendDeadLetters(ctx, rt, config.Broker, logCfg)
	}
	return nil
}

// buildRuntime turns flags and config into a commands.Runtime
func buildRuntime(flags *Flags, config *Config) (*commands.Runtime, *metrics.Prometheus, error) {
	format, err := presenter.ParseFormat(*flags.Format)
	if err != nil {
		return nil, nil, err
	}

	safeMode := config.Database.IsSafeMode()
	if *flags.Unsafe {
		if !security.IsAdmin() {
			return nil, nil, fmt.Errorf("--unsafe requires administrator privileges (current user: %s)", security.CurrentUser())
		}
		log.Warn().Str("user", security.CurrentUser()).Msg("unsafe mode: SQL validation disabled")
		safeMode = false
	}

	recorder := metrics.NewPrometheus()

	rt := &commands.Runtime{
		DB: config.Database.AdapterConfig(),
		Executor: executor.Options{
			Timeout:  config.Database.Timeout(),
			SafeMode: safeMode,
			Recorder: recorder,
		},
		Format:  format,
		ShowSQL: *flags.ShowSQL,
		Output: commands.OutputOptions{
			XLSX:      *flags.ExportXLSX,
			CSV:       csvPath(*flags.ExportCSV, config.Export.Compress),
			Sheet:     firstNonEmpty(*flags.Sheet, config.Export.Sheet),
			S3Key:     *flags.S3Key,
			UploadS3:  config.Export.UploadS3,
			WriteBack: *flags.WriteBack,
		},
		S3: config.S3,
	}

	if !*flags.NoClean && (len(config.Cleaning) > 0 || *flags.Clean != "") {
		chain, err := processors.FromConfig(config.Cleaning)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cleaning config: %w", err)
		}
		rt.Chain = chain
	}

	if *flags.Publish {
		if config.Broker == nil {
			return nil, nil, fmt.Errorf("--publish requires a 'broker' section in config")
		}
		rt.Broker = config.Broker
	}

	if config.ResultLog.Enabled {
		resultLog := config.ResultLog
		rt.ResultLog = &resultLog
	}

	if config.Delivery.Enabled || config.Delivery.DeadLetterFile != "" {
		retryer, err := retry.NewRetryer(config.Delivery)
		if err != nil {
			return nil, nil, err
		}
		rt.Retry = retryer
	}

	return rt, recorder, nil
}

// createConfigTemplate creates a sample configuration file
func createConfigTemplate(dbType string) {
	config := CreateSampleConfig(dbType)

	if err := SaveConfig("config.yaml", config); err != nil {
		fatal("Failed to save config: %v", err)
	}

	fmt.Printf("✓ Created sample %s config: config.yaml\n", dbType)
	fmt.Println("Edit the file with your database credentials and run:")
	fmt.Printf("  dbclean --test-connection --config config.yaml\n")
}

// csvPath appends .zst when compression is enabled in config
func csvPath(path string, compress bool) string {
	if path == "" || !compress || strings.HasSuffix(strings.ToLower(path), ".zst") {
		return path
	}
	return path + ".zst"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// commandWasSpecified checks if any command was specified
func commandWasSpecified(flags *Flags) bool {
	return *flags.List ||
		*flags.TestConnection ||
		*flags.Fetch != "" ||
		*flags.Query ||
		*flags.SQL != "" ||
		*flags.Interactive ||
		*flags.Clean != "" ||
		*flags.ResendDead
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
