// Command lcmrun registers lambdas and processes batches described by a YAML
// run file, printing log entries and outputs as JSON lines.
//
// Usage:
//
//	lcmrun run -config run.yaml
//	lcmrun schema
//	lcmrun version
package main

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"flag"
	"fmt"
	"io"
	"os"

	compute "github.com/reglet-dev/compute-bridge"
	"github.com/reglet-dev/compute-bridge/config"
	"github.com/reglet-dev/compute-bridge/domain/entities"
	"github.com/reglet-dev/compute-bridge/domain/errors"
	"github.com/reglet-dev/compute-bridge/engine"
)

var version = "dev"

const usage = `usage: lcmrun <command> [flags]

commands:
  run -config FILE   register lambdas and process batches
  schema             print the run file JSON schema
  version            print the version
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch args[0] {
	case "run":
		return runBatches(ctx, args[1:], stdout, stderr)
	case "schema":
		schema, err := config.Schema()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, string(schema))
		return 0
	case "version":
		fmt.Fprintf(stdout, "lcmrun %s\n", version)
		return 0
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

// line is one JSON output record. Exactly one field is set.
type line struct {
	Log    *entities.LogEntry `json:"log,omitempty"`
	Output *entities.Batch    `json:"output,omitempty"`
	Error  *failure           `json:"error,omitempty"`
}

type failure struct {
	Message  string `json:"message"`
	LambdaID int32  `json:"lambda_id"`
	BatchID  int32  `json:"batch_id,omitempty"`
	Code     int32  `json:"code"`
}

func runBatches(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML run file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *configPath == "" {
		fmt.Fprintln(stderr, "run: -config is required")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := cfg.Log.NewLogger(stderr)

	cc, err := compute.New(ctx,
		compute.WithLogger(logger),
		compute.WithLimits(cfg.BridgeLimits()),
		compute.WithEngine(engine.WithConfig(cfg.EngineConfig())),
	)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create compute context", "error", err)
		return 1
	}
	defer cc.Close()

	enc := json.NewEncoder(stdout)
	cancel := cc.WhenLogEntry(func(e entities.LogEntry) {
		_ = enc.Encode(line{Log: &e})
	})
	defer cancel()

	failed := false
	report := func(lambdaID, batchID int32, err error) bool {
		var ce *errors.ComputeError
		if !stdErrors.As(err, &ce) {
			logger.ErrorContext(ctx, "fatal bridge error", "lambda_id", lambdaID, "batch_id", batchID, "error", err)
			return false
		}
		failed = true
		_ = enc.Encode(line{Error: &failure{
			LambdaID: lambdaID,
			BatchID:  batchID,
			Code:     int32(ce.Code),
			Message:  ce.Message,
		}})
		return true
	}

	for _, l := range cfg.Lambdas {
		program, err := cfg.Program(l)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load lambda", "error", err)
			return 1
		}
		if err := cc.Register(ctx, entities.Lambda{ID: l.ID, Program: program}); err != nil {
			if !report(l.ID, 0, err) {
				return 1
			}
			continue
		}
		logger.InfoContext(ctx, "lambda registered", "lambda_id", l.ID, "path", l.Path)
	}

	for _, b := range cfg.Batches {
		data, err := cfg.Payload(b)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load batch", "error", err)
			return 1
		}
		out, err := cc.Process(ctx, entities.Batch{LambdaID: b.LambdaID, BatchID: b.BatchID, Data: data})
		if err != nil {
			if !report(b.LambdaID, b.BatchID, err) {
				return 1
			}
			continue
		}
		_ = enc.Encode(line{Output: &out})
	}

	if failed {
		return 1
	}
	return 0
}
