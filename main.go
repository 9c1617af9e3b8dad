package main

import (
	"burrow/pkg/cli"
	"burrow/pkg/common"
	"burrow/pkg/config"
	"burrow/pkg/disk"
	"burrow/pkg/display"
	"burrow/pkg/image"
	"burrow/pkg/sandbox"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := BurrowEngine(ctx, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(res.ExitCode)
}

func BurrowEngine(ctx context.Context, args []string) (*common.ExecutionResult, error) {
	// 1. Parse cli.def
	engine, err := cli.NewEngine(cli.DefaultDSL)
	if err != nil {
		return nil, fmt.Errorf("INTERNAL ERROR: parsing CLI definition: %w", err)
	}

	// 2. Parse command line arguments
	pr := engine.Parse(args)

	// 3. Initialize console, setup verbosity
	disp := display.NewConsole()
	defer disp.Close()

	logLevel := slog.LevelInfo
	if v, ok := pr.Invocation.Global["verbose"].(bool); ok && v {
		disp.SetVerbose(true)
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// 4. Generate any errors etc for the command line parsing
	if pr.Error != nil {
		return nil, pr.Error
	}
	if pr.Help {
		engine.PrintHelp(pr.HelpArgs...)
		return &common.ExecutionResult{ExitCode: 0}, nil
	}

	// 5. Execute commands
	sysCfg, err := config.Init()
	if err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}

	images := image.New(sysCfg)
	managers := &cli.Managers{
		Disp:       disp,
		SysCfg:     sysCfg,
		ImageMgr:   images,
		SandboxMgr: sandbox.NewManager(sysCfg, disp, images),
		DiskMgr:    disk.NewManager(sysCfg),
	}
	cli.RegisterAll(engine, managers)

	return engine.Execute(ctx, pr.Invocation)
}
