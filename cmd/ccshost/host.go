package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/ccshost/config"
	"github.com/pithecene-io/ccshost/iox"
	"github.com/pithecene-io/ccshost/log"
	"github.com/pithecene-io/ccshost/metrics"
	"github.com/pithecene-io/ccshost/mirror"
	"github.com/pithecene-io/ccshost/relay"
	"github.com/pithecene-io/ccshost/types"
)

func hostFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to YAML config file (default: $" + config.EnvConfigPath + ")",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error (overrides config)",
		},
		// Chrome on Windows passes the calling window handle.
		&cli.StringFlag{
			Name:   "parent-window",
			Hidden: true,
		},
	}
}

func hostAction(c *cli.Context) error {
	cfg, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}

	logOut, closeLog, err := openLogOutput(cfg.Log.File)
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}
	defer closeLog()

	logger := log.NewLoggerWithWriter(log.HostMeta{
		PID:    os.Getpid(),
		Origin: c.Args().First(),
	}, logOut, level)
	defer iox.DiscardErr(logger.Sync)

	ctx := context.Background()

	mir, backend, err := buildMirror(ctx, cfg.Mirror)
	if err != nil {
		logger.Error("mirror setup failed", map[string]any{"error": err.Error()})
		return cli.Exit("", exitFatal)
	}

	collector := metrics.NewCollector(types.Version, backend)

	handlers := relay.NewHandlers(relay.HandlersConfig{
		Mirror:        mir,
		MirrorTimeout: cfg.Mirror.EffectiveTimeout(),
		Logger:        logger,
		Metrics:       collector,
	})

	host, err := relay.NewHost(&relay.HostConfig{
		Input:          os.Stdin,
		Output:         os.Stdout,
		Handlers:       handlers,
		MaxPayloadSize: uint32(cfg.MaxPayloadBytes),
		Logger:         logger,
		Metrics:        collector,
	})
	if err != nil {
		logger.Error("host setup failed", map[string]any{"error": err.Error()})
		return cli.Exit("", exitFatal)
	}

	logger.Sugar().Infof("host started (mirror=%q, parent_window=%q)", backend, c.String("parent-window"))

	runErr := host.Run(ctx)
	logger.Info("host stopped", collector.Snapshot().Fields())

	if runErr != nil {
		return cli.Exit("", exitFatal)
	}
	return nil
}

// openLogOutput returns stderr, or the configured log file opened for append.
func openLogOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file %q: %w", path, err)
	}
	return f, func() { iox.DiscardClose(f) }, nil
}

// buildMirror creates the configured mirror. A nil Mirror means mirroring
// is disabled.
func buildMirror(ctx context.Context, mc config.MirrorConfig) (mirror.Mirror, string, error) {
	switch mc.Backend {
	case config.MirrorBackendNone:
		return nil, "", nil
	case config.MirrorBackendFS:
		return mirror.NewFSMirror(mc.Path), config.MirrorBackendFS, nil
	case config.MirrorBackendS3:
		bucket, prefix := mirror.ParseS3Path(mc.Path)
		m, err := mirror.NewS3Mirror(ctx, mirror.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       mc.Region,
			Endpoint:     mc.Endpoint,
			UsePathStyle: mc.S3PathStyle,
		})
		if err != nil {
			return nil, "", err
		}
		return m, config.MirrorBackendS3, nil
	default:
		return nil, "", fmt.Errorf("unknown mirror backend %q", mc.Backend)
	}
}
