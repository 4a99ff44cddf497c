package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"microlend/config"
	"microlend/core"
	"microlend/observability/logging"
	"microlend/rpc"
	"microlend/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("MICROLEND_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logSink io.Writer
	if strings.TrimSpace(cfg.LogFile) != "" {
		logSink = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}
	}
	logger := logging.Setup("microlend", env, logSink)

	owner, err := cfg.Owner()
	if err != nil {
		logger.Error("Invalid genesis owner", slog.Any("error", err))
		os.Exit(1)
	}

	var db storage.Database
	if strings.TrimSpace(cfg.DataDir) != "" {
		ldb, err := storage.NewLevelDB(cfg.DataDir)
		if err != nil {
			logger.Error("Failed to open database", slog.String("path", cfg.DataDir), slog.Any("error", err))
			os.Exit(1)
		}
		defer ldb.Close()
		db = ldb
	}

	node, err := core.NewNode(core.Genesis{
		Owner:  owner,
		Params: cfg.Lending.RiskParameters(),
		DB:     db,
	})
	if err != nil {
		logger.Error("Failed to initialise node", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Node initialised",
		slog.String("owner", owner.String()),
		slog.Uint64("height", node.Height()),
		slog.Bool("devClock", cfg.DevClock),
	)

	server := rpc.NewServer(node, cfg.DevClock)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server terminated", slog.Any("error", err))
		os.Exit(1)
	}
}
