package main

import (
	"flag"
	"fmt"
	"os"

	"ParamSweep/internal/di"
	"ParamSweep/pkg/config"
	applogger "ParamSweep/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	checkOnly := flag.Bool("check", false, "validate the config and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return 1
	}
	if *checkOnly {
		fmt.Printf("%s: ok\n", *configPath)
		return 0
	}

	l, err := di.ProvideLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	l = l.With("main")
	l.Info("starting paramsweep",
		applogger.String("env", cfg.Environment),
		applogger.String("candles", cfg.Candles.Provider),
		applogger.String("param_store", cfg.ParamStore.Backend),
		applogger.Bool("redis", cfg.Redis.Enabled),
		applogger.Strings("kafka_brokers", cfg.Kafka.Brokers),
		applogger.Bool("live", cfg.Live.Enabled),
	)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		l.Error("app initialization failed", applogger.Error(err))
		return 1
	}

	if err := app.Run(); err != nil {
		l.Error("app stopped with error", applogger.Error(err))
		return 1
	}
	return 0
}
