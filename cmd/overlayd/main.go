package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/commasubs/subtitle-overlay/internal/bridge"
	"github.com/commasubs/subtitle-overlay/internal/config"
	"github.com/commasubs/subtitle-overlay/internal/manifest"
	"github.com/commasubs/subtitle-overlay/internal/options"
	"github.com/commasubs/subtitle-overlay/pkg/log"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		stdlog.Fatal("Failed to load configuration: ", err)
	}
	if cfg.System.LogFile != "" {
		fl, err := log.InitFileLogger(cfg.System.LogFile, log.ParseLevel(cfg.System.LogLevel))
		if err != nil {
			stdlog.Fatal("Failed to open log file: ", err)
		}
		defer fl.Close()
	} else {
		log.InitLogger(log.ParseLevel(cfg.System.LogLevel))
	}

	store, err := options.NewStore(cfg.System.OptionsPath())
	if err != nil {
		stdlog.Fatal("Failed to open options store: ", err)
	}

	manifests := manifest.NewClient(cfg.CDN.URL, cfg.CDN.CacheCapacity)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cron.New(cron.WithSeconds())
	recheck := manifest.NewRecheck(manifests, c, cfg.CDN.RecheckCron)
	if err := recheck.Schedule(ctx); err != nil {
		stdlog.Fatal("Failed to schedule recheck: ", err)
	}
	c.Start()

	server := bridge.NewServer(cfg.Bridge.Addr, bridge.NewRegistry(), manifests, store, recheck)
	if err := server.Start(); err != nil {
		stdlog.Fatal("Failed to start bridge: ", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	cancel()
	<-c.Stop().Done()
	if err := server.Stop(); err != nil {
		log.Error("stop bridge: %v", err)
	}
}
