package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/retro-plastics/squid/pkg/api"
	"github.com/retro-plastics/squid/pkg/config"
	"github.com/retro-plastics/squid/pkg/hoststat"
	"github.com/retro-plastics/squid/pkg/metrics"
	"github.com/retro-plastics/squid/pkg/snet"
	"github.com/retro-plastics/squid/pkg/squid"
	"github.com/retro-plastics/squid/pkg/store"
	"github.com/retro-plastics/squid/pkg/transport"
)

// @title           squid link daemon API
// @version         1.0
// @description     REST API for a multiplexed snet/squid link

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	configPath := pflag.StringP("config", "c", "", "Path to link timing config (YAML)")
	dbPath := pflag.String("db", "", "Path to session history database (default: ~/.config/squid/squid.db)")
	serialPort := pflag.StringP("port", "p", "/dev/ttyUSB0", "Path to the link's serial port")
	baud := pflag.Int("baud", 115200, "Serial baud rate")
	addr := pflag.StringP("addr", "a", "0.0.0.0:8080", "HTTP listen address")
	burstHz := pflag.Float64("burst-hz", 200, "Bursts per second paced against the link")
	pflag.Parse()

	ctx := context.Background()

	linkCfg := config.LinkConfig{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load link config")
		}
		linkCfg = loaded
	}
	if linkCfg.Serial.Port != "" {
		*serialPort = linkCfg.Serial.Port
	}
	if linkCfg.Serial.Baud != 0 {
		*baud = linkCfg.Serial.Baud
	}

	database, err := store.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close session database")
		}
	}()
	log.Info().Str("path", database.Path()).Msg("session database opened and migrated")

	eventLogPath := filepath.Join(filepath.Dir(database.Path()), "sessions.log.gz")
	eventLog, err := store.OpenEventLog(eventLogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session event log")
	}
	defer func() {
		if err := eventLog.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close session event log")
		}
	}()

	var plat snet.Platform
	serialDev, err := transport.OpenSerial(*serialPort, *baud)
	if err != nil {
		log.Warn().Err(err).Str("port", *serialPort).Msg("serial link unavailable, running in limited mode")
		plat = transport.NewNull()
	} else {
		plat = serialDev
		defer serialDev.Close()
	}

	conn := squid.NewConn(plat, linkCfg.Timing())
	conn.WithLogger(log.Logger.With().Str("side", "squidd").Logger())

	collector := metrics.NewLinkCollector(conn, prometheus.Labels{"link": "default"})
	prometheus.MustRegister(collector)

	monitor := hoststat.NewMonitor(log.Logger, 15*time.Second)
	monitor.Start()
	defer monitor.Stop()

	sessionID, err := database.BeginSession(ctx, "default")
	if err != nil {
		log.Error().Err(err).Msg("failed to record session start")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 1m", func() {
		if err := eventLog.Append(sessionID, "snapshot", conn.LinkIsUp(), conn.Stats()); err != nil {
			log.Error().Err(err).Msg("failed to append session snapshot")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule snapshot job")
	}
	scheduler.Start()
	defer func() {
		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
	}()

	limiter := rate.NewLimiter(rate.Limit(*burstHz), 1)
	burstCtx, cancelBurst := context.WithCancel(ctx)
	defer cancelBurst()
	go func() {
		for {
			if err := limiter.Wait(burstCtx); err != nil {
				return
			}
			conn.Burst()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutting down")
		cancelBurst()
		if err := eventLog.Append(sessionID, "stop", conn.LinkIsUp(), conn.Stats()); err != nil {
			log.Error().Err(err).Msg("failed to append session stop event")
		}
		if err := database.EndSession(ctx, sessionID, "shutdown", conn.Stats()); err != nil {
			log.Error().Err(err).Msg("failed to record session end")
		}
		os.Exit(0)
	}()

	router := api.NewRouter(conn, monitor, database)
	log.Info().Str("address", *addr).Msg("starting API server")
	if err := router.Run(*addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
