package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/retro-plastics/squid/pkg/config"
	squidmcp "github.com/retro-plastics/squid/pkg/mcp"
	"github.com/retro-plastics/squid/pkg/snet"
	"github.com/retro-plastics/squid/pkg/squid"
	"github.com/retro-plastics/squid/pkg/transport"
)

func main() {
	// Logging must go to stderr — stdout is the MCP transport.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	configPath := pflag.StringP("config", "c", "", "Path to link timing config (YAML)")
	serialPort := pflag.StringP("port", "p", "/dev/ttyUSB0", "Path to the link's serial port")
	baud := pflag.Int("baud", 115200, "Serial baud rate")
	burstHz := pflag.Float64("burst-hz", 200, "Bursts per second paced against the link")
	pflag.Parse()

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
	conn.WithLogger(log.Logger.With().Str("side", "squid-mcp").Logger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter := rate.NewLimiter(rate.Limit(*burstHz), 1)
	go func() {
		for {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			conn.Burst()
		}
	}()

	mcpServer := squidmcp.NewServer(conn)

	log.Info().Msg("starting MCP server on stdio")
	if err := mcpServer.ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}
