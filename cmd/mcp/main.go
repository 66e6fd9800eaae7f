package main

import (
	"flag"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/tickerlens/internal/config"
	"github.com/yourusername/tickerlens/internal/service"
)

const version = "0.1.0"

func main() {
	stdio := flag.Bool("stdio", false, "Use stdio transport")
	port := flag.String("port", "4243", "Port for the streamable HTTP transport")
	flag.Parse()

	// stdout belongs to the stdio transport, so logs always go to stderr.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	agg := service.NewAggregator(
		service.NewFMPClient(cfg.FMPAPIKey, cfg.FMPBaseURL, cfg.FMPRPS),
		service.AggregatorOptions{
			StatementLimit:     cfg.StatementLimit,
			CacheTTL:           cfg.CacheTTL,
			FetchTimeout:       cfg.FetchTimeout,
			MaxCompareTickers:  cfg.MaxCompareTickers,
			CompareConcurrency: cfg.CompareConcurrency,
		},
	)

	mcpServer := server.NewMCPServer(
		"Tickerlens",
		version,
		server.WithToolCapabilities(true),
	)
	registerTools(mcpServer, agg)

	if *stdio {
		if err := server.ServeStdio(mcpServer); err != nil {
			log.Fatal().Err(err).Msg("stdio server error")
		}
		return
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)

	log.Info().Str("port", *port).Msg("Starting MCP Streamable HTTP")
	if err := httpServer.Start(":" + *port); err != nil {
		log.Fatal().Err(err).Msg("http server error")
	}
}
