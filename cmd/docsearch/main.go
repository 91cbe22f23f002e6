// ABOUTME: docsearch HTTP server entry point
// ABOUTME: Flag parsing, wiring, and graceful shutdown

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nainya/docsearch/internal/logger"
	"github.com/nainya/docsearch/internal/metrics"
	"github.com/nainya/docsearch/internal/server"
	"github.com/nainya/docsearch/pkg/ocr/tesseract"
)

var (
	port      = flag.Int("port", 8080, "API server port")
	obsPort   = flag.Int("obs-port", 9090, "Observability server port (metrics, pprof)")
	dbPath    = flag.String("db", "docsearch.db", "Database file path")
	logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logPretty = flag.Bool("log-pretty", false, "Pretty-print logs for development")
)

func main() {
	flag.Parse()

	logger.InitGlobalLogger(logger.Config{Level: *logLevel, Pretty: *logPretty})
	log := logger.GetGlobalLogger()
	log.LogServerStart(*port, *dbPath)

	m := metrics.NewMetrics()

	srv, err := server.NewServer(*dbPath, log, m)
	if err != nil {
		log.Fatal("Failed to create server").Err(err).Send()
	}
	defer srv.Close()
	srv.SetOCREngine(tesseract.NewTesseractEngine())

	api := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	obs := server.NewObservabilityServer(*obsPort, log)
	go func() {
		if err := obs.Start(); err != nil {
			log.Error("Observability server stopped").Err(err).Send()
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.LogServerShutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := api.Shutdown(ctx); err != nil {
			log.Error("API shutdown failed").Err(err).Send()
		}
		if err := obs.Shutdown(ctx); err != nil {
			log.Error("Observability shutdown failed").Err(err).Send()
		}
	}()

	log.LogServerReady(*port)
	if err := api.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Failed to serve").Err(err).Send()
	}
}
