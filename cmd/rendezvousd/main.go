// Package main implements the rendezvous service: the control-plane process
// every rank talks to for registration, directory lookup, and the
// construction, insert-to-find and teardown barriers. It is never on the
// RMA data path.
//
// Configuration:
//   - RENDEZVOUS_LISTEN: listen address (default ":9000")
//   - RENDEZVOUS_WORLD_SIZE: number of ranks the run expects (required)
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dreamware/kmerrma/internal/rendezvous"
)

var logFatal = log.Fatalf

func main() {
	listen := getenv("RENDEZVOUS_LISTEN", ":9000")
	worldSize := mustGetenvInt("RENDEZVOUS_WORLD_SIZE")

	runID := uuid.New().String()
	log.Printf("[rendezvous %s] expecting %d ranks, listening on %s", runID, worldSize, listen)

	srv := rendezvous.NewServer(worldSize)

	s := &http.Server{
		Addr:              listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logFatal("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	log.Printf("[rendezvous %s] stopped", runID)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}

func mustGetenvInt(k string) int {
	v := os.Getenv(k)
	if v == "" {
		logFatal("missing env %s", k)
		return 0
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		logFatal("env %s must be an integer: %v", k, err)
		return 0
	}

	return n
}
