// Command relay fans brush messages out between sites and replays the
// current board to late joiners.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/milk9111/brushtoy/replication"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	debug := flag.Bool("debug", false, "enable debug logging")
	advertise := flag.Bool("advertise", true, "announce the relay over mDNS")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *addr, *advertise, logger); err != nil {
		logger.Fatal("relay", zap.Error(err))
	}
}

func run(ctx context.Context, addr string, advertise bool, logger *zap.Logger) error {
	hub := replication.NewHub(logger)
	defer hub.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           newMux(hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("relay listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if advertise {
		port := ln.Addr().(*net.TCPAddr).Port
		g.Go(func() error {
			server, err := replication.Advertise(port, "brushtoy relay", "port="+strconv.Itoa(port))
			if err != nil {
				logger.Warn("mdns advertise failed", zap.Error(err))
				return nil
			}
			<-ctx.Done()
			return server.Shutdown()
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type status struct {
	Peers   int `json:"peers"`
	Brushes int `json:"brushes"`
}

func newMux(hub *replication.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status{Peers: hub.PeerCount(), Brushes: hub.BrushCount()})
	})
	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, hub.Snapshot())
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
