package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hexterrain.dev/internal/terrain/mapfile"
	"hexterrain.dev/internal/terrain/tuning"
	"hexterrain.dev/internal/transport/meshstream"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8095", "http listen address")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		mapPath    = flag.String("map", "./configs/maps/demo.yaml", "map file to serve")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[meshserver] ", log.LstdFlags|log.Lmicroseconds)

	geo, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		geo = tuning.Defaults()
	}
	m, err := mapfile.Load(*mapPath)
	if err != nil {
		logger.Fatalf("load map: %v", err)
	}

	stream := meshstream.NewServer(m.Name, geo, logger)
	h, err := newHost(geo, m, stream, logger)
	if err != nil {
		logger.Fatalf("build world: %v", err)
	}
	stream.SetEditFunc(h.Edit)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.Handle("/v1/", stream.Handler())

	ctx, cancel := signalContext()
	defer cancel()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
