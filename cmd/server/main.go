package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"growarena.gg/internal/game/engine"
	"growarena.gg/internal/game/resolve"
	"growarena.gg/internal/game/sched"
	"growarena.gg/internal/game/state"
	"growarena.gg/internal/game/tuning"
	"growarena.gg/internal/persistence/ledgerdb"
	persistlog "growarena.gg/internal/persistence/log"
	"growarena.gg/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <data>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite settlement index")
		seed       = flag.Int64("seed", 0, "rng seed (0 seeds from the clock)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	_ = os.MkdirAll(*dataDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*dataDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Default()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	store, err := state.Open(*dataDir, logger)
	if err != nil {
		logger.Fatalf("open state: %v", err)
	}

	var ledger *ledgerdb.SQLiteLedger
	if !*disableDB {
		ledger, err = ledgerdb.Open(filepath.Join(*dataDir, "ledger.db"))
		if err != nil {
			logger.Fatalf("open ledger: %v", err)
		}
		defer ledger.Close()
	}

	auditLog := persistlog.NewAuditLogger(*dataDir)
	defer auditLog.Close()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := resolve.NewLockedRand(*seed)

	var schedOpts []sched.Option
	if ledger != nil {
		schedOpts = append(schedOpts, sched.WithSettlements(ledger))
	}
	scheduler := sched.New(store, tune, rng, logger, schedOpts...)
	defer scheduler.Stop()

	engOpts := []engine.Option{engine.WithAudit(auditLog)}
	if ledger != nil {
		engOpts = append(engOpts, engine.WithLedger(ledger))
	}
	eng := engine.New(store, scheduler, tune, rng, logger, engOpts...)

	wsSrv := ws.NewServer(eng, logger)
	scheduler.SetNotifier(wsSrv.Notify)

	// Settle anything overdue before the transport opens.
	if err := eng.Recover(); err != nil {
		logger.Fatalf("recover: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		fmt.Fprintf(rw, "# HELP growarena_groups Known group count.\n")
		fmt.Fprintf(rw, "# TYPE growarena_groups gauge\n")
		fmt.Fprintf(rw, "growarena_groups %d\n", len(store.GroupIDs()))
	})
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

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
		if err := store.Flush(); err != nil {
			logger.Printf("final flush: %v", err)
		}
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
