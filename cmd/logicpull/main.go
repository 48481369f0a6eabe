package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/DheerG/LogicPull/internal/config"
	"github.com/DheerG/LogicPull/internal/deliverables"
	"github.com/DheerG/LogicPull/internal/pkg/store"
	"github.com/DheerG/LogicPull/internal/pkg/workerpool"
	"github.com/DheerG/LogicPull/internal/repo"
	"github.com/DheerG/LogicPull/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := store.CreateSchema(db); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("database schema ready")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := workerpool.NewWorkerPool(ctx, cfg.CopyWorkers, cfg.CopyQueueSize)
	layout := deliverables.Layout{Root: cfg.DataRoot}

	mux := router.New(router.Deps{
		Interviews: repo.NewInterviews(db),
		Outputs:    repo.NewOutputs(db),
		Users:      repo.NewUsers(db),
		Layout:     layout,
		Copier:     deliverables.NewCopier(pool),
		TokenSalt:  cfg.TokenSalt,
	})

	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		server.Shutdown(shutdownCtx)
		pool.Shutdown(shutdownCtx)
		cancel()
	}()

	slog.Info("listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("server closed", "error", err)
	} else {
		slog.Info("server closed")
	}
}
