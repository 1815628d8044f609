package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	sticks "github.com/tkahng/stickpile"
	"github.com/tkahng/stickpile/config"
	"github.com/tkahng/stickpile/remote"
	"github.com/tkahng/stickpile/server"
	"github.com/tkahng/stickpile/tui"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load("config.json")

	if err := run(cfg); err != nil {
		log.Fatalf("sticks: %v", err)
	}
}

func run(cfg *config.Config) error {
	// the terminal belongs to the game, so logs go to a file
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	client, err := remote.New(remote.Options{
		BaseURL:   cfg.ServerURL,
		HumanName: cfg.HumanName,
		Timeout:   cfg.RequestTimeout(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	relay := sticks.NewRelay()
	animator := sticks.NewAnimator(cfg.Fade(), logger)
	ui := tui.New(screen, relay, logger)
	animator.Attach(ui)

	var viewServer *server.ViewServer
	var httpServer *http.Server
	if cfg.ViewAddr != "" {
		viewServer = server.NewViewServer(relay, animator, cfg.AllowedOrigin, logger)
		animator.Attach(viewServer)
		viewServer.Start()
		defer viewServer.Stop()
		// nolint:exhaustruct
		httpServer = &http.Server{
			Addr:    cfg.ViewAddr,
			Handler: viewServer.Handler(),
		}
	}

	animator.Start()
	defer animator.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, quit := context.WithCancel(ctx)
	defer quit()

	session := sticks.NewSession(client, client, relay, animator, sticks.SessionConfig{HistoryCap: cfg.HistoryCap}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Run(gctx)
	})
	g.Go(func() error {
		defer quit()
		return ui.Run(gctx)
	})
	if httpServer != nil {
		g.Go(func() error {
			logger.Info("live view starting", slog.String("addr", cfg.ViewAddr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("live view failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("sticks stopped", slog.Any("error", err))
	return err
}
