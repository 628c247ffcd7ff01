package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/telefetch/telefetch/internal/alerts"
	"github.com/telefetch/telefetch/internal/bot"
	"github.com/telefetch/telefetch/internal/config"
	"github.com/telefetch/telefetch/internal/extract"
	"github.com/telefetch/telefetch/internal/middleware"
	"github.com/telefetch/telefetch/internal/queue"
	"github.com/telefetch/telefetch/internal/server"
	"github.com/telefetch/telefetch/internal/store"
	"github.com/telefetch/telefetch/internal/worker"
)

func main() {
	godotenv.Load()
	config.Load()

	if config.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	if err := os.MkdirAll(config.DownloadDir, 0755); err != nil {
		log.Fatalf("Failed to create download dir: %v", err)
	}

	st, err := store.Open(config.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	q := queue.New()
	cancels := queue.NewRegistry()

	b, err := bot.New(bot.Config{Token: config.TelegramToken}, q, cancels, st)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := worker.NewLoop(q, cancels, extract.NewClient(), b, st, config.DownloadDir)
	janitor := worker.NewJanitor(config.DownloadDir, config.FileRetention, config.JanitorInterval)
	srv := server.New(q, st)

	middleware.StartRateLimitCleanup()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		return janitor.Run(gctx)
	})
	g.Go(func() error {
		log.Printf("[Server] Listening on :%s", config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := b.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}
	alerts.BotStarted()

	fmt.Println("Bot is running. Press Ctrl+C to stop.")

	waitForShutdown(ctx, gctx)

	fmt.Println("\nShutting down bot...")
	alerts.BotStopping()
	b.Stop()
	stop()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Fatal: %v", err)
	}
	fmt.Println("Bot stopped.")
}

// waitForShutdown parks until a termination signal arrives or a
// supervised task fails and cancels the group context. A port that
// can't bind must take the whole process down, not leave the bot
// enqueueing jobs no worker will drain.
func waitForShutdown(sigCtx, taskCtx context.Context) {
	select {
	case <-sigCtx.Done():
	case <-taskCtx.Done():
	}
}
