package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	config "task-sync.com/task-sync/internal/configs"
	"task-sync.com/task-sync/internal/connectivity"
	"task-sync.com/task-sync/internal/engine"
	httpapi "task-sync.com/task-sync/internal/http"
	"task-sync.com/task-sync/internal/reminder"
	"task-sync.com/task-sync/internal/remote"
	"task-sync.com/task-sync/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the task sync service",
	Long:  "Starts the sync engine, connectivity monitor, reminder scheduler and HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()

		database := config.NewDatabaseClient(cfg.DatabaseDSN)
		localStore := storage.NewLocalStore(database)

		redisClient := config.NewRedisClient(cfg.RedisAddr)
		defer redisClient.Close()
		remoteStore := remote.NewTaskStore(redisClient)

		scheduler := reminder.NewScheduler(reminder.LogNotifier{})

		syncEngine := engine.New(
			localStore,
			remoteStore,
			scheduler,
			time.Duration(cfg.ReminderOffsetSeconds)*time.Second,
		)
		syncEngine.Initialize("")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		monitor := connectivity.NewMonitor(
			connectivity.NewRedisProber(redisClient),
			time.Duration(cfg.ConnectivityProbeSeconds)*time.Second,
		)
		transitions := monitor.Subscribe()
		monitor.Start(ctx)

		go func() {
			for {
				select {
				case online := <-transitions:
					syncEngine.SetOnline(online)
				case <-ctx.Done():
					return
				}
			}
		}()

		e := echo.New()
		handler := httpapi.NewHandler(syncEngine)
		httpapi.Register(e, handler, cfg.RateLimit)

		go func() {
			log.Printf("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		_ = e.Shutdown(shutdownCtx)
		monitor.Stop()
		syncEngine.Flush()
		scheduler.Shutdown()

		log.Println("task sync service shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
