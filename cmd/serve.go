package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/photo-share/api/core"
	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/internal/app"
	"github.com/anoixa/photo-share/internal/services/maintenance"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	container := app.NewContainer(cfg)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := container.Init(initCtx)
	initCancel()
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// 后台一致性扫描，interval 为 0 时不启动
	var scanner *maintenance.Scanner
	if cfg.ReconcileInterval > 0 {
		scanner = maintenance.NewScanner(container.Reconciler, cfg.ReconcileInterval)
		scanner.Start()
	}

	// 启动gin
	server := core.StartServer(container.ServerDependencies())
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if scanner != nil {
		scanner.Stop()
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := container.Close(); err != nil {
		log.Printf("Error closing container: %v", err)
	}

	log.Println("Server exited successfully")
}
