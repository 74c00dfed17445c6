package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/server"
	container "gitlab.com/maplesense1/phm.server/src/production/PHM.Container"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewApiContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	logger.Info("Starting plant health API")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ctr.InitializeDatabase(ctx); err != nil {
		logger.FatalWithError(err, "Failed to initialize database")
	}

	gw, err := ctr.GetGateway()
	if err != nil {
		logger.FatalWithError(err, "Failed to get database connection")
	}

	config := ctr.GetConfig()
	router := server.NewRouter(server.Dependencies{
		Config:  config,
		Logger:  logger,
		Gateway: gw,
	})

	port := config.Server.Port

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("API service running... press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
