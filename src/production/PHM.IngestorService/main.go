package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	client "gitlab.com/maplesense1/phm.server/src/production/PHM.Client"
	container "gitlab.com/maplesense1/phm.server/src/production/PHM.Container"
	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
	phmingestor "gitlab.com/maplesense1/phm.server/src/production/PHM.IngestorService/ingestor"
	implementation "gitlab.com/maplesense1/phm.server/src/production/PHM.Repository/Implementation"
	"gitlab.com/maplesense1/phm.server/src/production/PHM.Repository/Interfaces"
)

func main() {
	ctr, err := container.NewIngestorContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	logger.Info("Starting sensor ingestor")

	config := ctr.GetConfig()
	apiClient := client.New(config.ApiServiceURL, client.WithUserAgent("phm-ingestor"))

	var archive interfaces.RawReadingRepository
	if config.Mongo.Enabled() {
		mongoClient, err := database.ConnectMongo(config.Mongo, 30*time.Second)
		if err != nil {
			logger.FatalWithError(err, "Failed to connect to raw reading archive")
		}
		ctr.AddCleanupFunc(func() error { return mongoClient.Disconnect(context.Background()) })
		archive = implementation.NewMongoRawReadingRepository(database.RawReadingsCollection(mongoClient, config.Mongo))
		logger.WithField("collection", config.Mongo.Collection).Info("Archiving raw readings to MongoDB")
	}

	ing := phmingestor.New(config, apiClient, archive, logger)
	if err := ing.Start(context.Background()); err != nil {
		logger.FatalWithError(err, "Failed to start MQTT ingestor")
	}
	defer ing.Stop()

	srv := &http.Server{
		Addr:         ":" + config.Server.Port,
		Handler:      phmingestor.HealthRouter(ing),
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}
	go func() {
		logger.Info("Health server starting on port " + config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start health server")
		}
	}()

	logger.Info("Sensor ingestor running... press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Health server forced to shutdown")
	}
}
