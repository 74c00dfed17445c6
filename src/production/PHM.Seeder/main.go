package main

import (
	"context"
	"fmt"
	"os"
	"time"

	container "gitlab.com/maplesense1/phm.server/src/production/PHM.Container"
	"gitlab.com/maplesense1/phm.server/src/production/PHM.Seeder/seeder"
)

func main() {
	ctr, err := container.NewSeederContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize container: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctr); err != nil {
		ctr.GetLogger().ErrorWithError(err, "Seeding failed")
		ctr.Shutdown(context.Background())
		os.Exit(1)
	}
	ctr.Shutdown(context.Background())
}

func run(ctr *container.SeederContainer) error {
	logger := ctr.GetLogger()
	logger.Info("Starting database seed")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := ctr.InitializeDatabase(ctx); err != nil {
		return err
	}
	gw, err := ctr.GetGateway()
	if err != nil {
		return err
	}

	if _, err := seeder.New(gw, ctr.GetConfig().HashCost, logger).Run(ctx); err != nil {
		return err
	}

	logger.Info("Demo farmer account: " + seeder.FarmerUsername + "/" + seeder.FarmerPassword)
	logger.Info("Database initialization completed successfully")
	return nil
}
