package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	config "gitlab.com/maplesense1/phm.server/src/production/PHM.Config"
	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
	logger "gitlab.com/maplesense1/phm.server/src/production/PHM.Logger"
)

const connectTimeout = 20 * time.Second

// Container owns the logger and the store handle, opened lazily and
// closed on Shutdown
type Container struct {
	dbConfig config.DatabaseConfig
	logger   *logger.Logger
	gateway  *database.Gateway

	mu sync.Mutex

	cleanupFuncs []func() error
}

// ApiContainer manages dependencies for the API service
type ApiContainer struct {
	*Container
	config *config.Config
}

// SeederContainer manages dependencies for the seed generator
type SeederContainer struct {
	*Container
	config *config.SeederConfig
}

// IngestorContainer manages dependencies for the sensor ingestor.
// The ingestor talks to the API, never to the store.
type IngestorContainer struct {
	config *config.IngestorConfig
	logger *logger.Logger

	mu           sync.Mutex
	cleanupFuncs []func() error
}

func newContainer(dbConfig config.DatabaseConfig, log *logger.Logger) *Container {
	return &Container{
		dbConfig: dbConfig,
		logger:   log,
	}
}

// NewApiContainer loads API configuration and builds its container
func NewApiContainer() (*ApiContainer, error) {
	cfg, err := config.LoadApiConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load API configuration: %w", err)
	}
	return NewApiContainerWithConfig(cfg, logger.NewLogger(&cfg.Logging).WithService("api")), nil
}

// NewApiContainerWithConfig builds an API container from explicit settings
func NewApiContainerWithConfig(cfg *config.Config, log *logger.Logger) *ApiContainer {
	return &ApiContainer{Container: newContainer(cfg.Database, log), config: cfg}
}

// NewSeederContainer loads seeder configuration and builds its container
func NewSeederContainer() (*SeederContainer, error) {
	cfg, err := config.LoadSeederConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load seeder configuration: %w", err)
	}
	log := logger.NewLogger(&cfg.Logging).WithService("seeder")
	return &SeederContainer{Container: newContainer(cfg.Database, log), config: cfg}, nil
}

// NewIngestorContainer loads ingestor configuration and builds its container
func NewIngestorContainer() (*IngestorContainer, error) {
	cfg, err := config.LoadIngestorConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load ingestor configuration: %w", err)
	}
	return &IngestorContainer{
		config: cfg,
		logger: logger.NewLogger(&cfg.Logging).WithService("ingestor"),
	}, nil
}

// GetConfig returns the API configuration
func (c *ApiContainer) GetConfig() *config.Config {
	return c.config
}

// GetConfig returns the seeder configuration
func (c *SeederContainer) GetConfig() *config.SeederConfig {
	return c.config
}

// GetConfig returns the ingestor configuration
func (c *IngestorContainer) GetConfig() *config.IngestorConfig {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetLogger returns the logger
func (c *IngestorContainer) GetLogger() *logger.Logger {
	return c.logger
}

// GetGateway returns the store gateway, connecting on first use
func (c *Container) GetGateway() (*database.Gateway, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gateway == nil {
		gw, err := database.ConnectWithTimeout(c.dbConfig, connectTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.gateway = gw
	}

	return c.gateway, nil
}

// InitializeDatabase connects and creates missing tables
func (c *Container) InitializeDatabase(ctx context.Context) error {
	gw, err := c.GetGateway()
	if err != nil {
		return err
	}

	if err := gw.CreateTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	c.logger.WithField("driver", gw.Driver()).Info("Database initialized successfully")
	return nil
}

// AddCleanupFunc adds a function run on Shutdown before the store closes
func (c *Container) AddCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}

// Shutdown runs cleanup functions in reverse order and closes the store
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	c.mu.Lock()
	defer c.mu.Unlock()

	runCleanup(c.logger, c.cleanupFuncs)
	c.cleanupFuncs = nil

	if c.gateway != nil {
		if err := c.gateway.Close(); err != nil {
			c.logger.ErrorWithError(err, "Error closing database connection")
		}
		c.gateway = nil
	}

	c.logger.Info("Container shutdown complete")
	return nil
}

// AddCleanupFunc adds a function run on Shutdown
func (c *IngestorContainer) AddCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}

// Shutdown runs cleanup functions in reverse order
func (c *IngestorContainer) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down ingestor container...")

	c.mu.Lock()
	defer c.mu.Unlock()
	runCleanup(c.logger, c.cleanupFuncs)
	c.cleanupFuncs = nil

	c.logger.Info("Ingestor container shutdown complete")
	return nil
}

func runCleanup(log *logger.Logger, funcs []func() error) {
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](); err != nil {
			log.ErrorWithError(err, "Error during cleanup")
		}
	}
}
