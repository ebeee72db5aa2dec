package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/toolstream/agentdeck/internal/domain/entities"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultEndpointURL = "http://localhost:7777"

type Config struct {
	Endpoints []entities.Endpoint
	DataDir   string
	HTTPPort  string
	logger    *zap.Logger
}

var (
	configInstance *Config
	once           sync.Once
)

func InitConfig() (*Config, error) {
	var initErr error

	once.Do(func() {
		logConfig := zap.NewDevelopmentConfig()
		logConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err := logConfig.Build()
		if err != nil {
			logger = zap.NewNop()
			initErr = fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		// Load .env file
		if err := godotenv.Load(); err != nil {
			if os.IsNotExist(err) {
				logger.Debug("No .env file found; falling back to system environment variables")
			} else {
				initErr = fmt.Errorf("failed to load .env file: %w", err)
				logger.Error("Config file load error", zap.Error(err))
				return
			}
		} else {
			logger.Debug("Successfully loaded .env file")
		}

		dataDir := os.Getenv("AGENTDECK_DATA_DIR")
		if dataDir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				initErr = fmt.Errorf("failed to determine data directory: %w", err)
				return
			}
			dataDir = filepath.Join(cwd, ".agentdeck")
		}

		httpPort := os.Getenv("HTTP_PORT")
		if httpPort == "" {
			httpPort = "8080"
		}

		configInstance = &Config{
			Endpoints: parseEndpoints(logger),
			DataDir:   dataDir,
			HTTPPort:  httpPort,
			logger:    logger,
		}
	})

	if initErr != nil {
		return nil, initErr
	}
	if configInstance == nil {
		return nil, fmt.Errorf("configuration initialization failed unexpectedly")
	}

	return configInstance, nil
}

// parseEndpoints builds the endpoint catalog: AGENTOS_URL (or the local
// default) first, then any extra entries from AGENTOS_ENDPOINTS, a comma
// list of "name=url" or bare url items.
func parseEndpoints(logger *zap.Logger) []entities.Endpoint {
	primary := os.Getenv("AGENTOS_URL")
	if primary == "" {
		primary = defaultEndpointURL
	}
	endpoints := []entities.Endpoint{entities.NewEndpoint("default", primary)}

	extra := os.Getenv("AGENTOS_ENDPOINTS")
	if extra == "" {
		return endpoints
	}

	for _, item := range strings.Split(extra, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, url, found := strings.Cut(item, "=")
		if !found {
			endpoints = append(endpoints, entities.NewEndpoint("", item))
			continue
		}
		if url == "" {
			logger.Warn("Skipping endpoint with empty URL", zap.String("entry", item))
			continue
		}
		endpoints = append(endpoints, entities.NewEndpoint(strings.TrimSpace(name), strings.TrimSpace(url)))
	}

	return endpoints
}

// DefaultEndpoint returns the first catalog entry.
func (c *Config) DefaultEndpoint() entities.Endpoint {
	return c.Endpoints[0]
}
