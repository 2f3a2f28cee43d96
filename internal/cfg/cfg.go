package cfg

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"diarisk/internal/common"
)

type Settings struct {
	DataPath     string
	DataURL      string
	ArtifactPath string
	StorePath    string
	Seed         int64
	TestFraction float64
	Folds        int
	TuneWorkers  int
	ServerPort   int
	LogLevel     string
	LogFile      string
	CacheSize    int
	CacheTTL     time.Duration
}

type ConfigFile struct {
	Data struct {
		Path string `yaml:"path"`
		URL  string `yaml:"url"`
	} `yaml:"data"`

	Pipeline struct {
		Seed         int64   `yaml:"seed"`
		TestFraction float64 `yaml:"testFraction"`
		Folds        int     `yaml:"folds"`
		TuneWorkers  int     `yaml:"tuneWorkers"`
	} `yaml:"pipeline"`

	Artifact struct {
		Path      string `yaml:"path"`
		StorePath string `yaml:"storePath"`
	} `yaml:"artifact"`

	Server struct {
		Port      int    `yaml:"port"`
		CacheSize int    `yaml:"cacheSize"`
		CacheTTL  string `yaml:"cacheTTL"`
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	cacheTTL, err := time.ParseDuration(config.Server.CacheTTL)
	if err != nil {
		cacheTTL = 5 * time.Minute
	}

	settings := Settings{
		DataPath:     getEnvOrDefault(common.EnvDataPath, stringOrDefault(config.Data.Path, common.DefaultDataPath)),
		DataURL:      getEnvOrDefault(common.EnvDataURL, stringOrDefault(config.Data.URL, common.DefaultDataURL)),
		ArtifactPath: getEnvOrDefault(common.EnvArtifactPath, stringOrDefault(config.Artifact.Path, common.DefaultArtifactPath)),
		StorePath:    getEnvOrDefault(common.EnvStorePath, stringOrDefault(config.Artifact.StorePath, common.DefaultStorePath)),
		Seed:         getInt64FromEnvOrConfig(common.EnvSeed, config.Pipeline.Seed, common.DefaultSeed),
		TestFraction: getFloatFromEnvOrConfig(common.EnvTestFraction, config.Pipeline.TestFraction, common.DefaultTestFraction),
		Folds:        getIntFromEnvOrConfig(common.EnvFolds, config.Pipeline.Folds, common.DefaultFolds),
		TuneWorkers:  getIntFromEnvOrConfig(common.EnvTuneWorkers, config.Pipeline.TuneWorkers, runtime.NumCPU()),
		ServerPort:   getIntFromEnvOrConfig(common.EnvServerPort, config.Server.Port, common.DefaultServerPort),
		LogLevel:     getEnvOrDefault(common.EnvLogLevel, stringOrDefault(config.Logging.Level, common.DefaultLogLevel)),
		LogFile:      getEnvOrDefault(common.EnvLogFile, config.Logging.File),
		CacheSize:    getIntFromEnvOrConfig(common.EnvCacheSize, config.Server.CacheSize, common.DefaultCacheSize),
		CacheTTL:     getDurationOrDefault(common.EnvCacheTTL, cacheTTL),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		DataPath:     getEnvOrDefault(common.EnvDataPath, common.DefaultDataPath),
		DataURL:      getEnvOrDefault(common.EnvDataURL, common.DefaultDataURL),
		ArtifactPath: getEnvOrDefault(common.EnvArtifactPath, common.DefaultArtifactPath),
		StorePath:    getEnvOrDefault(common.EnvStorePath, common.DefaultStorePath),
		Seed:         getInt64OrDefault(common.EnvSeed, common.DefaultSeed),
		TestFraction: getFloatOrDefault(common.EnvTestFraction, common.DefaultTestFraction),
		Folds:        getIntOrDefault(common.EnvFolds, common.DefaultFolds),
		TuneWorkers:  getIntOrDefault(common.EnvTuneWorkers, runtime.NumCPU()),
		ServerPort:   getIntOrDefault(common.EnvServerPort, common.DefaultServerPort),
		LogLevel:     getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogFile:      os.Getenv(common.EnvLogFile), // optional
		CacheSize:    getIntOrDefault(common.EnvCacheSize, common.DefaultCacheSize),
		CacheTTL:     getDurationOrDefault(common.EnvCacheTTL, 5*time.Minute),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func stringOrDefault(v, defaultValue string) string {
	if v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getInt64FromEnvOrConfig(key string, configValue, defaultValue int64) int64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseInt(env, 10, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.DataPath == "" {
		return fmt.Errorf("data path cannot be empty")
	}
	if settings.ArtifactPath == "" {
		return fmt.Errorf("artifact path cannot be empty")
	}

	if settings.TestFraction < common.MinTestFraction || settings.TestFraction > common.MaxTestFraction {
		return fmt.Errorf("test fraction must be between %v and %v, got %f",
			common.MinTestFraction, common.MaxTestFraction, settings.TestFraction)
	}
	if settings.Folds < common.MinFolds || settings.Folds > common.MaxFolds {
		return fmt.Errorf("fold count must be between %d and %d, got %d",
			common.MinFolds, common.MaxFolds, settings.Folds)
	}
	if settings.TuneWorkers <= 0 || settings.TuneWorkers > common.MaxTuneWorkers {
		return fmt.Errorf("tune workers must be between 1 and %d, got %d",
			common.MaxTuneWorkers, settings.TuneWorkers)
	}
	if settings.ServerPort < common.MinServerPort || settings.ServerPort > common.MaxServerPort {
		return fmt.Errorf("server port must be between %d and %d, got %d",
			common.MinServerPort, common.MaxServerPort, settings.ServerPort)
	}
	if settings.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", settings.CacheSize)
	}
	if settings.CacheTTL < time.Second || settings.CacheTTL > time.Hour {
		return fmt.Errorf("cache TTL must be between 1s and 1h, got %v", settings.CacheTTL)
	}

	return nil
}
