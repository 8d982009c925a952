package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/classsync/scheduler-core/internal/scheduler"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the process-wide configuration surface. It carries the
// ambient concerns (environment, logging) plus the GA hyperparameter
// overrides layered on top of scheduler.DefaultGAConfig.
type Config struct {
	Env string
	Log LogConfig
	GA  GAOverrides
}

type LogConfig struct {
	Level  string
	Format string
}

// GAOverrides mirrors the subset of scheduler.GAConfig an operator is
// expected to tune from the environment without recompiling; numeric
// fields left at zero fall back to scheduler.DefaultGAConfig().
// ParallelFitnessEnabled is always applied as given, so false turns
// parallel evaluation off (Load defaults it to true).
type GAOverrides struct {
	PopulationSize         int
	Generations            int
	RandomSeed             int64
	MaxWorkers             int
	ParallelFitnessEnabled bool
	MinAcceptableFitness   float64
	MaxStagnantGenerations int
}

// Load reads environment variables (optionally from a .env file) into a
// typed Config via a Load/setDefaults split.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		Env: v.GetString("ENV"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		GA: GAOverrides{
			PopulationSize:         v.GetInt("GA_POPULATION_SIZE"),
			Generations:            v.GetInt("GA_GENERATIONS"),
			RandomSeed:             v.GetInt64("GA_RANDOM_SEED"),
			MaxWorkers:             v.GetInt("GA_MAX_WORKERS"),
			ParallelFitnessEnabled: v.GetBool("GA_PARALLEL_FITNESS_ENABLED"),
			MinAcceptableFitness:   v.GetFloat64("GA_MIN_ACCEPTABLE_FITNESS"),
			MaxStagnantGenerations: v.GetInt("GA_MAX_STAGNANT_GENERATIONS"),
		},
	}

	return cfg, nil
}

// BuildGAConfig layers the loaded overrides on top of the scheduler
// package's defaults.
func (c *Config) BuildGAConfig() scheduler.GAConfig {
	ga := scheduler.DefaultGAConfig()

	if c.GA.PopulationSize > 0 {
		ga.PopulationSize = c.GA.PopulationSize
	}
	if c.GA.Generations > 0 {
		ga.Generations = c.GA.Generations
	}
	if c.GA.RandomSeed != 0 {
		seed := c.GA.RandomSeed
		ga.RandomSeed = &seed
	}
	if c.GA.MaxWorkers > 0 {
		ga.MaxWorkers = c.GA.MaxWorkers
	}
	ga.ParallelFitnessEvaluation = c.GA.ParallelFitnessEnabled
	if c.GA.MinAcceptableFitness > 0 {
		ga.MinAcceptableFitness = c.GA.MinAcceptableFitness
	}
	if c.GA.MaxStagnantGenerations > 0 {
		ga.MaxStagnantGenerations = c.GA.MaxStagnantGenerations
	}

	return ga
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GA_POPULATION_SIZE", 50)
	v.SetDefault("GA_GENERATIONS", 150)
	v.SetDefault("GA_RANDOM_SEED", 0)
	v.SetDefault("GA_MAX_WORKERS", 4)
	v.SetDefault("GA_PARALLEL_FITNESS_ENABLED", true)
	v.SetDefault("GA_MIN_ACCEPTABLE_FITNESS", 850.0)
	v.SetDefault("GA_MAX_STAGNANT_GENERATIONS", 30)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
