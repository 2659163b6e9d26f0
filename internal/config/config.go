package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	LLM      LLMConfig
	Pipeline PipelineConfig
	Progress ProgressConfig
	Redis    RedisConfig
	DB       DBConfig
	Logger   LoggerConfig
}

// LLMConfig holds the settings for the OpenAI-compatible completion API.
type LLMConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// PipelineConfig holds the knobs for the extraction/generation pipeline.
type PipelineConfig struct {
	MaxWorkers     int           `yaml:"max_workers"`
	BatchSize      int           `yaml:"batch_size"`
	ChunkSize      int           `yaml:"chunk_size"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
}

// ProgressConfig controls eviction of progress records.
type ProgressConfig struct {
	TTL            time.Duration `yaml:"ttl"`
	CompletedGrace time.Duration `yaml:"completed_grace"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

// DSN builds a Postgres connection string, or "" when no database is configured.
func (c DBConfig) DSN() string {
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.DBName)
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../configs")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
	}

	viper.AutomaticEnv()

	viper.SetDefault("llm.model", "gpt-4o")
	viper.SetDefault("pipeline.max_workers", 5)
	viper.SetDefault("pipeline.batch_size", 5)
	viper.SetDefault("pipeline.chunk_size", 2000)
	viper.SetDefault("pipeline.max_retries", 3)
	viper.SetDefault("pipeline.retry_base_delay", "1s")
	viper.SetDefault("progress.ttl", "1h")
	viper.SetDefault("progress.completed_grace", "60s")
	viper.SetDefault("progress.sweep_interval", "1m")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional; defaults plus environment variables are
		// enough to run the pipeline.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		LLM: LLMConfig{
			Endpoint: viper.GetString("llm.endpoint"),
			APIKey:   viper.GetString("llm.api_key"),
			Model:    viper.GetString("llm.model"),
		},
		Pipeline: PipelineConfig{
			MaxWorkers:     viper.GetInt("pipeline.max_workers"),
			BatchSize:      viper.GetInt("pipeline.batch_size"),
			ChunkSize:      viper.GetInt("pipeline.chunk_size"),
			MaxRetries:     viper.GetInt("pipeline.max_retries"),
			RetryBaseDelay: viper.GetDuration("pipeline.retry_base_delay"),
		},
		Progress: ProgressConfig{
			TTL:            viper.GetDuration("progress.ttl"),
			CompletedGrace: viper.GetDuration("progress.completed_grace"),
			SweepInterval:  viper.GetDuration("progress.sweep_interval"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	// Override with environment variables if set
	if endpoint := os.Getenv("LLM_ENDPOINT"); endpoint != "" {
		config.LLM.Endpoint = endpoint
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}

	return config, nil
}
