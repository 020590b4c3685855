package config

import (
	"os"

	postgres_wrapper "github.com/equitix/exchange-core/pkg/infra/postgres"
	redis_wrapper "github.com/equitix/exchange-core/pkg/infra/redis"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ServiceName string                           `yaml:"service_name"`
	EngineDB    *postgres_wrapper.PostgresConfig `yaml:"engine_db"`
	Redis       *redis_wrapper.RedisConfig       `yaml:"redis"`
	Kafka       *KafkaConfig                     `yaml:"kafka"`
	Fix         *FixConfig                       `yaml:"fix"`
	Market      *MarketConfig                    `yaml:"market"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	RequestTopic string   `yaml:"request_topic"`
	EventTopic   string   `yaml:"event_topic"`
	GroupID      string   `yaml:"group_id"`
	DLQTopic     string   `yaml:"dlq_topic"`
}

type FixConfig struct {
	ConfigFilepath string           `yaml:"config_filepath"`
	Brokers        map[string]int64 `yaml:"brokers"`
}

// MarketConfig seeds the tradable universe at startup.
type MarketConfig struct {
	Securities   []SecurityConfig    `yaml:"securities"`
	Brokers      []BrokerConfig      `yaml:"brokers"`
	Shareholders []ShareholderConfig `yaml:"shareholders"`
}

type SecurityConfig struct {
	ISIN     string `yaml:"isin"`
	TickSize int64  `yaml:"tick_size"`
	LotSize  int64  `yaml:"lot_size"`
}

type BrokerConfig struct {
	ID            int64 `yaml:"id"`
	InitialCredit int64 `yaml:"initial_credit"`
}

type ShareholderConfig struct {
	ID        int64            `yaml:"id"`
	Positions map[string]int64 `yaml:"positions"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	return cfg, nil
}
