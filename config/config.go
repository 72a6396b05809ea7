package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Reminder ReminderConfig `yaml:"reminder"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type CatalogConfig struct {
	PageSize        int `yaml:"page_size"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// ReminderConfig drives the scheduler sweep. LeadTimesMinutes lists how long
// before showtime each reminder fires; the scheduler processes them longest
// first. TickSeconds must stay well below the smallest gap between lead times,
// otherwise a stage can be skipped.
type ReminderConfig struct {
	LeadTimesMinutes []int  `yaml:"lead_times_minutes"`
	TickSeconds      int    `yaml:"tick_seconds"`
	Channel          string `yaml:"channel"`
}

// LeadTimes returns the configured lead times sorted longest first.
func (r ReminderConfig) LeadTimes() []time.Duration {
	leads := make([]time.Duration, 0, len(r.LeadTimesMinutes))
	for _, m := range r.LeadTimesMinutes {
		leads = append(leads, time.Duration(m)*time.Minute)
	}
	for i := 1; i < len(leads); i++ {
		for j := i; j > 0 && leads[j] > leads[j-1]; j-- {
			leads[j], leads[j-1] = leads[j-1], leads[j]
		}
	}
	return leads
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(cfg.Reminder.LeadTimesMinutes) == 0 {
		cfg.Reminder.LeadTimesMinutes = []int{30, 10}
	}
	if cfg.Reminder.TickSeconds <= 0 {
		cfg.Reminder.TickSeconds = 60
	}
	if cfg.Catalog.PageSize <= 0 {
		cfg.Catalog.PageSize = 5
	}

	return &cfg, nil
}
