package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type ReminderConfig struct {
	Enabled       bool `yaml:"enabled"`
	IntervalMin   int  `yaml:"interval_minutes"`
	LeadTimeHours int  `yaml:"lead_time_hours"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret      string `yaml:"jwt_secret"`
		TokenTTLMin    int    `yaml:"token_ttl_minutes"`
		LoginRateLimit int    `yaml:"login_rate_limit"` // requests per minute on /login and /signup
	} `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
	Reminder ReminderConfig `yaml:"reminder"`
	Redis    RedisConfig    `yaml:"redis"`
}

// LoadConfig reads config/config.yaml and applies environment overrides for
// deployment secrets (DATABASE_URL, JWT_SECRET, REDIS_ADDR, TELEGRAM_BOT_TOKEN,
// PORT). The yaml file carries everything else.
func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Auth.TokenTTLMin <= 0 {
		cfg.Auth.TokenTTLMin = 60
	}
	if cfg.Auth.LoginRateLimit <= 0 {
		cfg.Auth.LoginRateLimit = 20
	}
	if cfg.Reminder.IntervalMin <= 0 {
		cfg.Reminder.IntervalMin = 15
	}
	if cfg.Reminder.LeadTimeHours <= 0 {
		cfg.Reminder.LeadTimeHours = 24
	}
	return &cfg
}
