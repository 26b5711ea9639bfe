package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

type RuntimeConfig struct {
	Env      string `env:"AGROPLAN_ENV" env-default:"local"`
	LogLevel string `env:"AGROPLAN_LOG_LEVEL" env-default:"info"`
	LogFile  string `env:"AGROPLAN_LOG_FILE" env-default:"agroplan.log"`
	DBPath   string `env:"AGROPLAN_DB" env-default:"agroplan.db"`

	Gemini GeminiConfig

	DesktopNotifications bool `env:"AGROPLAN_DESKTOP_NOTIFICATIONS" env-default:"false"`
	ReminderHour         int  `env:"AGROPLAN_REMINDER_HOUR" env-default:"7"`
	SchedulerBuffer      int  `env:"AGROPLAN_SCHEDULER_BUFFER" env-default:"64"`
	UpcomingDays         int  `env:"AGROPLAN_UPCOMING_DAYS" env-default:"7"`
	UpcomingLimit        int  `env:"AGROPLAN_UPCOMING_LIMIT" env-default:"5"`
}

type GeminiConfig struct {
	APIKey  string        `env:"AGROPLAN_GEMINI_API_KEY"`
	Model   string        `env:"AGROPLAN_GEMINI_MODEL" env-default:"gemini-1.5-flash"`
	BaseURL string        `env:"AGROPLAN_GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com"`
	Timeout time.Duration `env:"AGROPLAN_GEMINI_TIMEOUT" env-default:"30s"`
}

// Load reads RuntimeConfig from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (RuntimeConfig, error) {
	var cfg RuntimeConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

func (c RuntimeConfig) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("config: unknown env %q", c.Env)
	}
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		return fmt.Errorf("config: reminder hour %d out of range", c.ReminderHour)
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("config: scheduler buffer must be positive, got %d", c.SchedulerBuffer)
	}
	if c.UpcomingDays < 0 || c.UpcomingLimit <= 0 {
		return fmt.Errorf("config: invalid upcoming window %d/%d", c.UpcomingDays, c.UpcomingLimit)
	}
	return nil
}
