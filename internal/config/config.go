package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
// It is loaded once at startup and never mutated.
type Config struct {
	BotToken      string   `envconfig:"BOT_TOKEN" required:"true"`
	ReminderTimes []string `envconfig:"REMINDER_TIMES" default:"10:00,12:00,15:00,18:00,21:00"` // HH:MM, comma-separated
	SettleTime    string   `envconfig:"SETTLE_TIME" default:"23:50"`                            // daily settlement, HH:MM
	Timezone      string   `envconfig:"TIMEZONE" default:"Asia/Almaty"`                         // IANA zone for all triggers
	DefaultNorm   int      `envconfig:"DEFAULT_NORM_ML" default:"2000"`                         // daily water norm, ml
	WorkbookPath  string   `envconfig:"WORKBOOK_PATH" default:"./data/water.xlsx"`
	DBPath        string   `envconfig:"DB_PATH" default:"./data/water.db"`
	HTTPAddr      string   `envconfig:"HTTP_ADDR" default:":8080"` // healthz
	LogLevel      string   `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
