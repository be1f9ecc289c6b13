package sys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --- Configuration & Environment ---

type Config struct {
	Token        string   `validate:"required"`
	GuildID      string   `validate:"omitempty,numeric,min=17,max=20"`
	DatabasePath string   `validate:"required"`
	OwnerIDs     []string `validate:"dive,numeric"`
	Silent       bool

	// Game bot observation
	GameBotID       snowflake.ID `validate:"required"`
	CommandPrefixes []string     `validate:"min=1,dive,required"`
	StartPhrases    []string     `validate:"dive,required"`

	// Daemons
	CacheMaxAge          time.Duration `validate:"gt=0"`
	CacheSweepInterval   time.Duration `validate:"gt=0"`
	ReminderPollInterval time.Duration `validate:"gt=0"`
	ReminderSendRate     float64       `validate:"gt=0"`
	StatusInterval       time.Duration `validate:"gt=0"`
}

// LoadConfig reads .env, binds the environment and validates the result.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	dbPath := v.GetString("DATABASE_PATH")
	if dbPath == "" {
		folder := "."
		if info, err := os.Stat("data"); err == nil && info.IsDir() {
			folder = "./data"
		}
		dbPath = filepath.Join(folder, GetProjectName()+".db")
	}

	var gameBotID snowflake.ID
	if raw := v.GetString("GAME_BOT_ID"); raw != "" {
		id, err := snowflake.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid GAME_BOT_ID: %w", err)
		}
		gameBotID = id
	}

	cfg := &Config{
		Token:                v.GetString("DISCORD_TOKEN"),
		GuildID:              v.GetString("GUILD_ID"),
		DatabasePath:         dbPath,
		OwnerIDs:             splitList(v.GetString("OWNER_IDS")),
		Silent:               v.GetBool("SILENT"),
		GameBotID:            gameBotID,
		CommandPrefixes:      splitList(strings.ToLower(v.GetString("COMMAND_PREFIXES"))),
		StartPhrases:         splitList(strings.ToLower(v.GetString("START_PHRASES"))),
		CacheMaxAge:          v.GetDuration("CACHE_MAX_AGE"),
		CacheSweepInterval:   v.GetDuration("CACHE_SWEEP_INTERVAL"),
		ReminderPollInterval: v.GetDuration("REMINDER_POLL_INTERVAL"),
		ReminderSendRate:     v.GetFloat64("REMINDER_SEND_RATE"),
		StatusInterval:       v.GetDuration("STATUS_INTERVAL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Silent {
		SetSilentMode(true)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("COMMAND_PREFIXES", "rpg")
	v.SetDefault("START_PHRASES", "")
	v.SetDefault("CACHE_MAX_AGE", "10m")
	v.SetDefault("CACHE_SWEEP_INTERVAL", "1m")
	v.SetDefault("REMINDER_POLL_INTERVAL", "5s")
	v.SetDefault("REMINDER_SEND_RATE", 5)
	v.SetDefault("STATUS_INTERVAL", "45s")
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New(MsgConfigMissingToken)
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf(MsgConfigInvalid, err)
	}
	return nil
}

// IsOwner reports whether id is listed in OWNER_IDS.
func (c *Config) IsOwner(id snowflake.ID) bool {
	for _, owner := range c.OwnerIDs {
		if owner == id.String() {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func GetProjectName() string {
	exePath, err := os.Executable()
	projectName := "bot"
	if err == nil {
		projectName = filepath.Base(exePath)
		projectName = strings.TrimSuffix(projectName, ".exe")

		if projectName == "main" || strings.HasPrefix(projectName, "go_build_") || strings.HasSuffix(projectName, ".test") {
			if modData, err := os.ReadFile("go.mod"); err == nil {
				lines := strings.Split(string(modData), "\n")
				if len(lines) > 0 && strings.HasPrefix(lines[0], "module ") {
					parts := strings.Split(lines[0], "/")
					projectName = strings.TrimSpace(parts[len(parts)-1])
				}
			}
		}
	}
	return projectName
}
