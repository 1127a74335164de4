// Package config loads the bot's configuration: secrets from the
// environment, everything else from data/bot_config.yaml.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"orgbot/model"
)

// Load loads the configuration from environment variables and the YAML file.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, channel logging will be disabled")
	}

	keepAliveAddr := os.Getenv("KEEPALIVE_ADDR")
	if keepAliveAddr == "" {
		keepAliveAddr = ":8080"
	}

	v := viper.New()
	v.SetConfigName("bot_config")
	v.SetConfigType("yaml")
	v.AddConfigPath("data")
	v.SetDefault("absence.sweep_interval", time.Minute)
	v.SetDefault("sanction.sweep_interval", 10*time.Minute)
	v.SetDefault("registration.member_retention_days", 7)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read bot_config.yaml: %w", err)
	}

	cfg := &model.Config{
		BotToken:      token,
		AppID:         appID,
		LogChannelID:  logChannelID,
		KeepAliveAddr: keepAliveAddr,
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse bot_config.yaml: %w", err)
	}
	if cfg.GuildID == "" {
		return nil, fmt.Errorf("bot_config.yaml must set guild_id")
	}
	return cfg, nil
}
