package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	Port          string `mapstructure:"PORT"`
	LobbyCapacity int    `mapstructure:"LOBBY_CAPACITY"`
	QuestionCount int    `mapstructure:"QUESTION_COUNT"`
	CountdownFrom int    `mapstructure:"COUNTDOWN_FROM"`
	CleanupDelay  int    `mapstructure:"CLEANUP_DELAY_SECONDS"`
}

var AppConfig *Config

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOBBY_CAPACITY", 2)
	viper.SetDefault("QUESTION_COUNT", 10)
	viper.SetDefault("COUNTDOWN_FROM", 5)
	viper.SetDefault("CLEANUP_DELAY_SECONDS", 15)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
