package config

import (
	"strings"

	"github.com/NiklasKy/QuingDiscordBot/model"

	"github.com/spf13/viper"
)

// Cfg is the loaded configuration, populated by LoadConfig.
var Cfg model.Config

// LoadConfig reads config.yaml from the working directory and overlays
// environment variables (TOKEN, OPENAI_API_KEY via openai.api_key, ...).
func LoadConfig() (err error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("openai.model", "gpt-4o")
	viper.SetDefault("openai.timeout_seconds", 60)
	viper.SetDefault("database.path", "./data/quingcraft.db")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&Cfg)
	return
}
