package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		AccessSecret     string `mapstructure:"access_secret"`
		AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
		RefreshTTLDays   int    `mapstructure:"refresh_ttl_days"`
		Issuer           string `mapstructure:"issuer"`
		Audience         string `mapstructure:"audience"`
	} `mapstructure:"jwt"`
	Cookie struct {
		Name     string `mapstructure:"name"`
		Secure   bool   `mapstructure:"secure"`
		SameSite string `mapstructure:"same_site"`
		Domain   string `mapstructure:"domain"`
		Path     string `mapstructure:"path"`
	} `mapstructure:"cookie"`
	Google struct {
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"google"`
}

var AppConfig Config

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.SetDefault("jwt.access_ttl_minutes", 15)
	viper.SetDefault("jwt.refresh_ttl_days", 30)
	viper.SetDefault("jwt.issuer", "bizpilot-api")
	viper.SetDefault("jwt.audience", "bizpilot-app")
	viper.SetDefault("cookie.name", "bizpilot_refresh")
	viper.SetDefault("cookie.secure", true)
	viper.SetDefault("cookie.same_site", "strict")
	viper.SetDefault("cookie.path", "/")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
