package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	Env          string
	DBPath       string
	SettingsPath string
	CatalogURL   string
}

var AppConfig *Config

func Load() {
	_ = godotenv.Load()

	AppConfig = &Config{
		Port:         GetEnv("PORT", "3000"),
		Env:          GetEnv("ENV", "development"),
		DBPath:       GetEnv("DB_PATH", "./data/flashdeck.db"),
		SettingsPath: GetEnv("SETTINGS_PATH", "./data/settings.json"),
		CatalogURL:   GetEnv("CATALOG_URL", "https://flashdeck-decks.pages.dev/decks.json"),
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
