package config

import "os"

func developmentConfig() Config {
	dbUrl := os.Getenv("DATABASE_URL")
	if dbUrl == "" {
		dbUrl = "postgres://postgres@localhost:5432/newscr_development"
	}

	return Config{
		Env:     EnvDevelopment,
		DB:      DBConfig{URL: dbUrl},
		LogsDir: "logs",
		Scraper: loadScraperConfig(),
	}
}
