package config

import "os"

func productionConfig() Config {
	logsDir := os.Getenv("NEWSCR_LOGS_DIR")
	if logsDir == "" {
		logsDir = "logs"
	}

	return Config{
		Env: EnvProduction,
		// Empty URL is caught by DB.Validate() before any run starts.
		DB:      DBConfig{URL: os.Getenv("DATABASE_URL")},
		LogsDir: logsDir,
		Scraper: loadScraperConfig(),
	}
}
