//go:build testing

package config

const isTesting = true

func testingConfig() Config {
	return Config{
		Env:     EnvTesting,
		DB:      DBConfig{URL: "postgres://postgres@localhost:5432/newscr_test"},
		LogsDir: "logs",
		Scraper: defaultScraperConfig(),
	}
}
