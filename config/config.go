package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env     Env
	DB      DBConfig
	LogsDir string
	Scraper ScraperConfig
}

type Env int

const (
	EnvDevelopment Env = iota
	EnvTesting
	EnvProduction
)

func (e Env) IsDevOrTest() bool {
	return e == EnvDevelopment || e == EnvTesting
}

type DBConfig struct {
	URL string
}

func (c DBConfig) Validate() error {
	if c.URL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	return nil
}

// ScraperConfig carries every tunable threshold of the extraction pipeline.
// The zero-config defaults are the ones the sites tolerate; a YAML file
// pointed to by NEWSCR_SCRAPER_CONFIG overrides individual values.
type ScraperConfig struct {
	MinBodyWords           int        `yaml:"min_body_words"`
	MinPageChars           int        `yaml:"min_page_chars"`
	MaxConsecutiveFailures int        `yaml:"max_consecutive_failures"`
	SessionMaxArticles     int        `yaml:"session_max_articles"`
	SessionMaxAge          Duration   `yaml:"session_max_age"`
	RotateEveryDays        int        `yaml:"rotate_every_days"`
	ElementWait            Duration   `yaml:"element_wait"`
	PageLoad               Duration   `yaml:"page_load"`
	BlockedCooldown        Duration   `yaml:"blocked_cooldown"`
	RecreateCooldown       Duration   `yaml:"recreate_cooldown"`
	Politeness             Politeness `yaml:"politeness"`
	Retry                  Retry      `yaml:"retry"`
}

type Politeness struct {
	MinDelay             Duration `yaml:"min_delay"`
	MaxDelay             Duration `yaml:"max_delay"`
	BatchBreakEvery      int      `yaml:"batch_break_every"`
	BatchBreakMin        Duration `yaml:"batch_break_min"`
	BatchBreakMax        Duration `yaml:"batch_break_max"`
	LongBreakEvery       int      `yaml:"long_break_every"`
	LongBreakMin         Duration `yaml:"long_break_min"`
	LongBreakMax         Duration `yaml:"long_break_max"`
	EmergencyMinRequests int      `yaml:"emergency_min_requests"`
	EmergencyFailureRate float64  `yaml:"emergency_failure_rate"`
	EmergencyMinDelay    Duration `yaml:"emergency_min_delay"`
	EmergencyMaxDelay    Duration `yaml:"emergency_max_delay"`
}

type Retry struct {
	MaxAttempts int      `yaml:"max_attempts"`
	BaseDelay   Duration `yaml:"base_delay"`
	Multiplier  float64  `yaml:"multiplier"`
	MaxDelay    Duration `yaml:"max_delay"`
}

// Duration unmarshals from Go duration strings ("2.5s", "1m").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func defaultScraperConfig() ScraperConfig {
	return ScraperConfig{
		MinBodyWords:           15,
		MinPageChars:           500,
		MaxConsecutiveFailures: 3,
		SessionMaxArticles:     25,
		SessionMaxAge:          Duration(48 * time.Hour),
		RotateEveryDays:        2,
		ElementWait:            Duration(10 * time.Second),
		PageLoad:               Duration(30 * time.Second),
		BlockedCooldown:        Duration(5 * time.Minute),
		RecreateCooldown:       Duration(30 * time.Second),
		Politeness: Politeness{
			MinDelay:             Duration(2500 * time.Millisecond),
			MaxDelay:             Duration(5 * time.Second),
			BatchBreakEvery:      10,
			BatchBreakMin:        Duration(10 * time.Second),
			BatchBreakMax:        Duration(20 * time.Second),
			LongBreakEvery:       50,
			LongBreakMin:         Duration(60 * time.Second),
			LongBreakMax:         Duration(120 * time.Second),
			EmergencyMinRequests: 10,
			EmergencyFailureRate: 0.3,
			EmergencyMinDelay:    Duration(10 * time.Second),
			EmergencyMaxDelay:    Duration(20 * time.Second),
		},
		Retry: Retry{
			MaxAttempts: 3,
			BaseDelay:   Duration(2 * time.Second),
			Multiplier:  2,
			MaxDelay:    Duration(60 * time.Second),
		},
	}
}

func loadScraperConfig() ScraperConfig {
	cfg := defaultScraperConfig()
	path, ok := os.LookupEnv("NEWSCR_SCRAPER_CONFIG")
	if !ok {
		return cfg
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		panic(err)
	}
	return cfg
}

var Cfg Config

func init() {
	if isTesting {
		Cfg = testingConfig()
		return
	}

	_ = godotenv.Load()

	if env, ok := os.LookupEnv("NEWSCR_ENV"); ok && env == "production" {
		Cfg = productionConfig()
		return
	}

	Cfg = developmentConfig()
}
