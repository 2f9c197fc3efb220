package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// States holds resolved 2-letter codes in discovery order.
	States    []string
	MinBeds   int
	MinUnits  int
	MaxPages  int
	Headless  bool
	ProxyURL  string
	DBPath    string
	OutputDir string
	Scheduler SchedulerConfig
	Scraper   ScraperConfig
}

type SchedulerConfig struct {
	Cron     string
	Interval time.Duration
}

type ScraperConfig struct {
	DetailDelayMS int
}

// searchFile is the optional YAML search config (SEARCH_CONFIG, default
// config/search.yaml). Env vars override whatever it sets.
type searchFile struct {
	States   []string `yaml:"states"`
	MinBeds  int      `yaml:"min_beds"`
	MinUnits int      `yaml:"min_units"`
	MaxPages int      `yaml:"max_pages"`
}

// defaultStates is the stock search list. Tokens may be codes, full names or
// common misspellings; they are resolved before any network activity.
var defaultStates = []string{
	"Alabama", "Arkansas", "Arizona", "California", "Colorado", "Idaho",
	"Illinois", "Maryland", "Massachusetts", "Michigan", "Minnesota",
	"Montana", "Nebraska", "Nevada", "New Hampshire", "North Carolina",
	"Ohio", "Oklahoma", "Oregon", "PA", "RI", "SC", "TN", "TX", "UT", "VT",
	"Wisconsin", "WY",
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		MinBeds:   50,
		MinUnits:  40,
		MaxPages:  12,
		Headless:  os.Getenv("HEADLESS") == "true",
		ProxyURL:  os.Getenv("PROXY_URL"),
		DBPath:    getEnv("DB_PATH", "scraper.db"),
		OutputDir: getEnv("OUTPUT_DIR", "."),
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SCRAPE_CRON"),
		},
		Scraper: ScraperConfig{
			DetailDelayMS: getEnvInt("DETAIL_DELAY_MS", 750),
		},
	}

	if interval := os.Getenv("SCRAPE_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	tokens := defaultStates
	if file, err := loadSearchFile(getEnv("SEARCH_CONFIG", "config/search.yaml")); err != nil {
		return nil, err
	} else if file != nil {
		if len(file.States) > 0 {
			tokens = file.States
		}
		if file.MinBeds > 0 {
			cfg.MinBeds = file.MinBeds
		}
		if file.MinUnits > 0 {
			cfg.MinUnits = file.MinUnits
		}
		if file.MaxPages > 0 {
			cfg.MaxPages = file.MaxPages
		}
	}

	if env := os.Getenv("STATES"); env != "" {
		tokens = splitList(env)
	}
	cfg.MinBeds = getEnvInt("MIN_BEDS", cfg.MinBeds)
	cfg.MinUnits = getEnvInt("MIN_UNITS", cfg.MinUnits)
	cfg.MaxPages = getEnvInt("MAX_PAGES", cfg.MaxPages)

	states, err := ResolveStates(tokens)
	if err != nil {
		return nil, err
	}
	cfg.States = states

	return cfg, nil
}

func loadSearchFile(path string) (*searchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var file searchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &file, nil
}

func splitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
