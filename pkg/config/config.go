package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	DSN        string           `toml:"dsn"`
	Crawler    CrawlerConfig    `toml:"crawler"`
	Politeness PolitenessConfig `toml:"politeness"`
	Logging    LoggingConfig    `toml:"logging"`
}

type CrawlerConfig struct {
	UserAgent  string `toml:"user_agent"`
	MaxPages   int    `toml:"max_pages"`
	OutputDir  string `toml:"output_dir"`
	OutputFile string `toml:"output_file"`
	PerPage    bool   `toml:"per_page"`
}

type PolitenessConfig struct {
	Delay         string `toml:"delay"`
	RobotsTimeout string `toml:"robots_timeout"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.Crawler.UserAgent = "DocCrawler/1.0"
	cfg.Crawler.OutputDir = "output"
	cfg.Crawler.OutputFile = "crawled_content.md"
	cfg.Politeness.Delay = "1s"
	cfg.Politeness.RobotsTimeout = "10s"
	cfg.Logging.Format = "text"
	cfg.Logging.Level = "info"
	return &cfg
}

// Load reads a TOML config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}

	return cfg, nil
}

// GetDelay is the politeness fallback used when robots.txt declares
// no delay of its own.
func (c *PolitenessConfig) GetDelay() time.Duration {
	d, err := time.ParseDuration(c.Delay)
	if err != nil {
		return 1 * time.Second // Fallback
	}
	return d
}

// GetRobotsTimeout bounds the robots.txt fetch at crawl start.
func (c *PolitenessConfig) GetRobotsTimeout() time.Duration {
	d, err := time.ParseDuration(c.RobotsTimeout)
	if err != nil {
		return 10 * time.Second // Fallback
	}
	return d
}
