// Package viper loads crawl configuration from YAML files.
package viper

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/wikivault/wikivault"
)

// Load reads a YAML configuration file, applies defaults for unset keys,
// and validates the result. Environment variables override file values.
func Load(path string) (*wikivault.Config, error) {
	v := viper.New()

	v.SetDefault("fetch_method", wikivault.FetchDirect)
	v.SetDefault("delay_seconds", 1.0)
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("max_retries", 3)
	v.SetDefault("captcha_wait_minutes", 5)
	v.SetDefault("recrawl_age_days", 30)
	v.SetDefault("concurrency", 1)
	v.SetDefault("api_page_limit", 500)
	v.SetDefault("user_agent", wikivault.UserAgentRotate)
	v.SetDefault("crawler_id", "wikivault")
	v.SetDefault("database_path", "./data/documents.db")
	v.SetDefault("checkpoint_path", "./data/checkpoints.db")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.viewport_width", 1920)
	v.SetDefault("browser.viewport_height", 1080)
	v.SetDefault("browser.block_images", true)
	v.SetDefault("browser.block_ads", true)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	v.AutomaticEnv()

	var cfg wikivault.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// An unset api_endpoint defaults to the conventional MediaWiki
	// location on the source domain.
	if cfg.UseAPI && cfg.APIEndpoint == "" && cfg.SourceDomain != "" {
		cfg.APIEndpoint = "https://" + cfg.SourceDomain + "/api.php"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
