package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file over the defaults, applies environment
// overrides for secrets, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays credentials and endpoints from the environment so they
// can be kept out of config files.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = v
		}
		if c.Embedding.APIKey == "" {
			c.Embedding.APIKey = v
		}
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = v
		}
		if c.Embedding.BaseURL == "" {
			c.Embedding.BaseURL = v
		}
	}
	if v := os.Getenv("MILVUS_HOST"); v != "" {
		c.VectorDB.Host = v
	}
	if v := os.Getenv("MILVUS_PASSWORD"); v != "" {
		c.VectorDB.Password = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		c.Session.Store = "redis"
		c.Session.Redis.Address = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Session.Redis.Password = v
	}
	if v := os.Getenv("FAQ_ENDPOINT"); v != "" {
		c.FAQ.Endpoint = v
	}
}
