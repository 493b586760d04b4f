package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
	} `yaml:"server"`

	Classifier struct {
		Endpoint      string        `yaml:"endpoint"`
		Token         string        `yaml:"token"`
		ReadyInterval time.Duration `yaml:"readyInterval"`
	} `yaml:"classifier"`

	Gemini struct {
		APIKey  string `yaml:"apiKey"`
		BaseURL string `yaml:"baseURL"`
		Model   string `yaml:"model"`
	} `yaml:"gemini"`

	Groq struct {
		APIKey  string `yaml:"apiKey"`
		BaseURL string `yaml:"baseURL"`
		Model   string `yaml:"model"`
	} `yaml:"groq"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
}

// Default returns the settings used when no config file is present.
func Default() *Config {
	var c Config
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8000
	c.Classifier.Endpoint = "https://api-inference.huggingface.co/models/mrm8488/codebert-base-finetuned-detect-insecure-code"
	c.Classifier.ReadyInterval = 5 * time.Second
	c.Gemini.Model = "gemini-2.0-flash"
	c.Groq.BaseURL = "https://api.groq.com/openai/v1"
	c.Groq.Model = "llama-3.3-70b-versatile"
	c.Logging.Level = "info"
	c.Logging.Format = "text"
	c.Logging.Output = "stdout"
	return &c
}

// Load reads the yaml file on top of the defaults, then applies environment
// overrides. A missing file is not an error. API keys are not checked here:
// a missing key surfaces as a backend error on first use.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.Groq.APIKey = v
	}
	if v := os.Getenv("HF_API_TOKEN"); v != "" {
		c.Classifier.Token = v
	}
	if v := os.Getenv("CLASSIFIER_URL"); v != "" {
		c.Classifier.Endpoint = v
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = p
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
