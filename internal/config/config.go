package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the fields chyrpal needs to reach a Chyrp backend.
type Config struct {
	APIBase        string
	PageSize       int
	RefreshSeconds int
}

const (
	defaultConfigPath     = "~/.config/chyrpal/config.toml"
	defaultAPIBase        = "127.0.0.1:8000/api"
	defaultPageSize       = 10
	defaultRefreshSeconds = 60
)

// Load locates and parses the chyrpal config, falling back to defaults
// when missing. A .env file in the working directory and CHYRP_*
// environment variables override the file values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBase:        defaultAPIBase,
		PageSize:       defaultPageSize,
		RefreshSeconds: defaultRefreshSeconds,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase        string `toml:"api_base"`
		PageSize       int    `toml:"page_size"`
		RefreshSeconds int    `toml:"refresh_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if base := strings.TrimSpace(raw.APIBase); base != "" {
		cfg.APIBase = base
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if raw.RefreshSeconds > 0 {
		cfg.RefreshSeconds = raw.RefreshSeconds
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv layers .env and process environment overrides on top of the
// file values. A missing .env is fine.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if base := strings.TrimSpace(os.Getenv("CHYRP_API_BASE")); base != "" {
		cfg.APIBase = base
	}
	if raw := strings.TrimSpace(os.Getenv("CHYRP_PAGE_SIZE")); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			cfg.PageSize = size
		}
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
