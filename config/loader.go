package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadAllConfigs loads every config file from the service home
// directory, creating the directory and default files on first run.
func LoadAllConfigs() (*AllConfig, error) {
	home, err := HomeDir()
	if err != nil {
		return nil, err
	}
	configDir := filepath.Join(home, "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	main := defaultMain()
	if err := loadOrCreate(filepath.Join(configDir, "config.json"), &main, defaultMain()); err != nil {
		return nil, err
	}

	all := &AllConfig{
		Home:     home,
		Server:   defaultServer(),
		Redis:    defaultRedis(),
		Database: defaultDatabase(),
		Ollama:   defaultOllama(),
		Discord:  defaultDiscord(),
	}

	files := []struct {
		name     string
		target   any
		defaults any
	}{
		{main.ServerConfig, &all.Server, defaultServer()},
		{main.RedisConfig, &all.Redis, defaultRedis()},
		{main.DatabaseConfig, &all.Database, defaultDatabase()},
		{main.OllamaConfig, &all.Ollama, defaultOllama()},
		{main.DiscordConfig, &all.Discord, defaultDiscord()},
	}
	for _, f := range files {
		if err := loadOrCreate(filepath.Join(configDir, f.name), f.target, f.defaults); err != nil {
			return nil, err
		}
	}
	return all, nil
}
