// Package config loads the service configuration from a set of JSON
// files under the service home directory, creating defaults on first
// run so a fresh install boots without manual setup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// envHome overrides the default home directory when set.
const envHome = "PERSONA_SERVICE_HOME"

// Re-assign os.UserHomeDir to a variable so tests can mock it.
var osUserHomeDir = os.UserHomeDir

// MainConfig names the per-concern config files.
type MainConfig struct {
	ServerConfig   string `json:"server_config"`
	RedisConfig    string `json:"redis_config"`
	DatabaseConfig string `json:"database_config"`
	OllamaConfig   string `json:"ollama_config"`
	DiscordConfig  string `json:"discord_config"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// RedisConfig holds the redis connection settings. An empty Addr
// disables redis-backed features.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// DatabaseConfig holds the SQLite settings. A relative Path resolves
// under the service home directory.
type DatabaseConfig struct {
	Path string `json:"path"`
}

// OllamaConfig holds the text generator settings.
type OllamaConfig struct {
	URL            string `json:"url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// DiscordConfig holds the optional Discord connector settings. An empty
// Token disables the connector. ChannelPersonas maps a channel ID to
// the persona that answers in it.
type DiscordConfig struct {
	Token           string            `json:"token"`
	ChannelPersonas map[string]string `json:"channel_personas"`
}

// AllConfig is every loaded config file plus the resolved home dir.
type AllConfig struct {
	Home     string
	Server   ServerConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Ollama   OllamaConfig
	Discord  DiscordConfig
}

func defaultMain() MainConfig {
	return MainConfig{
		ServerConfig:   "server.json",
		RedisConfig:    "redis.json",
		DatabaseConfig: "database.json",
		OllamaConfig:   "ollama.json",
		DiscordConfig:  "discord.json",
	}
}

func defaultServer() ServerConfig {
	return ServerConfig{Host: "0.0.0.0", Port: 8000}
}

func defaultRedis() RedisConfig {
	return RedisConfig{Addr: "localhost:6379"}
}

func defaultDatabase() DatabaseConfig {
	return DatabaseConfig{Path: "persona.db"}
}

func defaultOllama() OllamaConfig {
	return OllamaConfig{URL: "http://localhost:11434", Model: "llama3.2:1b", TimeoutSeconds: 10}
}

func defaultDiscord() DiscordConfig {
	return DiscordConfig{ChannelPersonas: map[string]string{}}
}

// HomeDir resolves the service home directory: $PERSONA_SERVICE_HOME if
// set, otherwise ~/PersonaService.
func HomeDir() (string, error) {
	if dir := os.Getenv(envHome); dir != "" {
		return dir, nil
	}
	home, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}
	return filepath.Join(home, "PersonaService"), nil
}

// PersonasDir is where the persona profile JSON files live.
func (c *AllConfig) PersonasDir() string {
	return filepath.Join(c.Home, "personas")
}

// DatabasePath resolves the SQLite path, keeping relative paths inside
// the service home.
func (c *AllConfig) DatabasePath() string {
	if filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(c.Home, c.Database.Path)
}

// loadOrCreate reads a JSON config file, writing the provided defaults
// first when the file does not exist.
func loadOrCreate(path string, v any, defaults any) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := json.MarshalIndent(defaults, "", "  ")
		if err != nil {
			return fmt.Errorf("could not encode default config for %s: %w", path, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("could not create default config file %s: %w", path, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("could not decode config file %s: %w", path, err)
	}
	return nil
}
