package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestEnvironment creates a temporary directory structure for config files.
// It returns the path to the temporary config directory and a cleanup function.
func setupTestEnvironment(t *testing.T) (string, func()) {
	tempDir, err := os.MkdirTemp("", "persona-config-test")
	require.NoError(t, err)

	configPath := filepath.Join(tempDir, "PersonaService", "config")
	err = os.MkdirAll(configPath, 0755)
	require.NoError(t, err)

	// Temporarily override the user home directory function to point to our temp dir.
	originalHomeDirFunc := osUserHomeDir
	osUserHomeDir = func() (string, error) {
		return tempDir, nil
	}
	t.Setenv(envHome, "")

	cleanup := func() {
		osUserHomeDir = originalHomeDirFunc
		os.RemoveAll(tempDir)
	}

	return configPath, cleanup
}

func TestLoadAllConfigs_Success(t *testing.T) {
	configPath, cleanup := setupTestEnvironment(t)
	defer cleanup()

	// --- Create mock config files ---
	main := MainConfig{
		ServerConfig:   "server.json",
		RedisConfig:    "redis.json",
		DatabaseConfig: "database.json",
		OllamaConfig:   "ollama.json",
		DiscordConfig:  "discord.json",
	}
	mainData, _ := json.Marshal(main)
	require.NoError(t, os.WriteFile(filepath.Join(configPath, "config.json"), mainData, 0644))

	serverCfg := ServerConfig{Host: "127.0.0.1", Port: 9000}
	serverData, _ := json.Marshal(serverCfg)
	require.NoError(t, os.WriteFile(filepath.Join(configPath, "server.json"), serverData, 0644))

	redisCfg := RedisConfig{Addr: "localhost:1234"}
	redisData, _ := json.Marshal(redisCfg)
	require.NoError(t, os.WriteFile(filepath.Join(configPath, "redis.json"), redisData, 0644))

	// --- Run the function ---
	all, err := LoadAllConfigs()

	// --- Assert results ---
	assert.NoError(t, err)
	require.NotNil(t, all)
	assert.Equal(t, "127.0.0.1", all.Server.Host)
	assert.Equal(t, 9000, all.Server.Port)
	assert.Equal(t, "localhost:1234", all.Redis.Addr)
	// Files not written up-front are created with defaults.
	assert.Equal(t, "http://localhost:11434", all.Ollama.URL)
}

func TestLoadAllConfigs_FileCreation(t *testing.T) {
	configPath, cleanup := setupTestEnvironment(t)
	defer cleanup()

	// --- Run the function without any pre-existing files ---
	all, err := LoadAllConfigs()

	// --- Assert results ---
	assert.NoError(t, err)
	require.NotNil(t, all)

	// Check that the default files were created
	assert.FileExists(t, filepath.Join(configPath, "config.json"))
	assert.FileExists(t, filepath.Join(configPath, "server.json"))
	assert.FileExists(t, filepath.Join(configPath, "redis.json"))
	assert.FileExists(t, filepath.Join(configPath, "database.json"))
	assert.FileExists(t, filepath.Join(configPath, "ollama.json"))
	assert.FileExists(t, filepath.Join(configPath, "discord.json"))

	// Check that the config struct has the default values
	assert.Equal(t, "", all.Discord.Token)
	assert.Equal(t, "localhost:6379", all.Redis.Addr)
	assert.Equal(t, 8000, all.Server.Port)
}

func TestLoadAllConfigs_InvalidJSON(t *testing.T) {
	configPath, cleanup := setupTestEnvironment(t)
	defer cleanup()

	// Create a malformed JSON file
	err := os.WriteFile(filepath.Join(configPath, "config.json"), []byte("{ not valid json }"), 0644)
	require.NoError(t, err)

	// --- Run the function ---
	_, err = LoadAllConfigs()

	// --- Assert results ---
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "could not decode config file")
}

func TestHomeDirEnvOverride(t *testing.T) {
	t.Setenv(envHome, "/tmp/persona-home")

	home, err := HomeDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/persona-home", home)
}

func TestDatabasePathResolution(t *testing.T) {
	cfg := &AllConfig{Home: "/srv/persona", Database: DatabaseConfig{Path: "persona.db"}}
	assert.Equal(t, filepath.Join("/srv/persona", "persona.db"), cfg.DatabasePath())

	cfg.Database.Path = "/var/lib/persona.db"
	assert.Equal(t, "/var/lib/persona.db", cfg.DatabasePath())
}
