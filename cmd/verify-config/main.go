// Command verify-config loads every config file, opens the database
// and reports what a service boot would see.
package main

import (
	"fmt"
	"os"

	"github.com/persona-labs/persona-service/config"
	"github.com/persona-labs/persona-service/persona"
	"github.com/persona-labs/persona-service/storage"
)

// ANSI color codes for formatted output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

func main() {
	fmt.Printf("%s--- Config Verifier ---%s\n", ColorBlue, ColorReset)

	cfg, err := config.LoadAllConfigs()
	if err != nil {
		fmt.Printf("%s[FATAL]%s Failed to load config: %v\n", ColorRed, ColorReset, err)
		os.Exit(1)
	}
	fmt.Printf("%s[OK]%s Config loaded from %s\n", ColorGreen, ColorReset, cfg.Home)
	fmt.Printf("     Server:   %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("     Database: %s\n", cfg.DatabasePath())
	fmt.Printf("     Ollama:   %s (%s)\n", cfg.Ollama.URL, cfg.Ollama.Model)

	if cfg.Redis.Addr == "" {
		fmt.Printf("%s[WARN]%s Redis not configured; activity feed and settings disabled\n", ColorYellow, ColorReset)
	} else {
		fmt.Printf("%s[OK]%s Redis configured at %s\n", ColorGreen, ColorReset, cfg.Redis.Addr)
	}
	if cfg.Discord.Token == "" {
		fmt.Printf("%s[WARN]%s Discord token empty; connector disabled\n", ColorYellow, ColorReset)
	} else {
		fmt.Printf("%s[OK]%s Discord connector mapped to %d channel(s)\n", ColorGreen, ColorReset, len(cfg.Discord.ChannelPersonas))
	}

	db, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		fmt.Printf("%s[FATAL]%s Failed to open database: %v\n", ColorRed, ColorReset, err)
		os.Exit(1)
	}
	defer db.Close()
	fmt.Printf("%s[OK]%s Database opened and schema verified\n", ColorGreen, ColorReset)

	store, err := persona.NewStore(cfg.PersonasDir())
	if err != nil {
		fmt.Printf("%s[FATAL]%s Failed to open persona store: %v\n", ColorRed, ColorReset, err)
		os.Exit(1)
	}
	models, err := store.List()
	if err != nil {
		fmt.Printf("%s[FATAL]%s Failed to list personas: %v\n", ColorRed, ColorReset, err)
		os.Exit(1)
	}
	if len(models) == 0 {
		fmt.Printf("%s[WARN]%s No personas found; run make-personas to create the stock set\n", ColorYellow, ColorReset)
	} else {
		fmt.Printf("%s[OK]%s %d persona(s) available:\n", ColorGreen, ColorReset, len(models))
		for _, m := range models {
			fmt.Printf("     - %s (%s, %s)\n", m.ID, m.DisplayName, m.Language)
		}
	}
}
