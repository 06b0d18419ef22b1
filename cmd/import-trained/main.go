// Command import-trained bulk-loads question/answer pairs from a text
// file into a persona's trained bank, without going through the API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/persona-labs/persona-service/config"
	"github.com/persona-labs/persona-service/persona"
	"github.com/persona-labs/persona-service/storage"
	"github.com/persona-labs/persona-service/trained"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <persona-id> <file>\n", os.Args[0])
		os.Exit(2)
	}
	personaID, path := os.Args[1], os.Args[2]

	cfg, err := config.LoadAllConfigs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	profiles, err := persona.NewStore(cfg.PersonasDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	if _, err := profiles.Load(personaID); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := trained.NewStore(db)
	imported, err := store.Import(ctx, personaID, file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed after %d record(s): %v\n", imported, err)
		os.Exit(1)
	}

	count, err := store.Count(ctx, personaID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d record(s); persona %q now has %d trained response(s)\n", imported, personaID, count)
}
