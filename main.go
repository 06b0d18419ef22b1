package main

import (
	"fmt"
	"os"

	"github.com/persona-labs/persona-service/app"
)

func main() {
	a, err := app.NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	if err := a.Run(); err != nil {
		a.Logger.Error("service exited with error", "err", err)
		os.Exit(1)
	}
}
