package main

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"dropvoxsite/internal/app"
)

//go:embed all:frontend
var frontendFiles embed.FS

func main() {
	frontendFS, err := fs.Sub(frontendFiles, "frontend")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load embedded frontend: %v\n", err)
		os.Exit(1)
	}

	application, err := app.NewApplication(frontendFS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "application error: %v\n", err)
		os.Exit(1)
	}
}
