// Command authd runs the OAuth2 authorization server.
package main

import (
	"fmt"
	"os"

	"github.com/oauth2gate/authd/internal/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authd: failed to initialize: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "authd: %v\n", err)
		os.Exit(1)
	}
}
