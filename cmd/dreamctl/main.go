// Package main is the entry point for the dreamctl CLI.
package main

import (
	"errors"
	"os"

	"github.com/thoreinstein/dreamctl/cmd/dreamctl/commands"
	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		code := dreamerrors.ExitUser
		var exitErr *dreamerrors.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		}
		os.Exit(code)
	}
}
