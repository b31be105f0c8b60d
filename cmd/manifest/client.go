package main

import (
	"os"

	"github.com/boshu2/manifest/internal/app"
	"github.com/boshu2/manifest/internal/config"
)

// buildApp resolves configuration from the persistent flags and wires a
// fresh App, rooted at the current working directory.
func buildApp() (*app.App, error) {
	overrides := &config.Config{
		Output:  GetOutput(),
		BaseDir: GetBaseDir(),
		Verbose: GetVerbose(),
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return app.New(cwd, overrides)
}
