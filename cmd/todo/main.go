package main

import (
	"fmt"
	"io"
	"os"

	app "github.com/valter-silva-au/todo/internal"
	"github.com/valter-silva-au/todo/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	cli.Initialize = func(opts cli.Options) (io.Closer, error) {
		basePath := opts.DataDir
		if basePath == "" {
			basePath = app.ResolveBasePath()
		}
		return app.NewApp(basePath, app.Overrides{
			Backend:  opts.Backend,
			LogLevel: opts.LogLevel,
		})
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
