// Command vcs is the CLI front end for the repository engine in
// internal/repo: global-flag parsing (--color, --no-color, --version) plus
// delegation to internal/cli for dispatch, help, and "did you mean?"
// suggestions.
package main

import (
	"fmt"
	"os"

	"github.com/kirr-vcs/vcs/internal/cli"
	"github.com/kirr-vcs/vcs/internal/termcolor"
)

// version is the CLI's reported version string.
const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(rawArgs []string) int {
	colorMode := termcolor.ColorAuto
	var args []string

	for i := 0; i < len(rawArgs); i++ {
		arg := rawArgs[i]
		switch {
		case arg == "--version":
			fmt.Println("vcs version " + version)
			return 0
		case arg == "--no-color":
			colorMode = termcolor.ColorNever
		case arg == "--color":
			if i+1 >= len(rawArgs) {
				fmt.Fprintln(os.Stderr, "vcs: --color requires an argument (auto, always, never)")
				return 1
			}
			i++
			mode, err := termcolor.ParseColorMode(rawArgs[i])
			if err != nil {
				fmt.Fprintf(os.Stderr, "vcs: %v\n", err)
				return 1
			}
			colorMode = mode
		default:
			args = append(args, arg)
		}
	}

	cw := termcolor.NewWriter(os.Stdout, colorMode)
	app := cli.NewApp("vcs", version)
	registerCommands(app, cw)

	return app.Run(args, cw)
}

func registerCommands(app *cli.App, cw *termcolor.Writer) {
	registerRepoCommands(app, cw)
	registerHistoryCommands(app, cw)
	registerBranchCommands(app, cw)
	registerTagCommands(app, cw)
	registerStashCommands(app, cw)
	registerWatchCommand(app, cw)
}
