package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/kirr-vcs/vcs/internal/cli"
	"github.com/kirr-vcs/vcs/internal/termcolor"
)

func registerHistoryCommands(app *cli.App, cw *termcolor.Writer) {
	app.Register(&cli.Command{
		Name:    "log",
		Summary: "Show the commit history reachable from HEAD",
		Usage:   "vcs log [-n <max>]",
		Run:     func(args []string) int { return runLog(args, cw) },
	})
}

func runLog(args []string, cw *termcolor.Writer) int {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	max := fs.Int("n", 0, "limit to the most recent N commits (0 = unbounded)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	r, err := openRepo()
	if err != nil {
		return fail(cw, "log", err)
	}
	entries, err := r.Log(*max)
	if err != nil {
		return fail(cw, "log", err)
	}

	for _, e := range entries {
		fmt.Printf("%s %s\n", cw.Yellow("commit"), cw.Yellow(string(e.ID)))
		if len(e.Commit.Parents) > 1 {
			shorts := make([]string, len(e.Commit.Parents))
			for i, p := range e.Commit.Parents {
				shorts[i] = p.Short()
			}
			fmt.Printf("Merge: %s\n", strings.Join(shorts, " "))
		}
		fmt.Printf("Author: %s\n", e.Commit.Author)
		fmt.Printf("\n    %s\n\n", e.Commit.Message)
	}
	return 0
}
