package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kirr-vcs/vcs/internal/cli"
	"github.com/kirr-vcs/vcs/internal/ops"
	"github.com/kirr-vcs/vcs/internal/repo"
	"github.com/kirr-vcs/vcs/internal/termcolor"
)

func registerTagCommands(app *cli.App, cw *termcolor.Writer) {
	app.Register(&cli.Command{
		Name:    "tag",
		Summary: "Create, list, or delete tags",
		Usage:   "vcs tag [-a] [-m <message>] [-d] [<name>] [<commit>]",
		Run:     func(args []string) int { return runTag(args, cw) },
	})
}

func runTag(args []string, cw *termcolor.Writer) int {
	fs := flag.NewFlagSet("tag", flag.ContinueOnError)
	annotated := fs.Bool("a", false, "create an annotated tag")
	message := fs.String("m", "", "annotated tag message")
	del := fs.Bool("d", false, "delete the named tag")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	r, err := openRepo()
	if err != nil {
		return fail(cw, "tag", err)
	}

	if fs.NArg() == 0 {
		names, err := r.ListTags()
		if err != nil {
			return fail(cw, "tag", err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return 0
	}

	name := fs.Arg(0)
	if *del {
		if err := r.DeleteTag(name); err != nil {
			return fail(cw, "tag", err)
		}
		return 0
	}

	target := "HEAD"
	if fs.NArg() > 1 {
		target = fs.Arg(1)
	}
	commitID, err := r.ResolveRevision(target)
	if err != nil {
		return fail(cw, "tag", err)
	}

	if *annotated && *message == "" {
		fmt.Fprintln(os.Stderr, "vcs tag: -a requires -m <message>")
		return 1
	}

	if err := r.CreateTag(ops.CreateTagOptions{
		Name:      name,
		Target:    commitID,
		Annotated: *annotated,
		Message:   *message,
		Tagger:    repo.ResolveIdentity(),
		Now:       time.Now(),
	}); err != nil {
		return fail(cw, "tag", err)
	}
	return 0
}
