package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kirr-vcs/vcs/internal/cli"
	"github.com/kirr-vcs/vcs/internal/ops"
	"github.com/kirr-vcs/vcs/internal/repo"
	"github.com/kirr-vcs/vcs/internal/termcolor"
)

func registerStashCommands(app *cli.App, cw *termcolor.Writer) {
	app.Register(&cli.Command{
		Name:    "stash",
		Summary: "Save, list, apply, or drop stashed changes",
		Usage:   "vcs stash [save [<message>] | list | pop [<n>] | apply [<n>] | drop [<n>]]",
		Run:     func(args []string) int { return runStash(args, cw) },
	})
}

func runStash(args []string, cw *termcolor.Writer) int {
	sub := "save"
	rest := args
	if len(args) > 0 {
		sub, rest = args[0], args[1:]
	}

	r, err := openRepo()
	if err != nil {
		return fail(cw, "stash", err)
	}

	switch sub {
	case "save":
		return stashSave(r, rest, cw)
	case "list":
		return stashList(r, cw)
	case "pop":
		return stashPopOrApply(r, rest, cw, true)
	case "apply":
		return stashPopOrApply(r, rest, cw, false)
	case "drop":
		return stashDrop(r, rest, cw)
	default:
		fmt.Fprintf(os.Stderr, "vcs stash: unknown subcommand %q\n", sub)
		return 1
	}
}

func stashSave(r *repo.Repository, args []string, cw *termcolor.Writer) int {
	idx, err := r.LoadIndex()
	if err != nil {
		return fail(cw, "stash", err)
	}

	message := ""
	if len(args) > 0 {
		message = args[0]
	} else if branch, err := r.CurrentBranch(); err == nil && branch != "" {
		message = ops.DefaultStashMessage(branch)
		if head, err := r.ResolveRevision("HEAD"); err == nil {
			if c, err := r.Store.GetCommit(head); err == nil {
				subject := strings.SplitN(c.Message, "\n", 2)[0]
				message = fmt.Sprintf("%s: %s %s", message, head.Short(), subject)
			}
		}
	}

	saved, err := r.StashSave(idx, message, time.Now().Unix())
	if err != nil {
		return fail(cw, "stash", err)
	}
	if err := r.SaveIndex(idx); err != nil {
		return fail(cw, "stash", err)
	}
	if !saved {
		fmt.Println("No local changes to save")
	}
	return 0
}

func stashList(r *repo.Repository, cw *termcolor.Writer) int {
	entries, err := r.StashList()
	if err != nil {
		return fail(cw, "stash", err)
	}
	for i, e := range entries {
		fmt.Printf("stash@{%d}: %s\n", i, e.Message)
	}
	return 0
}

func stashPopOrApply(r *repo.Repository, args []string, cw *termcolor.Writer, pop bool) int {
	n, err := stashIndexArg(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vcs stash: %v\n", err)
		return 1
	}
	idx, err := r.LoadIndex()
	if err != nil {
		return fail(cw, "stash", err)
	}
	if pop {
		err = r.StashPop(idx, n)
	} else {
		err = r.StashApply(idx, n)
	}
	if err != nil {
		return fail(cw, "stash", err)
	}
	if err := r.SaveIndex(idx); err != nil {
		return fail(cw, "stash", err)
	}
	return 0
}

func stashDrop(r *repo.Repository, args []string, cw *termcolor.Writer) int {
	n, err := stashIndexArg(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vcs stash: %v\n", err)
		return 1
	}
	if err := r.StashDrop(n); err != nil {
		return fail(cw, "stash", err)
	}
	return 0
}

func stashIndexArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	return strconv.Atoi(args[0])
}
