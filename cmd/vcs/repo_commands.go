package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kirr-vcs/vcs/internal/cli"
	"github.com/kirr-vcs/vcs/internal/ops"
	"github.com/kirr-vcs/vcs/internal/progress"
	"github.com/kirr-vcs/vcs/internal/repo"
	"github.com/kirr-vcs/vcs/internal/termcolor"
)

func registerRepoCommands(app *cli.App, cw *termcolor.Writer) {
	app.Register(&cli.Command{
		Name:    "init",
		Summary: "Create a new, empty repository",
		Usage:   "vcs init [<directory>]",
		Run:     runInit,
	})
	app.Register(&cli.Command{
		Name:    "add",
		Summary: "Stage files or directories",
		Usage:   "vcs add <path>...",
		Run:     runAdd,
	})
	app.Register(&cli.Command{
		Name:    "commit",
		Summary: "Record staged changes as a new commit",
		Usage:   "vcs commit -m <message>",
		Run:     runCommit,
	})
	app.Register(&cli.Command{
		Name:    "status",
		Summary: "Show staged, unstaged, and untracked changes",
		Usage:   "vcs status",
		Run:     func(args []string) int { return runStatus(args, cw) },
	})
	app.Register(&cli.Command{
		Name:    "diff",
		Summary: "Show changes between commits, the index, or the workspace",
		Usage:   "vcs diff [<commit> [<commit>]]",
		Run:     func(args []string) int { return runDiff(args, cw) },
	})
}

func runInit(args []string) int {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := resolveDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vcs init: %v\n", err)
		return 1
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "vcs init: %v\n", err)
		return 1
	}
	if _, err := repo.Init(abs); err != nil {
		fmt.Fprintf(os.Stderr, "vcs init: %v\n", err)
		return 1
	}
	fmt.Printf("Initialized empty repository in %s\n", abs)
	return 0
}

func resolveDir(dir string) (string, error) {
	if dir == "." {
		return os.Getwd()
	}
	return dir, nil
}

func runAdd(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "vcs add: nothing specified, nothing added")
		return 1
	}
	r, err := openRepo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vcs add: %v\n", err)
		return 1
	}
	idx, err := r.LoadIndex()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vcs add: %v\n", err)
		return 1
	}
	sp := progress.New("staging files...")
	sp.Start()
	err = r.Add(idx, args)
	sp.Stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vcs add: %v\n", err)
		return 1
	}
	if err := r.SaveIndex(idx); err != nil {
		fmt.Fprintf(os.Stderr, "vcs add: %v\n", err)
		return 1
	}
	return 0
}

func runCommit(args []string) int {
	fs := flag.NewFlagSet("commit", flag.ContinueOnError)
	message := fs.String("m", "", "commit message")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *message == "" {
		fmt.Fprintln(os.Stderr, "vcs commit: -m <message> is required")
		return 1
	}

	r, err := openRepo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vcs commit: %v\n", err)
		return 1
	}
	idx, err := r.LoadIndex()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vcs commit: %v\n", err)
		return 1
	}

	result, err := r.Commit(idx, *message, repo.ResolveIdentity(), time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "vcs commit: %v\n", err)
		return 1
	}
	if err := r.SaveIndex(idx); err != nil {
		fmt.Fprintf(os.Stderr, "vcs commit: %v\n", err)
		return 1
	}
	fmt.Printf("[%s] %s\n", result.ID.Short(), *message)
	return 0
}

func runStatus(args []string, cw *termcolor.Writer) int {
	r, err := openRepo()
	if err != nil {
		return fail(cw, "status", err)
	}
	idx, err := r.LoadIndex()
	if err != nil {
		return fail(cw, "status", err)
	}
	result, err := r.Status(idx)
	if err != nil {
		return fail(cw, "status", err)
	}

	if result.Detached {
		fmt.Println("HEAD detached")
	} else {
		fmt.Printf("On branch %s\n", result.Branch)
	}
	if result.MergeInProgress {
		fmt.Println("You have unmerged paths.")
	}

	printPathSection(cw, "Changes to be committed:", result.Staged, cw.Green)
	printPathSection(cw, "Changes not staged for commit:", result.Unstaged, cw.Red)
	printPathSection(cw, "Deleted:", result.Deleted, cw.Red)
	printPathSection(cw, "Untracked files:", result.Untracked, cw.Red)
	return 0
}

func printPathSection(cw *termcolor.Writer, title string, paths []string, color func(string) string) {
	if len(paths) == 0 {
		return
	}
	fmt.Println(cw.Bold(title))
	for _, p := range paths {
		fmt.Printf("\t%s\n", color(p))
	}
	fmt.Println()
}

func runDiff(args []string, cw *termcolor.Writer) int {
	r, err := openRepo()
	if err != nil {
		return fail(cw, "diff", err)
	}

	var diffs []ops.FileDiff

	switch len(args) {
	case 0:
		idx, err := r.LoadIndex()
		if err != nil {
			return fail(cw, "diff", err)
		}
		diffs, err = r.DiffIndexVsWorkspace(idx)
		if err != nil {
			return fail(cw, "diff", err)
		}
	case 1:
		commitID, err := r.ResolveRevision(args[0])
		if err != nil {
			return fail(cw, "diff", err)
		}
		diffs, err = r.DiffCommitVsWorkspace(commitID)
		if err != nil {
			return fail(cw, "diff", err)
		}
	case 2:
		fromID, err := r.ResolveRevision(args[0])
		if err != nil {
			return fail(cw, "diff", err)
		}
		toID, err := r.ResolveRevision(args[1])
		if err != nil {
			return fail(cw, "diff", err)
		}
		diffs, err = r.DiffCommitVsCommit(fromID, toID)
		if err != nil {
			return fail(cw, "diff", err)
		}
	default:
		fmt.Fprintln(os.Stderr, "vcs diff: too many arguments")
		return 1
	}

	for _, d := range diffs {
		fmt.Print(d.Text)
	}
	return 0
}
