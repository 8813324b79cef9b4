package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kirr-vcs/vcs/internal/cli"
	"github.com/kirr-vcs/vcs/internal/ops"
	"github.com/kirr-vcs/vcs/internal/repo"
	"github.com/kirr-vcs/vcs/internal/termcolor"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

func registerBranchCommands(app *cli.App, cw *termcolor.Writer) {
	app.Register(&cli.Command{
		Name:    "checkout",
		Summary: "Switch branches or restore a past commit",
		Usage:   "vcs checkout [-b] <branch-or-commit>",
		Run:     func(args []string) int { return runCheckout(args, cw) },
	})
	app.Register(&cli.Command{
		Name:    "branch",
		Summary: "List, create, or delete branches",
		Usage:   "vcs branch [-d] [<name>]",
		Run:     func(args []string) int { return runBranch(args, cw) },
	})
	app.Register(&cli.Command{
		Name:    "merge",
		Summary: "Merge a branch into the current branch",
		Usage:   "vcs merge [--no-ff] <branch>",
		Run:     func(args []string) int { return runMerge(args, cw) },
	})
	app.Register(&cli.Command{
		Name:    "cherry-pick",
		Summary: "Apply the changes from an existing commit",
		Usage:   "vcs cherry-pick <commit>",
		Run:     func(args []string) int { return runCherryPick(args, cw) },
	})
	app.Register(&cli.Command{
		Name:    "reset",
		Summary: "Move HEAD to a commit, optionally the index and workspace too",
		Usage:   "vcs reset [--soft|--mixed|--hard] <commit>",
		Run:     func(args []string) int { return runReset(args, cw) },
	})
}

func runCheckout(args []string, cw *termcolor.Writer) int {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	create := fs.Bool("b", false, "create the branch before switching to it")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "vcs checkout: exactly one branch or commit is required")
		return 1
	}

	r, err := openRepo()
	if err != nil {
		return fail(cw, "checkout", err)
	}
	idx, err := r.LoadIndex()
	if err != nil {
		return fail(cw, "checkout", err)
	}
	if err := r.Checkout(idx, fs.Arg(0), *create); err != nil {
		return fail(cw, "checkout", err)
	}
	if err := r.SaveIndex(idx); err != nil {
		return fail(cw, "checkout", err)
	}
	return 0
}

func runBranch(args []string, cw *termcolor.Writer) int {
	fs := flag.NewFlagSet("branch", flag.ContinueOnError)
	del := fs.Bool("d", false, "delete the named branch")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	r, err := openRepo()
	if err != nil {
		return fail(cw, "branch", err)
	}

	if fs.NArg() == 0 {
		branches, err := r.ListBranches()
		if err != nil {
			return fail(cw, "branch", err)
		}
		current, err := r.CurrentBranch()
		if err != nil {
			return fail(cw, "branch", err)
		}
		for _, b := range branches {
			if b == current {
				fmt.Printf("* %s\n", cw.Green(b))
			} else {
				fmt.Printf("  %s\n", b)
			}
		}
		return 0
	}

	name := fs.Arg(0)
	if *del {
		if err := r.DeleteBranch(name); err != nil {
			return fail(cw, "branch", err)
		}
		return 0
	}
	if err := r.CreateBranch(name); err != nil {
		return fail(cw, "branch", err)
	}
	return 0
}

func runMerge(args []string, cw *termcolor.Writer) int {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	noFF := fs.Bool("no-ff", false, "always create a merge commit")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "vcs merge: exactly one branch is required")
		return 1
	}

	r, err := openRepo()
	if err != nil {
		return fail(cw, "merge", err)
	}
	idx, err := r.LoadIndex()
	if err != nil {
		return fail(cw, "merge", err)
	}

	result, err := r.Merge(idx, ops.MergeOptions{
		Branch: fs.Arg(0),
		NoFF:   *noFF,
		Author: repo.ResolveIdentity(),
		Now:    time.Now(),
	})
	if err := r.SaveIndex(idx); err != nil {
		return fail(cw, "merge", err)
	}
	if err != nil {
		if len(result.Conflicts) > 0 {
			fmt.Println(cw.Red("Automatic merge failed; fix conflicts and then commit the result."))
			for _, p := range result.Conflicts {
				fmt.Printf("\t%s\n", p)
			}
			return 1
		}
		return fail(cw, "merge", err)
	}

	if result.FastForward {
		fmt.Println("Fast-forward")
	} else {
		fmt.Printf("Merge made by the %s strategy.\n", cw.Green("recursive"))
	}
	return 0
}

func runCherryPick(args []string, cw *termcolor.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "vcs cherry-pick: exactly one commit is required")
		return 1
	}
	r, err := openRepo()
	if err != nil {
		return fail(cw, "cherry-pick", err)
	}
	commitID, err := r.ResolveRevision(args[0])
	if err != nil {
		return fail(cw, "cherry-pick", err)
	}
	idx, err := r.LoadIndex()
	if err != nil {
		return fail(cw, "cherry-pick", err)
	}
	if err := r.CherryPick(idx, commitID); err != nil {
		_ = r.SaveIndex(idx)
		var vErr *vcserr.Error
		if errors.As(err, &vErr) && len(vErr.Conflicts) > 0 {
			fmt.Println(cw.Red("error: could not apply commit; fix conflicts and commit the result."))
			for _, p := range vErr.Conflicts {
				fmt.Printf("\t%s\n", p)
			}
			return 1
		}
		return fail(cw, "cherry-pick", err)
	}
	if err := r.SaveIndex(idx); err != nil {
		return fail(cw, "cherry-pick", err)
	}
	return 0
}

func runReset(args []string, cw *termcolor.Writer) int {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	soft := fs.Bool("soft", false, "move only HEAD")
	mixed := fs.Bool("mixed", false, "move HEAD and the index (default)")
	hard := fs.Bool("hard", false, "move HEAD, the index, and the workspace")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "vcs reset: exactly one commit is required")
		return 1
	}

	mode := ops.ResetMixed
	switch {
	case *soft:
		mode = ops.ResetSoft
	case *hard:
		mode = ops.ResetHard
	case *mixed:
		mode = ops.ResetMixed
	}

	r, err := openRepo()
	if err != nil {
		return fail(cw, "reset", err)
	}
	commitID, err := r.ResolveRevision(fs.Arg(0))
	if err != nil {
		return fail(cw, "reset", err)
	}
	idx, err := r.LoadIndex()
	if err != nil {
		return fail(cw, "reset", err)
	}
	if err := r.Reset(idx, commitID, mode); err != nil {
		return fail(cw, "reset", err)
	}
	if err := r.SaveIndex(idx); err != nil {
		return fail(cw, "reset", err)
	}
	return 0
}
