package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirr-vcs/vcs/internal/cli"
	"github.com/kirr-vcs/vcs/internal/termcolor"
	"github.com/kirr-vcs/vcs/internal/watch"
)

func registerWatchCommand(app *cli.App, cw *termcolor.Writer) {
	app.Register(&cli.Command{
		Name:    "watch",
		Summary: "Watch the repository and re-run status on every change",
		Usage:   "vcs watch",
		Run:     func(args []string) int { return runWatch(args, cw) },
	})
}

func runWatch(_ []string, cw *termcolor.Writer) int {
	r, err := openRepo()
	if err != nil {
		return fail(cw, "watch", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	onChange := func() {
		idx, err := r.LoadIndex()
		if err != nil {
			logger.Warn("reloading index", "err", err)
			return
		}
		result, err := r.Status(idx)
		if err != nil {
			logger.Warn("computing status", "err", err)
			return
		}
		fmt.Printf("\n-- status at change --\nbranch=%s staged=%d unstaged=%d untracked=%d deleted=%d\n",
			result.Branch, len(result.Staged), len(result.Unstaged), len(result.Untracked), len(result.Deleted))
	}

	if err := watch.Run(ctx, logger, r.GitDir(), r.WorkDir(), onChange); err != nil {
		return fail(cw, "watch", err)
	}
	return 0
}
