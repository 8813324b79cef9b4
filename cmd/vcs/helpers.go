package main

import (
	"fmt"
	"os"

	"github.com/kirr-vcs/vcs/internal/repo"
	"github.com/kirr-vcs/vcs/internal/termcolor"
)

// openRepo locates the repository containing the current directory.
func openRepo() (*repo.Repository, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return repo.Open(wd)
}

// fail prints err to stderr in red (if enabled) and returns the standard
// failure exit code.
func fail(cw *termcolor.Writer, name string, err error) int {
	fmt.Fprintln(os.Stderr, cw.Red(fmt.Sprintf("vcs %s: %v", name, err)))
	return 1
}
