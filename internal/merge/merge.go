// Package merge implements three-way merge classification and conflict
// marker materialization at blob-equality granularity: per-file resolution
// never merges line ranges from both sides automatically, it either takes
// one side's blob wholesale or flags the path as conflicted.
package merge

import (
	"bytes"
	"sort"

	"github.com/kirr-vcs/vcs/internal/objstore"
)

// Classification is the per-path outcome of a three-way comparison.
type Classification int

const (
	// Unchanged means both sides agree with base (or with each other),
	// including the case where the path is absent on both.
	Unchanged Classification = iota
	TakeCurrent
	TakeBranch
	Conflict
)

// PathResult is one path's merge classification plus the resulting blob id
// to stage, when determinable without conflict.
type PathResult struct {
	Path           string
	Class          Classification
	ResultID       objstore.ID // meaningful when Class != Conflict; "" means deleted
	CurrentID      objstore.ID // "" if absent in current
	BranchID       objstore.ID // "" if absent in branch
	ConflictResult objstore.ID // current's id if present, else branch's — the provisional staged value
}

// ClassifyPaths classifies every path present in any of the three
// snapshots against the merge-base snapshot.
func ClassifyPaths(base, current, branch map[string]objstore.ID) []PathResult {
	paths := make(map[string]struct{})
	for p := range base {
		paths[p] = struct{}{}
	}
	for p := range current {
		paths[p] = struct{}{}
	}
	for p := range branch {
		paths[p] = struct{}{}
	}

	names := make([]string, 0, len(paths))
	for p := range paths {
		names = append(names, p)
	}
	sort.Strings(names)

	results := make([]PathResult, 0, len(names))
	for _, p := range names {
		b, c, br := base[p], current[p], branch[p]

		res := PathResult{Path: p, CurrentID: c, BranchID: br}

		curChanged := c != b
		brChanged := br != b

		switch {
		case !curChanged && !brChanged:
			res.Class = Unchanged
			res.ResultID = b
		case !curChanged && brChanged:
			res.Class = TakeBranch
			res.ResultID = br
		case curChanged && !brChanged:
			res.Class = TakeCurrent
			res.ResultID = c
		case c == br:
			// Both sides made the identical change independently.
			res.Class = Unchanged
			res.ResultID = c
		default:
			res.Class = Conflict
			if c != "" {
				res.ConflictResult = c
			} else {
				res.ConflictResult = br
			}
		}

		results = append(results, res)
	}

	return results
}

const (
	conflictOpenMarker  = "<<<<<<< HEAD\n"
	conflictMidMarker   = "=======\n"
	conflictCloseMarker = ">>>>>>> MERGE_HEAD\n"
)

// MaterializeConflict renders a conflicted file's bytes, interleaving the
// current side (labeled HEAD) and the branch side (labeled MERGE_HEAD) with
// the three standard conflict markers. A missing side renders as empty
// content between its markers.
func MaterializeConflict(currentContent, branchContent []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(conflictOpenMarker)
	buf.Write(ensureTrailingNewline(currentContent))
	buf.WriteString(conflictMidMarker)
	buf.Write(ensureTrailingNewline(branchContent))
	buf.WriteString(conflictCloseMarker)
	return buf.Bytes()
}

func ensureTrailingNewline(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(append([]byte{}, b...), '\n')
}
