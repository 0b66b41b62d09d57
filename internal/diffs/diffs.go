// package diffs computes minimal ordered edit scripts between playlists.
//
// Diff aligns the two sequences on their longest common subsequence and
// emits removes for current-only positions followed by inserts for
// desired-only positions. Scripts apply sequentially: each op's position is
// valid against the playlist state produced by the preceding ops.
package diffs

import (
	"fmt"

	"syncra/internal/models"
	"syncra/internal/shared"
)

// Diff computes the edit script that transforms current into desired.
// Identical sequences yield an empty script. Duplicate IDs are aligned
// positionally, so a list with repeated tracks diffs correctly.
//
// Removes are emitted in descending position, then inserts in ascending
// position. Reorders decompose into a remove and an insert.
func Diff(current, desired []string) models.EditScript {
	keepCur, keepDes := lcsMembers(current, desired)

	var script models.EditScript

	for i := len(current) - 1; i >= 0; i-- {
		if !keepCur[i] {
			script = append(script, models.EditOp{Kind: models.EditRemove, Pos: i})
		}
	}

	for j := 0; j < len(desired); j++ {
		if !keepDes[j] {
			script = append(script, models.EditOp{Kind: models.EditInsert, TrackID: desired[j], Pos: j})
		}
	}

	return script
}

// RemoveAll returns the script that empties a playlist.
func RemoveAll(current []string) models.EditScript {
	script := make(models.EditScript, 0, len(current))
	for i := len(current) - 1; i >= 0; i-- {
		script = append(script, models.EditOp{Kind: models.EditRemove, Pos: i})
	}
	return script
}

// Apply executes a script against a sequence and returns the result.
// This is the reference semantics for edit scripts; the orchestrator applies
// the same ops against the live target. Positions out of range are an error.
func Apply(seq []string, script models.EditScript) ([]string, error) {
	out := make([]string, len(seq))
	copy(out, seq)

	for _, op := range script {
		switch op.Kind {
		case models.EditInsert:
			if op.Pos < 0 || op.Pos > len(out) {
				return nil, fmt.Errorf("%w: insert position %d out of range [0,%d]", shared.ErrInvalidArgument, op.Pos, len(out))
			}
			out = append(out, "")
			copy(out[op.Pos+1:], out[op.Pos:])
			out[op.Pos] = op.TrackID
		case models.EditRemove:
			if op.Pos < 0 || op.Pos >= len(out) {
				return nil, fmt.Errorf("%w: remove position %d out of range [0,%d)", shared.ErrInvalidArgument, op.Pos, len(out))
			}
			out = append(out[:op.Pos], out[op.Pos+1:]...)
		case models.EditMove:
			if op.From < 0 || op.From >= len(out) {
				return nil, fmt.Errorf("%w: move source %d out of range [0,%d)", shared.ErrInvalidArgument, op.From, len(out))
			}
			if op.To < 0 || op.To >= len(out) {
				return nil, fmt.Errorf("%w: move target %d out of range [0,%d)", shared.ErrInvalidArgument, op.To, len(out))
			}
			id := out[op.From]
			out = append(out[:op.From], out[op.From+1:]...)
			out = append(out, "")
			copy(out[op.To+1:], out[op.To:])
			out[op.To] = id
		default:
			return nil, fmt.Errorf("%w: unknown edit kind %d", shared.ErrInvalidArgument, op.Kind)
		}
	}

	return out, nil
}

// lcsMembers marks which positions of each sequence belong to one longest
// common subsequence of the two.
func lcsMembers(a, b []string) (keepA, keepB []bool) {
	n, m := len(a), len(b)
	keepA = make([]bool, n)
	keepB = make([]bool, m)
	if n == 0 || m == 0 {
		return keepA, keepB
	}

	// dp[i][j] = LCS length of a[i:], b[j:]
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	for i, j := 0, 0; i < n && j < m; {
		switch {
		case a[i] == b[j]:
			keepA[i] = true
			keepB[j] = true
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}

	return keepA, keepB
}
