// Package textdiff is a line-oriented text diff engine. Given an old and a
// new version of a document it produces a classified, ordered sequence of
// line records (context, addition, deletion) plus summary counts.
//
// The aligner is a greedy single-pass heuristic with one line of lookahead,
// not a minimal-edit-distance algorithm. It trades optimality for O(n) time
// and deterministic output; on ambiguous inputs it may emit a delete+add
// pair where an LCS differ would find a longer match further ahead. The
// lookahead policy and its tie-break order are part of the engine's
// contract: callers rely on byte-for-byte stable output.
package textdiff

import "strings"

// Kind classifies a line record.
type Kind string

const (
	Context  Kind = "context"
	Addition Kind = "addition"
	Deletion Kind = "deletion"
)

// LineRecord is one classified unit of diff output. OldLine and NewLine are
// 1-based positions in the old and new documents; 0 means absent (an
// addition has no old position, a deletion no new position).
type LineRecord struct {
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
	OldLine int    `json:"oldLineNumber,omitempty"`
	NewLine int    `json:"newLineNumber,omitempty"`
}

// SplitLines splits text into lines on '\n' only. Carriage returns are kept
// as part of the line content: the engine never normalizes line endings, so
// reconstruction reproduces the input exactly. An empty text yields a single
// empty line, not zero lines.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// Align walks both line sequences and produces the classified output.
// Two cursors advance monotonically; per step, in priority order:
//
//  1. old exhausted            → Addition, advance new
//  2. new exhausted            → Deletion, advance old
//  3. lines equal              → Context, advance both
//  4. old[i+1] == new[j]       → Deletion (pure delete), advance old
//  5. new[j+1] == old[i]       → Addition (pure insert), advance new
//  6. otherwise                → Deletion then Addition (substitution), advance both
//
// Line numbers are assigned as index+1 at the moment a line is consumed.
func Align(oldLines, newLines []string) []LineRecord {
	records := make([]LineRecord, 0, len(oldLines)+len(newLines))
	oi, ni := 0, 0

	for oi < len(oldLines) || ni < len(newLines) {
		switch {
		case oi >= len(oldLines):
			records = append(records, LineRecord{Kind: Addition, Content: newLines[ni], NewLine: ni + 1})
			ni++

		case ni >= len(newLines):
			records = append(records, LineRecord{Kind: Deletion, Content: oldLines[oi], OldLine: oi + 1})
			oi++

		case oldLines[oi] == newLines[ni]:
			records = append(records, LineRecord{Kind: Context, Content: oldLines[oi], OldLine: oi + 1, NewLine: ni + 1})
			oi++
			ni++

		case oi+1 < len(oldLines) && oldLines[oi+1] == newLines[ni]:
			// The next old line matches the current new line: the current
			// old line is a pure deletion. Re-aligns on the next step.
			records = append(records, LineRecord{Kind: Deletion, Content: oldLines[oi], OldLine: oi + 1})
			oi++

		case ni+1 < len(newLines) && newLines[ni+1] == oldLines[oi]:
			records = append(records, LineRecord{Kind: Addition, Content: newLines[ni], NewLine: ni + 1})
			ni++

		default:
			// No one-step resynchronization: substituted line pair.
			records = append(records, LineRecord{Kind: Deletion, Content: oldLines[oi], OldLine: oi + 1})
			records = append(records, LineRecord{Kind: Addition, Content: newLines[ni], NewLine: ni + 1})
			oi++
			ni++
		}
	}

	return records
}

// Summarize counts Addition and Deletion records. Substitutions count once
// on each side, never double.
func Summarize(records []LineRecord) (additions, deletions int) {
	for _, rec := range records {
		switch rec.Kind {
		case Addition:
			additions++
		case Deletion:
			deletions++
		}
	}
	return additions, deletions
}
