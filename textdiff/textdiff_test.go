package textdiff

import (
	"strings"
	"testing"
)

func diffLines(before, after string) []LineRecord {
	return Align(SplitLines(before), SplitLines(after))
}

// reconstruct rebuilds one side of the diff: the old document from
// context+deletion records, the new document from context+addition records.
func reconstruct(records []LineRecord, side Kind) string {
	var lines []string
	for _, rec := range records {
		if rec.Kind == Context || rec.Kind == side {
			lines = append(lines, rec.Content)
		}
	}
	return strings.Join(lines, "\n")
}

func TestSplitLines_EmptyText(t *testing.T) {
	// WHAT: "" splits to one empty line, not zero lines.
	// WHY: Two empty documents must compare equal via a single context record.
	lines := SplitLines("")
	if len(lines) != 1 || lines[0] != "" {
		t.Fatalf("SplitLines(\"\") = %q, want one empty line", lines)
	}
}

func TestSplitLines_NoCRNormalization(t *testing.T) {
	// WHAT: A trailing \r stays part of the line content.
	// WHY: The engine splits on \n only; CR handling is the caller's policy,
	// and reconstruction must reproduce the input byte for byte.
	lines := SplitLines("a\r\nb")
	if lines[0] != "a\r" {
		t.Fatalf("first line = %q, want %q", lines[0], "a\r")
	}
}

func TestAlign_Identity(t *testing.T) {
	// WHAT: Identical inputs yield only context records.
	// WHY: diff(x, x) must report no differences for any x.
	for _, text := range []string{"", "a", "a\nb\nc", "a\n", "\n\n"} {
		records := diffLines(text, text)
		for _, rec := range records {
			if rec.Kind != Context {
				t.Errorf("diff(%q, %q): got %s record, want only context", text, text, rec.Kind)
			}
		}
	}
}

func TestAlign_PureInsertion(t *testing.T) {
	// WHAT: Inserting one line resynchronizes via the new-side lookahead.
	// WHY: Pins the exact record sequence including line numbers.
	records := diffLines("a\nb", "a\nx\nb")
	want := []LineRecord{
		{Kind: Context, Content: "a", OldLine: 1, NewLine: 1},
		{Kind: Addition, Content: "x", NewLine: 2},
		{Kind: Context, Content: "b", OldLine: 2, NewLine: 3},
	}
	assertRecords(t, records, want)
}

func TestAlign_PureDeletion(t *testing.T) {
	// WHAT: Removing one line resynchronizes via the old-side lookahead.
	records := diffLines("a\nx\nb", "a\nb")
	want := []LineRecord{
		{Kind: Context, Content: "a", OldLine: 1, NewLine: 1},
		{Kind: Deletion, Content: "x", OldLine: 2},
		{Kind: Context, Content: "b", OldLine: 3, NewLine: 2},
	}
	assertRecords(t, records, want)
}

func TestAlign_Substitution(t *testing.T) {
	// WHAT: When neither lookahead matches, the pair is a substitution:
	// deletion immediately followed by addition, both cursors advance.
	// WHY: b≠z, old[2]="c"≠"z", new[2]="c"≠"b" — no resync applies.
	records := diffLines("a\nb\nc", "a\nz\nc")
	want := []LineRecord{
		{Kind: Context, Content: "a", OldLine: 1, NewLine: 1},
		{Kind: Deletion, Content: "b", OldLine: 2},
		{Kind: Addition, Content: "z", NewLine: 2},
		{Kind: Context, Content: "c", OldLine: 3, NewLine: 3},
	}
	assertRecords(t, records, want)
}

func TestAlign_OldExhausted(t *testing.T) {
	// WHAT: Trailing new lines after old runs out are pure additions.
	records := diffLines("a", "a\nb\nc")
	want := []LineRecord{
		{Kind: Context, Content: "a", OldLine: 1, NewLine: 1},
		{Kind: Addition, Content: "b", NewLine: 2},
		{Kind: Addition, Content: "c", NewLine: 3},
	}
	assertRecords(t, records, want)
}

func TestAlign_NewExhausted(t *testing.T) {
	// WHAT: Trailing old lines after new runs out are pure deletions.
	records := diffLines("a\nb\nc", "a")
	want := []LineRecord{
		{Kind: Context, Content: "a", OldLine: 1, NewLine: 1},
		{Kind: Deletion, Content: "b", OldLine: 2},
		{Kind: Deletion, Content: "c", OldLine: 3},
	}
	assertRecords(t, records, want)
}

func TestAlign_TrailingNewline(t *testing.T) {
	// WHAT: A trailing newline produces a real trailing empty line record.
	// WHY: Splitting is literal; "a\n" and "a" differ by one (empty) line.
	records := diffLines("a\n", "a")
	want := []LineRecord{
		{Kind: Context, Content: "a", OldLine: 1, NewLine: 1},
		{Kind: Deletion, Content: "", OldLine: 2},
	}
	assertRecords(t, records, want)
}

func TestAlign_Reconstruction(t *testing.T) {
	// WHAT: Context+deletion records rebuild the old input exactly;
	// context+addition records rebuild the new input exactly.
	// WHY: The core correctness invariant — the diff loses no content.
	cases := []struct{ name, before, after string }{
		{"disjoint", "a\nb\nc", "x\ny\nz"},
		{"insert run", "a\nd", "a\nb\nc\nd"},
		{"delete run", "a\nb\nc\nd", "a\nd"},
		{"substitute all", "1\n2\n3", "4\n5\n6"},
		{"empty to text", "", "a\nb"},
		{"text to empty", "a\nb", ""},
		{"crlf content", "a\r\nb\r", "a\r\nc\r"},
		{"trailing newline", "a\nb\n", "a\nb"},
		{"blank lines", "\n\na\n\n", "\na\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := diffLines(tc.before, tc.after)
			if got := reconstruct(records, Deletion); got != tc.before {
				t.Errorf("old reconstruction = %q, want %q", got, tc.before)
			}
			if got := reconstruct(records, Addition); got != tc.after {
				t.Errorf("new reconstruction = %q, want %q", got, tc.after)
			}
		})
	}
}

func TestAlign_NumberingMonotone(t *testing.T) {
	// WHAT: Old line numbers over context+deletion records are contiguous
	// from 1; same for new line numbers over context+addition records.
	// WHY: Gaps or repeats would break side-by-side rendering.
	cases := [][2]string{
		{"a\nb\nc\nd", "a\nx\nc\ny"},
		{"one\ntwo", "one\ntwo\nthree"},
		{"", "a"},
		{"p\nq\nr", "q"},
	}
	for _, tc := range cases {
		records := diffLines(tc[0], tc[1])
		wantOld, wantNew := 1, 1
		for _, rec := range records {
			if rec.Kind == Context || rec.Kind == Deletion {
				if rec.OldLine != wantOld {
					t.Fatalf("diff(%q,%q): old line %d, want %d", tc[0], tc[1], rec.OldLine, wantOld)
				}
				wantOld++
			}
			if rec.Kind == Context || rec.Kind == Addition {
				if rec.NewLine != wantNew {
					t.Fatalf("diff(%q,%q): new line %d, want %d", tc[0], tc[1], rec.NewLine, wantNew)
				}
				wantNew++
			}
		}
		if wantOld-1 != len(SplitLines(tc[0])) {
			t.Fatalf("diff(%q,%q): consumed %d old lines, want %d", tc[0], tc[1], wantOld-1, len(SplitLines(tc[0])))
		}
		if wantNew-1 != len(SplitLines(tc[1])) {
			t.Fatalf("diff(%q,%q): consumed %d new lines, want %d", tc[0], tc[1], wantNew-1, len(SplitLines(tc[1])))
		}
	}
}

func TestAlign_AbsentSides(t *testing.T) {
	// WHAT: Additions never carry an old line number, deletions never a new one.
	records := diffLines("a\nb\nc", "x\nb\nz")
	for _, rec := range records {
		if rec.Kind == Addition && rec.OldLine != 0 {
			t.Errorf("addition %q has old line %d", rec.Content, rec.OldLine)
		}
		if rec.Kind == Deletion && rec.NewLine != 0 {
			t.Errorf("deletion %q has new line %d", rec.Content, rec.NewLine)
		}
	}
}

func TestSummarize_Counts(t *testing.T) {
	// WHAT: additions/deletions equal the exact record counts; a
	// substitution contributes one to each, never two.
	records := diffLines("a\nb\nc", "a\nz\nc")
	additions, deletions := Summarize(records)
	if additions != 1 || deletions != 1 {
		t.Fatalf("got %d additions, %d deletions, want 1/1", additions, deletions)
	}

	records = diffLines("a", "a")
	additions, deletions = Summarize(records)
	if additions != 0 || deletions != 0 {
		t.Fatalf("identity: got %d/%d, want 0/0", additions, deletions)
	}
}

func TestAlign_GreedyNotMinimal(t *testing.T) {
	// WHAT: The one-step lookahead stays greedy: a match two lines ahead is
	// not found, so the engine emits substitution pairs instead.
	// WHY: Pins the documented limitation — output must not silently change
	// if someone "improves" the aligner toward LCS.
	records := diffLines("a\nb", "x\ny\na\nb")
	// old[0]="a" vs new[0]="x": old[1]="b"≠"x", new[1]="y"≠"a" → substitution.
	if records[0].Kind != Deletion || records[1].Kind != Addition {
		t.Fatalf("expected substitution pair first, got %s then %s", records[0].Kind, records[1].Kind)
	}
	// Reconstruction still holds even when the alignment is suboptimal.
	if got := reconstruct(records, Deletion); got != "a\nb" {
		t.Errorf("old reconstruction = %q", got)
	}
	if got := reconstruct(records, Addition); got != "x\ny\na\nb" {
		t.Errorf("new reconstruction = %q", got)
	}
}

func assertRecords(t *testing.T, got, want []LineRecord) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
