package store

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/gitpal-dev/gitpal/dbopen"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return New(db)
}

func TestRun_InsertGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	run := &Run{ID: "run_1", UserID: "42", RepoURL: "https://github.com/a/b", RepoPath: "/tmp/x", TotalIssues: 3}
	if err := s.InsertRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	if run.CreatedAt == 0 || run.Status != "completed" {
		t.Fatalf("defaults not applied: %+v", run)
	}

	got, err := s.GetRun(ctx, "run_1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.RepoURL != "https://github.com/a/b" || got.TotalIssues != 3 {
		t.Fatalf("got %+v", got)
	}
}

func TestRun_GetMissing(t *testing.T) {
	s := newStore(t)
	got, err := s.GetRun(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}

func TestRun_ListByUser(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for i, id := range []string{"run_a", "run_b"} {
		if err := s.InsertRun(ctx, &Run{ID: id, UserID: "7", RepoURL: "u", RepoPath: "p", CreatedAt: int64(100 + i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.InsertRun(ctx, &Run{ID: "run_other", UserID: "8", RepoURL: "u", RepoPath: "p"}); err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListRuns(ctx, "7", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs", len(runs))
	}
	// Newest first.
	if runs[0].ID != "run_b" {
		t.Fatalf("order: %s first", runs[0].ID)
	}
}

func TestIssues_InsertList(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.InsertRun(ctx, &Run{ID: "run_1", RepoURL: "u", RepoPath: "p"}); err != nil {
		t.Fatal(err)
	}
	issues := []*Issue{
		{ID: "i1", RunID: "run_1", FilePath: "/tmp/x/b.py", DisplayPath: "b.py", Line: 5, Column: 1, Code: "C0301"},
		{ID: "i2", RunID: "run_1", FilePath: "/tmp/x/a.py", DisplayPath: "a.py", Line: 1, Column: 1, Code: "C0114"},
	}
	if err := s.InsertIssues(ctx, issues); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListIssues(ctx, "run_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d issues", len(got))
	}
	// Ordered by file path.
	if got[0].DisplayPath != "a.py" {
		t.Fatalf("order: %s first", got[0].DisplayPath)
	}
}

func TestIssues_CascadeDelete(t *testing.T) {
	// WHAT: Deleting a run removes its findings.
	// WHY: Foreign keys must actually be enabled on the connection.
	s := newStore(t)
	ctx := context.Background()

	if err := s.InsertRun(ctx, &Run{ID: "run_1", RepoURL: "u", RepoPath: "p"}); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertIssues(ctx, []*Issue{{ID: "i1", RunID: "run_1", FilePath: "f", DisplayPath: "f", Code: "C0114"}}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.DB.Exec(`DELETE FROM runs WHERE id = 'run_1'`); err != nil {
		t.Fatal(err)
	}
	got, err := s.ListIssues(ctx, "run_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("issues not cascaded: %d left", len(got))
	}
}

func TestFixes_InsertList(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	f := &Fix{ID: "f1", RunID: "run_1", FilePath: "a.py", SmellCode: "C0114", Line: 1, Applied: true}
	if err := s.InsertFix(ctx, f); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListFixes(ctx, "run_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Applied || got[0].SmellCode != "C0114" {
		t.Fatalf("got %+v", got)
	}
}
