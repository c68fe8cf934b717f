package guard

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSecret(t *testing.T) {
	// WHAT: Secrets under 32 bytes are rejected.
	// WHY: Short HS256 secrets are brute-forceable.
	if err := ValidateSecret([]byte("short")); !errors.Is(err, ErrSecretTooShort) {
		t.Errorf("short secret: got %v", err)
	}
	if err := ValidateSecret([]byte(strings.Repeat("a", 32))); err != nil {
		t.Errorf("32-byte secret: got %v", err)
	}
}

func TestSafePath_Traversal(t *testing.T) {
	// WHAT: Paths containing .. or escaping the base are rejected.
	// WHY: The review handlers read files by caller-supplied relative path.
	cases := []string{"../etc/passwd", "a/../../b", ".."}
	for _, p := range cases {
		if _, err := SafePath("/tmp/clone", p); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("SafePath(%q): got %v, want ErrPathTraversal", p, err)
		}
	}
}

func TestSafePath_Valid(t *testing.T) {
	got, err := SafePath("/tmp/clone", "src/main.py")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/clone/src/main.py" {
		t.Fatalf("got %q", got)
	}
}

func TestContainsPath(t *testing.T) {
	if !ContainsPath("/tmp/clone", "/tmp/clone/a/b.py") {
		t.Error("nested path should be contained")
	}
	if ContainsPath("/tmp/clone", "/tmp/clone2/a.py") {
		t.Error("sibling prefix must not count as contained")
	}
	if ContainsPath("/tmp/clone", "/etc/passwd") {
		t.Error("outside path should not be contained")
	}
	if !ContainsPath("/tmp/clone", "/tmp/clone") {
		t.Error("root itself is contained")
	}
}

func TestValidateRepoURL(t *testing.T) {
	valid := []string{
		"https://github.com/owner/repo",
		"https://github.com/owner/repo.git",
		"git@github.com:owner/repo.git",
	}
	for _, u := range valid {
		if err := ValidateRepoURL(u); err != nil {
			t.Errorf("%q: got %v", u, err)
		}
	}

	invalid := []string{
		"http://github.com/owner/repo",
		"https://gitlab.com/owner/repo",
		"ftp://github.com/owner/repo",
	}
	for _, u := range invalid {
		if err := ValidateRepoURL(u); err == nil {
			t.Errorf("%q: expected error", u)
		}
	}
}

func TestLimitedReadAll(t *testing.T) {
	// WHAT: Reads beyond the cap fail instead of buffering unbounded data.
	data, err := LimitedReadAll(strings.NewReader("hello"), 10)
	if err != nil || string(data) != "hello" {
		t.Fatalf("got %q, %v", data, err)
	}
	if _, err := LimitedReadAll(strings.NewReader("hello world"), 5); err == nil {
		t.Error("expected error for oversized read")
	}
}
