package textdiff

import (
	"encoding/json"
	"fmt"
)

// Status tags the four terminal states of a diff invocation.
type Status string

const (
	// StatusInvalidInput: before, after, or name was missing.
	StatusInvalidInput Status = "invalid_input"
	// StatusNoDifferences: every record is context; the documents are equal.
	StatusNoDifferences Status = "no_differences"
	// StatusFailed: normalization or alignment failed; the raw inputs are
	// preserved so a caller can fall back to an unprocessed side-by-side view.
	StatusFailed Status = "computation_failed"
	// StatusDiff: a normal diff with at least one addition or deletion.
	StatusDiff Status = "diff"
)

// Result is the tagged outcome of Diff. Which fields are meaningful depends
// on Status; MarshalJSON emits only the fields of the active variant.
type Result struct {
	Status    Status
	Name      string
	Records   []LineRecord
	Additions int
	Deletions int

	// StatusFailed only.
	Message   string
	RawBefore any
	RawAfter  any
}

// Diff runs the full pipeline: validate, normalize, split, align, summarize.
// It never panics and never returns an error; every failure is folded into
// one of the four terminal states.
func Diff(before, after Value, name string) (res Result) {
	defer func() {
		// Alignment over well-typed inputs cannot fail, but the contract is
		// that nothing escapes this boundary.
		if r := recover(); r != nil {
			res = Result{
				Status:    StatusFailed,
				Name:      name,
				Message:   fmt.Sprintf("diff computation panicked: %v", r),
				RawBefore: before.Original(),
				RawAfter:  after.Original(),
			}
		}
	}()

	if before.Missing() || after.Missing() || name == "" {
		return Result{Status: StatusInvalidInput}
	}

	oldText, err := before.normalize()
	if err != nil {
		return failed(name, err, before, after)
	}
	newText, err := after.normalize()
	if err != nil {
		return failed(name, err, before, after)
	}

	records := Align(SplitLines(oldText), SplitLines(newText))
	additions, deletions := Summarize(records)

	if additions == 0 && deletions == 0 {
		return Result{Status: StatusNoDifferences, Name: name}
	}

	return Result{
		Status:    StatusDiff,
		Name:      name,
		Records:   records,
		Additions: additions,
		Deletions: deletions,
	}
}

func failed(name string, err error, before, after Value) Result {
	return Result{
		Status:    StatusFailed,
		Name:      name,
		Message:   err.Error(),
		RawBefore: before.Original(),
		RawAfter:  after.Original(),
	}
}

// MarshalJSON encodes the active variant only:
//
//	{"status":"invalid_input"}
//	{"status":"no_differences","name":...}
//	{"status":"computation_failed","name":...,"message":...,"rawBefore":...,"rawAfter":...}
//	{"status":"diff","name":...,"records":[...],"additions":N,"deletions":N}
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.Status {
	case StatusInvalidInput:
		return json.Marshal(struct {
			Status Status `json:"status"`
		}{r.Status})
	case StatusNoDifferences:
		return json.Marshal(struct {
			Status Status `json:"status"`
			Name   string `json:"name"`
		}{r.Status, r.Name})
	case StatusFailed:
		return json.Marshal(struct {
			Status    Status `json:"status"`
			Name      string `json:"name,omitempty"`
			Message   string `json:"message"`
			RawBefore any    `json:"rawBefore"`
			RawAfter  any    `json:"rawAfter"`
		}{r.Status, r.Name, r.Message, rawForJSON(r.RawBefore), rawForJSON(r.RawAfter)})
	case StatusDiff:
		return json.Marshal(struct {
			Status    Status       `json:"status"`
			Name      string       `json:"name"`
			Records   []LineRecord `json:"records"`
			Additions int          `json:"additions"`
			Deletions int          `json:"deletions"`
		}{r.Status, r.Name, r.Records, r.Additions, r.Deletions})
	}
	return nil, fmt.Errorf("textdiff: unknown result status %q", r.Status)
}

// rawForJSON makes a preserved raw value safe to encode. The value that made
// coercion fail is by definition not JSON-encodable, so it degrades to its
// fmt rendering rather than failing the whole response.
func rawForJSON(v any) any {
	if v == nil {
		return nil
	}
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return v
}
