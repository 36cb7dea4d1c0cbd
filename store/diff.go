package store

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders v the way Diff renders states.
func Dump(v any) string {
	return dumper.Sdump(v)
}

// Diff renders the change an action made to state as a unified diff. It returns an
// empty diff body when the state did not change.
func Diff(action, before, after any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "received action: %s", Dump(action))

	text := unified(before, after, "before", "after")
	if text == "" {
		b.WriteString("(no state change)\n")
		return b.String()
	}
	b.WriteString(text)
	return b.String()
}

// Compare renders the difference between an expected and an actual value, or ""
// when their dumps match.
func Compare(expected, actual any) string {
	return unified(expected, actual, "expected", "actual")
}

func unified(a, b any, from, to string) string {
	text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(Dump(a)),
		B:        difflib.SplitLines(Dump(b)),
		FromFile: from,
		ToFile:   to,
		Context:  3,
	})
	return text
}
