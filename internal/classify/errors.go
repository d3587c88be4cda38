package classify

import (
	"fmt"
	"strings"
)

// UnexpectedBranchError indicates a test target names a branch outside the
// known branch list, which must be updated before results can be trusted.
type UnexpectedBranchError struct {
	Test   string
	Branch string
	Known  []string
}

func (e *UnexpectedBranchError) Error() string {
	return fmt.Sprintf("unexpected branch %q found in %q (known branches: %s)",
		e.Branch, e.Test, strings.Join(e.Known, ", "))
}

// TestNameNotExtractedError indicates a test-part token matched no platform
// family and no ignore pattern. A new OS family upstream usually needs a
// one-line addition to the family table or the ignore patterns.
type TestNameNotExtractedError struct {
	Test  string
	Token string
}

func (e *TestNameNotExtractedError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("test name not extracted from %q: no test type", e.Test)
	}
	return fmt.Sprintf("test name not extracted from %q: unrecognized test type %q", e.Test, e.Token)
}
