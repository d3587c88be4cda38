package pipeline

import (
	"fmt"
	"strings"
)

// UnrecognizedTemplateError indicates a job uses a template that is neither
// the matrix template nor the coverage template. Unknown templates are never
// skipped because they may hide untested platforms.
type UnrecognizedTemplateError struct {
	Path     string
	Stage    string
	Template string
}

func (e *UnrecognizedTemplateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unexpected template %q", e.Template)
	if e.Stage != "" {
		fmt.Fprintf(&b, " in stage %q", e.Stage)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	return b.String()
}

// StructureError indicates the pipeline definition does not have the shape
// the extractor needs.
type StructureError struct {
	Path    string
	Field   string
	Message string
}

func (e *StructureError) Error() string {
	var b strings.Builder
	b.WriteString("invalid pipeline definition")
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " at %s", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}
