package output

import (
	"fmt"
	"strings"
)

// Format specifies the report output format.
type Format string

const (
	// FormatMarkdown outputs a markdown checklist.
	FormatMarkdown Format = "markdown"

	// FormatJSON outputs in JSON format.
	FormatJSON Format = "json"

	// FormatYAML outputs in YAML format.
	FormatYAML Format = "yaml"

	// FormatTable outputs in table format.
	FormatTable Format = "table"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid checks if the format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatJSON, FormatYAML, FormatTable:
		return true
	default:
		return false
	}
}

// ParseFormat parses a string into a Format. An empty string is markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "table":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("invalid output format %q (valid: %s)", s, strings.Join(ValidFormats(), ", "))
	}
}

// ValidFormats returns the valid format strings.
func ValidFormats() []string {
	return []string{"markdown", "json", "yaml", "table"}
}
