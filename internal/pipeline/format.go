package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultTestFormat is used when a job sets no testFormat.
const DefaultTestFormat = "{0}"

// formatTest expands the positional placeholders of a testFormat string.
// Supported: {N}, {} (automatic numbering), {{ and }} escapes.
func formatTest(format string, args ...string) (string, error) {
	var b strings.Builder
	next := 0

	for i := 0; i < len(format); i++ {
		c := format[i]
		switch c {
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(format[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unclosed placeholder in %q", format)
			}
			field := format[i+1 : i+end]

			idx := next
			if field == "" {
				next++
			} else {
				n, err := strconv.Atoi(field)
				if err != nil || n < 0 {
					return "", fmt.Errorf("unsupported placeholder {%s} in %q", field, format)
				}
				idx = n
			}
			if idx >= len(args) {
				return "", fmt.Errorf("placeholder {%d} in %q has no value", idx, format)
			}
			b.WriteString(args[idx])
			i += end
		case '}':
			if i+1 < len(format) && format[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("single '}' in %q", format)
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}
