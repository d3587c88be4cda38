package output

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantBold bool
		wantFG   lipgloss.TerminalColor
		wantDim  bool
	}{
		{name: "current is green", status: StatusCurrent, wantFG: ColorGreen},
		{name: "update is yellow", status: StatusUpdate, wantFG: ColorYellow},
		{name: "skipped is faint", status: StatusSkipped, wantDim: true},
		{name: "error is bold red", status: StatusError, wantBold: true, wantFG: ColorBoldRed},
		{name: "unknown is unstyled", status: "whatever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := StatusStyle(tt.status)
			assert.Equal(t, tt.wantBold, style.GetBold())
			assert.Equal(t, tt.wantDim, style.GetFaint())
			if tt.wantFG != nil {
				assert.Equal(t, tt.wantFG, style.GetForeground())
			}
		})
	}
}

func TestFormatCheckmark(t *testing.T) {
	out := FormatCheckmark("registry is valid")
	assert.Contains(t, out, "✔")
	assert.Contains(t, out, "registry is valid")
}
