package output

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// RunWithSpinner runs action while a spinner titled title is shown on the
// terminal. Without a TTY the action runs directly.
func RunWithSpinner(ctx context.Context, title string, action func(ctx context.Context) error) error {
	if !IsTTY() {
		return action(ctx)
	}

	actionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		result <- action(actionCtx)
		close(done)
	}()

	if err := spinner.New().Title(title).Action(func() { <-done }).Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("spinner error: %w", err)
	}
	return <-result
}
