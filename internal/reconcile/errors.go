package reconcile

import (
	"fmt"
	"strings"

	"github.com/azp-tools/matrix/internal/platform"
)

// UnknownPlatformError indicates found platform ids absent from every
// registry table. The registry is stale and the report would be unsound.
type UnknownPlatformError struct {
	IDs []platform.ID
}

func (e *UnknownPlatformError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = string(id)
	}
	return fmt.Sprintf("unknown platform: %s", strings.Join(ids, ", "))
}
