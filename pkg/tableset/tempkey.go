package tableset

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTemporaryKey generates a key for ingestion-time tables. The creation
// time is readable from the key itself, which helps spotting leftovers of
// aborted ingestions in the catalog.
func NewTemporaryKey() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%d_%s", time.Now().UTC().Unix(), id[:12])
}
