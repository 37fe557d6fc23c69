// Package ingest wires the redactor in front of the store so nothing
// containing a likely secret is ever persisted unmasked. It also honors
// the MEMENTOD_ACTIVITY toggle that lets the host assistant surface
// disable collection of note-kind activity records entirely.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mementodev/mementod/internal/redact"
	"github.com/mementodev/mementod/internal/store"
	"github.com/mementodev/mementod/internal/types"
)

const envActivity = "MEMENTOD_ACTIVITY"

// Result reports what happened to a candidate item.
type Result struct {
	Item    *types.Item
	Issues  []string
	Blocked bool
	Skipped bool
}

// Add scans item's content for secrets before handing it to s.Add. If the
// scan blocks the content, the item is not persisted and Result.Blocked
// is true with the content left untouched for the caller to inspect and
// re-prompt; on any other outcome the persisted item's content is the
// masked text. Note-kind items are silently skipped (Result.Skipped) when
// activity collection is turned off via MEMENTOD_ACTIVITY.
func Add(ctx context.Context, s store.Store, item *types.Item) (Result, error) {
	if item.Kind == types.KindNote && !activityEnabled() {
		return Result{Item: item, Skipped: true}, nil
	}

	scan := redact.Scan(item.Content)
	if scan.Blocked {
		return Result{Item: item, Issues: scan.Issues, Blocked: true}, nil
	}

	item.Content = scan.Masked
	if err := s.Add(ctx, item); err != nil {
		return Result{}, fmt.Errorf("ingest: add %s: %w", item.ID, err)
	}
	return Result{Item: item, Issues: scan.Issues}, nil
}

// activityEnabled reads MEMENTOD_ACTIVITY. Recognized off values are "0"
// and "off" (case-insensitive); anything else, including unset, is on.
func activityEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(envActivity)))
	return v != "0" && v != "off"
}
