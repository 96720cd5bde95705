package campaign

import (
	"context"
	"fmt"

	"github.com/greenmice/sheetsend/internal/contact"
)

// mergeAndPersist appends any missing log columns, writes each entry into
// its row, and persists the whole table in one batch. A store failure is a
// batch-level error, but the merged in-memory table is untouched so the
// caller can retry persistence without re-sending anything.
func (r *Runner) mergeAndPersist(ctx context.Context, table *contact.Table, entries []logEntry) error {
	table.EnsureColumns(LogColumns...)

	for _, e := range entries {
		cells := []struct {
			col   string
			value string
		}{
			{ColTimestamp, e.timestamp},
			{ColStatus, e.status},
			{ColSubject, e.subject},
			{ColThreadID, e.threadID},
			{ColMessageID, e.messageID},
		}
		for _, c := range cells {
			if err := table.Set(e.row, c.col, c.value); err != nil {
				return fmt.Errorf("failed to merge log entry: %w", err)
			}
		}
	}

	if err := r.store.Write(ctx, table); err != nil {
		r.metrics.TableWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("campaign log not persisted (merged state kept in memory): %w", err)
	}
	r.metrics.TableWritesTotal.WithLabelValues("ok").Inc()
	return nil
}
