package campaign

import (
	"context"
	"fmt"

	"github.com/greenmice/sheetsend/internal/pending"
	"github.com/greenmice/sheetsend/internal/retry"
)

// resolvePermanentID polls the transport for the permanent Message-ID of a
// just-sent message. The mailbox indexes sent mail asynchronously, so every
// fetch error counts as a failed attempt rather than a failure. When the
// budget runs out the row is still "Sent" (the message left the outbox)
// but gets an empty Message-ID, making it ineligible for reply threading;
// with a pending store configured the receipt is parked for a later
// reconcile run instead of being lost.
func (r *Runner) resolvePermanentID(ctx context.Context, rc receipt) string {
	msgID, err := retry.Do(ctx, r.cfg.Retry, func(ctx context.Context) (string, error) {
		r.metrics.ReconcileAttempts.Inc()
		return r.transport.MessageIDHeader(ctx, rc.gmailID)
	})
	if err != nil {
		r.logger.Warn("permanent Message-ID not resolved; row will not be reply-able",
			"row", rc.row, "email", rc.email, "gmail_id", rc.gmailID, "error", err)
		r.metrics.ReconcileExhausted.Inc()

		if r.pending != nil {
			e := &pending.Entry{
				Row:      rc.row,
				Email:    rc.email,
				GmailID:  rc.gmailID,
				ThreadID: rc.threadID,
				Subject:  rc.subject,
				Attempts: r.cfg.Retry.MaxAttempts,
			}
			if perr := r.pending.Put(ctx, e); perr != nil {
				r.logger.Warn("could not park receipt for later reconciliation", "row", rc.row, "error", perr)
			}
		}
		return ""
	}

	r.logger.Info("permanent Message-ID resolved", "row", rc.row, "message_id", msgID)
	r.metrics.ReconcileResolved.Inc()
	return msgID
}

// Reconcile retries Message-ID resolution for receipts parked by earlier
// runs and merges any newly found identifiers into the contact table.
// Entries are removed only after the table write succeeds, so a failed
// persist leaves them parked.
func (r *Runner) Reconcile(ctx context.Context) (*Summary, error) {
	if r.pending == nil {
		return nil, fmt.Errorf("pending store not configured")
	}

	entries, err := r.pending.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reconciliations: %w", err)
	}

	sum := &Summary{Rows: len(entries)}
	if len(entries) == 0 {
		r.logger.Info("no pending reconciliations")
		return sum, nil
	}

	table, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	var resolved []*pending.Entry
	for _, e := range entries {
		msgID, err := retry.Do(ctx, r.cfg.Retry, func(ctx context.Context) (string, error) {
			r.metrics.ReconcileAttempts.Inc()
			return r.transport.MessageIDHeader(ctx, e.GmailID)
		})
		if err != nil {
			e.Attempts += r.cfg.Retry.MaxAttempts
			if perr := r.pending.Put(ctx, e); perr != nil {
				r.logger.Warn("could not update pending entry", "row", e.Row, "error", perr)
			}
			r.logger.Warn("still unresolved", "row", e.Row, "email", e.Email, "attempts", e.Attempts)
			r.metrics.ReconcileExhausted.Inc()
			sum.Unresolved++
			continue
		}

		table.EnsureColumns(LogColumns...)
		if err := table.Set(e.Row, ColMessageID, msgID); err != nil {
			// Row disappeared from the sheet since the send; drop the entry.
			r.logger.Warn("stale pending entry", "row", e.Row, "error", err)
			resolved = append(resolved, e)
			continue
		}
		if table.Get(e.Row, ColThreadID) == "" {
			if err := table.Set(e.Row, ColThreadID, e.ThreadID); err != nil {
				r.logger.Warn("could not backfill thread id", "row", e.Row, "error", err)
			}
		}

		r.logger.Info("late Message-ID resolved", "row", e.Row, "email", e.Email, "message_id", msgID)
		r.metrics.ReconcileResolved.Inc()
		resolved = append(resolved, e)
		sum.Resolved++
	}

	if len(resolved) > 0 {
		if err := r.store.Write(ctx, table); err != nil {
			r.metrics.TableWritesTotal.WithLabelValues("error").Inc()
			return sum, fmt.Errorf("reconciled ids not persisted, entries left pending: %w", err)
		}
		r.metrics.TableWritesTotal.WithLabelValues("ok").Inc()

		for _, e := range resolved {
			if err := r.pending.Delete(ctx, e.ID); err != nil {
				r.logger.Warn("could not delete pending entry", "row", e.Row, "error", err)
			}
		}
	}

	r.logger.Info("reconcile pass finished", "resolved", sum.Resolved, "unresolved", sum.Unresolved)
	return sum, nil
}
