package campaign

import (
	"context"
	"strings"

	"github.com/greenmice/sheetsend/internal/gmailer"
	"github.com/greenmice/sheetsend/internal/template"
)

// Transport is the slice of the mail client the runner consumes. A send
// dispatches exactly one message; the runner guarantees at most one send
// per row per run.
type Transport interface {
	Send(ctx context.Context, raw []byte, threadID string) (*gmailer.Receipt, error)
	MessageIDHeader(ctx context.Context, id string) (string, error)
	ApplyLabel(ctx context.Context, id, labelID string) error
}

// RunInitial executes the first-time campaign: one personalized message
// per contact row, then batch reconciliation of permanent Message-IDs,
// then a single atomic write of the log columns back to the store.
//
// Row-level problems (missing recipient, missing template field, transport
// rejection) skip or fail that row only. Only reading and persisting the
// table fail the batch.
func (r *Runner) RunInitial(ctx context.Context, req Request) (*Summary, error) {
	table, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Rows: len(table.Rows)}
	var receipts []receipt
	var entries []logEntry

	r.logger.Info("starting initial campaign", "rows", len(table.Rows))

	for i, rec := range table.Rows {
		email := strings.TrimSpace(rec[ColEmail])
		if email == "" {
			r.logger.Warn("row skipped: no recipient address", "row", i)
			r.metrics.RowsSkippedTotal.WithLabelValues("no_recipient").Inc()
			sum.Skipped++
			continue
		}

		subject, err := template.Render(req.Subject, rec)
		if err != nil {
			r.logger.Warn("row skipped: subject", "row", i, "email", email, "error", err)
			r.metrics.RowsSkippedTotal.WithLabelValues("template").Inc()
			sum.Skipped++
			continue
		}
		body, err := template.Render(req.HTML, rec)
		if err != nil {
			r.logger.Warn("row skipped: body", "row", i, "email", email, "error", err)
			r.metrics.RowsSkippedTotal.WithLabelValues("template").Inc()
			sum.Skipped++
			continue
		}

		raw := gmailer.BuildMIME(gmailer.MessageOptions{
			To:       email,
			Subject:  subject,
			HTMLBody: body,
		})

		rcpt, err := r.transport.Send(ctx, raw, "")
		if err != nil {
			sendErr := &SendError{Recipient: email, Err: err}
			r.logger.Error("send failed", "row", i, "email", email, "error", sendErr)
			r.metrics.SendFailuresTotal.WithLabelValues("transport").Inc()
			entries = append(entries, logEntry{
				row:       i,
				timestamp: r.timestamp(),
				status:    StatusFailed,
				subject:   subject,
			})
			sum.Failed++
			continue
		}

		r.logger.Info("message sent", "row", i, "email", email, "gmail_id", rcpt.ID)
		r.metrics.EmailsSentTotal.Inc()
		sum.Sent++

		if req.LabelID != "" {
			if err := r.transport.ApplyLabel(ctx, rcpt.ID, req.LabelID); err != nil {
				r.logger.Warn("could not apply label", "row", i, "gmail_id", rcpt.ID, "error", err)
			}
		}

		receipts = append(receipts, receipt{
			row:      i,
			email:    email,
			gmailID:  rcpt.ID,
			threadID: rcpt.ThreadID,
			subject:  subject,
		})
	}

	if len(receipts) > 0 {
		r.logger.Info("waiting for mailbox to index sent messages", "delay", r.cfg.WarmupDelay)
		if err := r.sleep(ctx, r.cfg.WarmupDelay); err != nil {
			return sum, err
		}
	}

	for _, rc := range receipts {
		msgID := r.resolvePermanentID(ctx, rc)
		if msgID == "" {
			sum.Unresolved++
		} else {
			sum.Resolved++
		}
		entries = append(entries, logEntry{
			row:       rc.row,
			timestamp: r.timestamp(),
			status:    StatusSent,
			subject:   rc.subject,
			threadID:  rc.threadID,
			messageID: msgID,
		})
	}

	if err := r.mergeAndPersist(ctx, table, entries); err != nil {
		return sum, err
	}

	r.logger.Info("initial campaign finished",
		"sent", sum.Sent, "failed", sum.Failed, "skipped", sum.Skipped,
		"resolved", sum.Resolved, "unresolved", sum.Unresolved)
	return sum, nil
}
