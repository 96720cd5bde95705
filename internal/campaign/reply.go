package campaign

import (
	"context"
	"fmt"
	"strings"

	"github.com/greenmice/sheetsend/internal/gmailer"
	"github.com/greenmice/sheetsend/internal/template"
)

// RunReminder sends a threaded follow-up to every row whose earlier send
// reconciled: the logged Message-ID value becomes In-Reply-To and
// References, the logged thread id threads the reply in the mailbox, and
// the logged subject gets a "Re: " prefix. Rows with an empty Message-ID
// are silently excluded — that is the flip side of the reconciler's
// best-effort policy, not an error. The table is not written back.
func (r *Runner) RunReminder(ctx context.Context, req Request) (*Summary, error) {
	table, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	if !table.HasColumn(ColMessageID) || !table.HasColumn(ColThreadID) {
		return nil, fmt.Errorf("contact table has no campaign log columns; run an initial campaign first")
	}

	sum := &Summary{Rows: len(table.Rows)}
	r.logger.Info("starting reminder campaign", "rows", len(table.Rows))

	for i, rec := range table.Rows {
		msgID := strings.TrimSpace(rec[ColMessageID])
		if msgID == "" {
			continue
		}

		email := strings.TrimSpace(rec[ColEmail])
		if email == "" {
			r.logger.Warn("row skipped: no recipient address", "row", i)
			r.metrics.RowsSkippedTotal.WithLabelValues("no_recipient").Inc()
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

		// Reply with the subject the initial send logged, so the thread
		// stays coherent even if the campaign subject changed since.
		subject := rec[ColSubject]
		if subject == "" {
			if subject, err = template.Render(req.Subject, rec); err != nil {
				r.logger.Warn("row skipped: subject", "row", i, "email", email, "error", err)
				r.metrics.RowsSkippedTotal.WithLabelValues("template").Inc()
				sum.Skipped++
				continue
			}
		}

		raw := gmailer.BuildMIME(gmailer.MessageOptions{
			To:         email,
			Subject:    gmailer.ReplySubject(subject),
			HTMLBody:   body,
			InReplyTo:  msgID,
			References: msgID,
		})

		rcpt, err := r.transport.Send(ctx, raw, rec[ColThreadID])
		if err != nil {
			r.logger.Error("reply failed", "row", i, "email", email, "error", &SendError{Recipient: email, Err: err})
			r.metrics.ReplyFailuresTotal.Inc()
			sum.Failed++
			continue
		}

		r.logger.Info("reply sent", "row", i, "email", email, "gmail_id", rcpt.ID)
		r.metrics.RepliesSentTotal.Inc()
		sum.Replies++

		if req.LabelID != "" {
			if err := r.transport.ApplyLabel(ctx, rcpt.ID, req.LabelID); err != nil {
				r.logger.Warn("could not apply label", "row", i, "gmail_id", rcpt.ID, "error", err)
			}
		}
	}

	r.logger.Info("reminder campaign finished", "replies", sum.Replies, "failed", sum.Failed, "skipped", sum.Skipped)
	return sum, nil
}
