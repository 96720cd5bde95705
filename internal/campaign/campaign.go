// Package campaign orchestrates the mail-merge sequence: render each
// contact row into a message, dispatch it, reconcile the permanent
// Message-ID the mailbox assigns after indexing, and merge the result back
// into the contact table. A second pass sends threaded reminder replies to
// rows that reconciled successfully.
package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenmice/sheetsend/internal/contact"
	"github.com/greenmice/sheetsend/internal/metrics"
	"github.com/greenmice/sheetsend/internal/pending"
	"github.com/greenmice/sheetsend/internal/retry"
)

// Log columns appended to the contact table by an initial run.
const (
	ColTimestamp = "Timestamp"
	ColStatus    = "Status"
	ColSubject   = "Subject"
	ColThreadID  = "Thread ID"
	ColMessageID = "Message ID"

	// ColEmail is the required recipient column.
	ColEmail = "email"
)

// LogColumns in append order.
var LogColumns = []string{ColTimestamp, ColStatus, ColSubject, ColThreadID, ColMessageID}

// Row statuses recorded in the log.
const (
	StatusSent   = "Sent"
	StatusFailed = "Failed"
)

const timestampLayout = "2006-01-02 15:04:05"

// Mode selects which campaign pass to run.
type Mode string

const (
	ModeInitial  Mode = "initial"
	ModeReminder Mode = "reminder"
)

// Request describes one campaign invocation, decoupled from any CLI or UI
// surface.
type Request struct {
	Mode    Mode
	Subject string
	HTML    string
	LabelID string
}

// SendError is a per-row transport failure. It never aborts the batch; the
// row is logged with Status=Failed and the run continues.
type SendError struct {
	Recipient string
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to %s failed: %v", e.Recipient, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// TableStore reads and writes the contact table. Write must replace the
// whole table in one batch.
type TableStore interface {
	Read(ctx context.Context) (*contact.Table, error)
	Write(ctx context.Context, t *contact.Table) error
}

// receipt is a provisional send acknowledgement held until reconciliation.
type receipt struct {
	row      int
	email    string
	gmailID  string
	threadID string
	subject  string
}

// logEntry is one row's reconciled log tuple before it is merged into the
// table.
type logEntry struct {
	row       int
	timestamp string
	status    string
	subject   string
	threadID  string
	messageID string
}

// Summary reports what a run did.
type Summary struct {
	Rows       int
	Sent       int
	Failed     int
	Skipped    int
	Resolved   int
	Unresolved int
	Replies    int
}

// Config carries the runner's tunables.
type Config struct {
	// WarmupDelay is waited once per batch, before the first Message-ID
	// fetch, to amortize the mailbox's indexing lag across all rows.
	WarmupDelay time.Duration

	// Retry bounds the per-message Message-ID fetch.
	Retry retry.Policy

	// Location for log timestamps.
	Location *time.Location
}

// Runner executes campaign passes over one contact table. It owns no
// shared state: the table lives in memory for the duration of a run and is
// written back once.
type Runner struct {
	store     TableStore
	transport Transport
	pending   *pending.Store
	cfg       Config
	metrics   *metrics.Metrics
	logger    *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewRunner creates a campaign runner. The pending store may be nil, in
// which case exhausted reconciliations are dropped after the warning, as a
// one-shot run would.
func NewRunner(store TableStore, transport Transport, pendingStore *pending.Store, cfg Config, m *metrics.Metrics, logger *slog.Logger) *Runner {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if m == nil {
		m = metrics.New()
	}
	return &Runner{
		store:     store,
		transport: transport,
		pending:   pendingStore,
		cfg:       cfg,
		metrics:   m,
		logger:    logger.With("component", "campaign"),
		sleep:     defaultSleep,
		now:       time.Now,
	}
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Runner) timestamp() string {
	return r.now().In(r.cfg.Location).Format(timestampLayout)
}
