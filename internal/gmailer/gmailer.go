// Package gmailer implements the mail transport on top of the Gmail API.
package gmailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// ErrNoMessageID means a sent message's metadata was fetched but the
// permanent Message-ID header is not indexed yet. Callers retry on it.
var ErrNoMessageID = errors.New("Message-ID header not present")

// Receipt is the transport's provisional acknowledgement of a send: the
// API-internal message id (valid immediately, only good for metadata
// fetches) and the thread id (valid immediately, usable for threading).
type Receipt struct {
	ID       string
	ThreadID string
}

// Client wraps the Gmail API for sending, metadata fetches and labeling.
// It is constructed once at startup with an authenticated service and
// injected everywhere a send happens. Send is not idempotent: every call
// dispatches one message.
type Client struct {
	svc    *gmail.Service
	logger *slog.Logger
}

// NewClient wraps an authenticated Gmail service.
func NewClient(svc *gmail.Service, logger *slog.Logger) *Client {
	return &Client{
		svc:    svc,
		logger: logger.With("component", "gmailer"),
	}
}

// Send dispatches one message from the authenticated account.
func (c *Client) Send(ctx context.Context, raw []byte, threadID string) (*Receipt, error) {
	msg := &gmail.Message{
		Raw:      encodeRaw(raw),
		ThreadId: threadID,
	}

	sent, err := c.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail send: %w", err)
	}

	c.logger.Debug("message dispatched", "id", sent.Id, "thread_id", sent.ThreadId)
	return &Receipt{ID: sent.Id, ThreadID: sent.ThreadId}, nil
}

// MessageIDHeader reads the permanent Message-ID header from a sent
// message's full payload.
func (c *Client) MessageIDHeader(ctx context.Context, id string) (string, error) {
	full, err := c.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail get %s: %w", id, err)
	}
	if full.Payload == nil {
		return "", ErrNoMessageID
	}

	for _, h := range full.Payload.Headers {
		if strings.EqualFold(h.Name, "Message-Id") {
			if h.Value == "" {
				return "", ErrNoMessageID
			}
			return h.Value, nil
		}
	}
	return "", ErrNoMessageID
}

// ApplyLabel adds one label to a sent message.
func (c *Client) ApplyLabel(ctx context.Context, id, labelID string) error {
	req := &gmail.ModifyMessageRequest{AddLabelIds: []string{labelID}}
	if _, err := c.svc.Users.Messages.Modify("me", id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail modify %s: %w", id, err)
	}
	return nil
}

// LabelID resolves a user label name to its id.
func (c *Client) LabelID(ctx context.Context, name string) (string, error) {
	resp, err := c.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail labels: %w", err)
	}
	for _, l := range resp.Labels {
		if l.Type == "user" && l.Name == name {
			return l.Id, nil
		}
	}
	return "", fmt.Errorf("gmail label %q not found", name)
}
