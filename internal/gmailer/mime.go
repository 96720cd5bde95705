package gmailer

import (
	"fmt"
	"mime"
	"strings"
)

// MessageOptions describes one outgoing HTML message. InReplyTo and
// References carry a permanent RFC 5322 Message-ID value when the message
// is a threaded reply, and stay empty for an initial send.
type MessageOptions struct {
	To         string
	Subject    string
	HTMLBody   string
	InReplyTo  string
	References string
}

// BuildMIME assembles the raw RFC 5322 message. The sender is always "me":
// the Gmail API resolves it to the authenticated account.
func BuildMIME(opts MessageOptions) []byte {
	var b strings.Builder

	writeHeader := func(name, value string) {
		fmt.Fprintf(&b, "%s: %s\r\n", name, value)
	}

	writeHeader("From", "me")
	writeHeader("To", opts.To)
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", opts.Subject))
	if opts.InReplyTo != "" {
		writeHeader("In-Reply-To", opts.InReplyTo)
	}
	if opts.References != "" {
		writeHeader("References", opts.References)
	}
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", `text/html; charset="UTF-8"`)

	b.WriteString("\r\n")
	b.WriteString(opts.HTMLBody)

	return []byte(b.String())
}

// ReplySubject prefixes a subject with "Re: " unless it already carries
// the prefix in any case.
func ReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}
