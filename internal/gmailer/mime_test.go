package gmailer

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"net/textproto"
	"strings"
	"testing"
)

func parseMessage(t *testing.T, raw []byte) (textproto.MIMEHeader, string) {
	t.Helper()
	r := textproto.NewReader(bufio.NewReader(bytes.NewReader(raw)))
	header, err := r.ReadMIMEHeader()
	if err != nil {
		t.Fatalf("failed to parse headers: %v", err)
	}
	var body bytes.Buffer
	if _, err := body.ReadFrom(r.R); err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return header, body.String()
}

func TestBuildMIMEInitial(t *testing.T) {
	raw := BuildMIME(MessageOptions{
		To:       "ann@example.com",
		Subject:  "Welcome to Acme",
		HTMLBody: "<p>Hello Ann</p>",
	})

	header, body := parseMessage(t, raw)

	if got := header.Get("To"); got != "ann@example.com" {
		t.Errorf("To = %q", got)
	}
	if got := header.Get("From"); got != "me" {
		t.Errorf("From = %q, want me", got)
	}
	if got := header.Get("Subject"); got != "Welcome to Acme" {
		t.Errorf("Subject = %q", got)
	}
	if got := header.Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
	if header.Get("In-Reply-To") != "" || header.Get("References") != "" {
		t.Error("initial message must not carry threading headers")
	}
	if body != "<p>Hello Ann</p>" {
		t.Errorf("body = %q", body)
	}
}

func TestBuildMIMEReply(t *testing.T) {
	raw := BuildMIME(MessageOptions{
		To:         "ann@example.com",
		Subject:    "Re: Welcome to Acme",
		HTMLBody:   "<p>Just checking in</p>",
		InReplyTo:  "<abc@mail.example.com>",
		References: "<abc@mail.example.com>",
	})

	header, _ := parseMessage(t, raw)

	if got := header.Get("In-Reply-To"); got != "<abc@mail.example.com>" {
		t.Errorf("In-Reply-To = %q", got)
	}
	if got := header.Get("References"); got != "<abc@mail.example.com>" {
		t.Errorf("References = %q", got)
	}
}

func TestEncodeRawRoundTrip(t *testing.T) {
	raw := BuildMIME(MessageOptions{
		To:       "ann@example.com",
		Subject:  "Hi",
		HTMLBody: "<p>x</p>",
	})

	decoded, err := base64.URLEncoding.DecodeString(encodeRaw(raw))
	if err != nil {
		t.Fatalf("encoded raw is not URL-safe base64: %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Error("decoded raw differs from original message")
	}
}

func TestReplySubject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Welcome", "Re: Welcome"},
		{"Re: Welcome", "Re: Welcome"},
		{"RE: Welcome", "RE: Welcome"},
		{"re: Welcome", "re: Welcome"},
		{"", "Re: "},
	}
	for _, tt := range tests {
		if got := ReplySubject(tt.in); got != tt.want {
			t.Errorf("ReplySubject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
