package gmailer

import "encoding/base64"

// encodeRaw encodes an RFC 5322 message the way the Gmail API expects the
// Raw field: URL-safe base64.
func encodeRaw(raw []byte) string {
	return base64.URLEncoding.EncodeToString(raw)
}
