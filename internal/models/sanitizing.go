package models

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	// UnknownUserAgent is shown when a client sends no User-Agent or a blank one
	UnknownUserAgent = "unknown"
)

// ClientInfo holds the request data the echo page renders.
// It lives for a single request only.
type ClientInfo struct {
	UserAgent string
	Present   bool
}

// Display returns the User-Agent ready for template rendering
func (ci ClientInfo) Display() string {
	return DisplayUserAgent(ci.UserAgent, ci.Present)
}

// DisplayUserAgent normalizes a raw User-Agent header value for display.
// It does NOT html-escape: the value must still go through html/template.
func DisplayUserAgent(raw string, present bool) string {
	if !present {
		return UnknownUserAgent
	}
	text := ConvertToUTF8(raw)
	text = stripControlChars(text)
	text = strings.TrimSpace(text)
	if text == "" {
		return UnknownUserAgent
	}
	return text
}

// ConvertToUTF8 converts header text to UTF-8.
// HTTP allows obs-text (0x80-0xFF) in header values, which is Latin-1 in practice.
func ConvertToUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	// Try Latin-1 (ISO-8859-1) to UTF-8 conversion
	charsetDecoder := charmap.ISO8859_1.NewDecoder()
	result, _, err := transform.String(charsetDecoder, text)
	if err != nil {
		// Fallback: replace invalid UTF-8 sequences with replacement character
		return strings.ToValidUTF8(text, "�")
	}
	return result
}

// stripControlChars maps tabs to a single space and drops other control characters.
// net/http already rejects header values with control characters other than tab,
// so on a live request only the tab mapping applies.
func stripControlChars(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, text)
}
