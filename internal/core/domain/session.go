package domain

import "strings"

// SessionID is the verbatim "name=value" session cookie pair. It is sent back
// unchanged as the Cookie header of every request in one lookup.
type SessionID string

// CaptchaLength is the number of characters in a solved captcha.
const CaptchaLength = 6

// CaptchaSolution pairs OCR'd captcha text with the session that served it.
type CaptchaSolution struct {
	Session SessionID `json:"sessionId,omitempty"`
	Text    string    `json:"captcha,omitempty"`
}

// Valid reports whether the solution can be submitted.
func (s CaptchaSolution) Valid() bool {
	if s.Session == "" || len(s.Text) != CaptchaLength {
		return false
	}
	for _, r := range s.Text {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// ResultLocation is where the results page for a submitted query lives.
type ResultLocation struct {
	URL     string    `json:"url,omitempty"`
	Session SessionID `json:"sessionId,omitempty"`
}

// ValidFor reports whether the location is usable against baseURL.
// A URL outside the service usually means a login or error page.
func (l ResultLocation) ValidFor(baseURL string) bool {
	return l.Session != "" && l.URL != "" && strings.HasPrefix(l.URL, baseURL)
}
