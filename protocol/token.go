package protocol

import "bytes"

// Token is a command word from the closed wire vocabulary. Tokens are
// case-sensitive ASCII.
type Token string

const (
	TokenGo   Token = "go"   // turn-advance signal
	TokenRoll Token = "ROLL" // roll request
)

// Reserved lists every token that can never be a landing-result payload.
var Reserved = []Token{TokenGo, TokenRoll}

// Content returns the NUL-terminated content of a raw packet buffer. Bytes
// after the first NUL are indeterminate and ignored; a buffer without a NUL
// is taken whole.
func Content(buf []byte) []byte {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return buf[:i]
	}
	return buf
}

// IsCommand reports whether the content of buf begins with tok. Content
// shorter than the token is no match.
func IsCommand(buf []byte, tok Token) bool {
	content := Content(buf)
	if len(content) < len(tok) {
		return false
	}
	return string(content[:len(tok)]) == string(tok)
}

// IsReserved reports whether text is exactly one of the reserved tokens.
func IsReserved(text string) bool {
	for _, tok := range Reserved {
		if text == string(tok) {
			return true
		}
	}
	return false
}

// Classify interprets a legacy text packet. Tokens match by prefix, any
// other non-empty content is a landing-result payload.
func Classify(buf []byte) Kind {
	switch {
	case IsCommand(buf, TokenGo):
		return KindTurnAdvance
	case IsCommand(buf, TokenRoll):
		return KindRollRequest
	case len(Content(buf)) > 0:
		return KindLanding
	}
	return KindNone
}
