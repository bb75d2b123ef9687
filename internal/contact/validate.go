package contact

import (
	"regexp"
	"strings"
	"unicode"
)

// something@something.something with no whitespace and a single @. Not an
// RFC 5322 check.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// IsSpam reports whether the honeypot field was filled in. Only the
// characters browsers treat as blank are ignored: U+FEFF counts as blank,
// U+0085 does not.
func (s Submission) IsSpam() bool {
	return strings.TrimFunc(s.Website, isFormSpace) != ""
}

// isFormSpace matches the same whitespace set the email pattern excludes.
func isFormSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// Complete reports whether every required field is non-empty. Values are
// not trimmed: a single space counts as present.
func (s Submission) Complete() bool {
	return s.Name != "" && s.Email != "" && s.Project != "" && s.Topic != "" && s.Message != ""
}

// ValidEmail applies the two-part format check used by the form.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validate runs the honeypot-independent checks in order and returns the
// first failing reason, or ReasonNone.
func (s Submission) Validate() Reason {
	if !s.Complete() {
		return ReasonMissingFields
	}
	if !ValidEmail(s.Email) {
		return ReasonInvalidEmail
	}
	return ReasonNone
}

func (s Submission) inquiry(id string) Inquiry {
	return Inquiry{
		ID:      id,
		Name:    s.Name,
		Email:   s.Email,
		Project: ProjectLabel(s.Project),
		Topic:   TopicLabel(s.Topic),
		Message: s.Message,
	}
}
