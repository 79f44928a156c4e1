package qualify

import (
	"regexp"
	"strings"

	"github.com/turfline/leadchat/internal/models"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// 10 digits, optionally separated by dashes, dots, or spaces.
	phoneRe = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// ParseContact sniffs an email address, a phone number, and a candidate name
// out of one free-text submission. Whatever remains after stripping the
// matched email/phone substrings is treated as name text; names shorter than
// two characters are discarded. The returned record is partial; callers
// merge it into the session's customer, never replace.
func ParseContact(text string) models.Customer {
	var out models.Customer

	rest := text
	if m := emailRe.FindString(rest); m != "" {
		out.Email = m
		rest = strings.Replace(rest, m, " ", 1)
	}
	if m := phoneRe.FindString(rest); m != "" {
		out.Phone = m
		rest = strings.Replace(rest, m, " ", 1)
	}

	name := strings.Trim(rest, " \t\r\n,.;:-")
	if len([]rune(name)) >= 2 {
		out.Name = name
	}
	return out
}
