// Package redact masks personal data and credentials in generated maps.
package redact

import (
	"regexp"
	"strings"
)

// Replacement markers written in place of redacted text.
const (
	MarkerSSN    = "***REDACTED_SSN***"
	MarkerPhone  = "***REDACTED_PHONE***"
	MarkerEmail  = "***REDACTED_EMAIL***"
	MarkerSecret = "'***REDACTED_SECRET***'"
	MarkerToken  = "***REDACTED_TOKEN***"
)

// Options controls the optional passes.
type Options struct {
	// TokenPatterns enables masking of well-known credential token shapes.
	TokenPatterns bool
}

type pattern struct {
	name        string
	re          *regexp.Regexp
	replacement string
}

var (
	piiPatterns = []pattern{
		{name: "ssn", re: regexp.MustCompile(`\b\d{6}-\d{7}\b`), replacement: MarkerSSN},
		{name: "phone", re: regexp.MustCompile(`\b01[016789]-?\d{3,4}-?\d{4}\b`), replacement: MarkerPhone},
		{name: "email", re: regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`), replacement: MarkerEmail},
	}

	tokenPatterns = []pattern{
		{name: "aws-access-key-id", re: regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`), replacement: MarkerToken},
		{name: "github-pat", re: regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`), replacement: MarkerToken},
		{name: "stripe-live-secret", re: regexp.MustCompile(`\bsk_live_[A-Za-z0-9]{16,}\b`), replacement: MarkerToken},
		{name: "slack-token", re: regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`), replacement: MarkerToken},
		{name: "private-key-block", re: regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`), replacement: MarkerToken},
	}

	// secretAssignRe matches a whole line assigning to a name that looks
	// like a credential, optionally as a "- " list item of a rendered map.
	// Groups: indent, name, operator, value.
	secretAssignRe = regexp.MustCompile(`(?i)^(\s*(?:- )?)([A-Z0-9_]*(?:TOKEN|API[_-]?KEY|SECRET|PASSWORD|PASS|AUTH|BEARER)[A-Z0-9_]*)(\s*=\s*)(.+?)\s*$`)
)

// Redact masks SSN, phone and e-mail shapes anywhere in text, then replaces
// the value of every credential-looking assignment line. With
// opts.TokenPatterns it also masks known token formats. Text without any
// match is returned unchanged, including its trailing newline.
func Redact(text string, opts Options) string {
	for _, p := range piiPatterns {
		text = p.re.ReplaceAllLiteralString(text, p.replacement)
	}
	if opts.TokenPatterns {
		for _, p := range tokenPatterns {
			text = p.re.ReplaceAllLiteralString(text, p.replacement)
		}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = redactAssignment(line)
	}
	return strings.Join(lines, "\n")
}

func redactAssignment(line string) string {
	body, cr := strings.CutSuffix(line, "\r")
	m := secretAssignRe.FindStringSubmatch(body)
	if m == nil {
		return line
	}
	out := m[1] + m[2] + m[3] + MarkerSecret
	if cr {
		out += "\r"
	}
	return out
}
