// Package security provides secret detection and scrubbing applied to file
// content before it reaches persistence or a text-generation provider.
package security

import "regexp"

// secretPattern pairs a detector with its redaction marker.
type secretPattern struct {
	re          *regexp.Regexp
	replacement string
}

// secretPatterns is the fixed redaction table. All patterns match
// case-insensitively.
var secretPatterns = []secretPattern{
	// AWS
	{regexp.MustCompile(`(?i)AKIA[0-9A-Z]{16}`), "[AWS_ACCESS_KEY_REDACTED]"},
	{regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key\s*[=:]\s*['"]?[A-Za-z0-9/+=]{40}['"]?`), "[AWS_SECRET_REDACTED]"},
	// GitHub
	{regexp.MustCompile(`(?i)ghp_[a-zA-Z0-9]{36}`), "[GITHUB_PAT_REDACTED]"},
	{regexp.MustCompile(`(?i)gho_[a-zA-Z0-9]{36}`), "[GITHUB_OAUTH_REDACTED]"},
	{regexp.MustCompile(`(?i)ghu_[a-zA-Z0-9]{36}`), "[GITHUB_USER_REDACTED]"},
	{regexp.MustCompile(`(?i)ghs_[a-zA-Z0-9]{36}`), "[GITHUB_SERVER_REDACTED]"},
	{regexp.MustCompile(`(?i)ghr_[a-zA-Z0-9]{36}`), "[GITHUB_REFRESH_REDACTED]"},
	// Stripe
	{regexp.MustCompile(`(?i)sk_(live|test)_[0-9a-zA-Z]{24,}`), "[STRIPE_SECRET_REDACTED]"},
	{regexp.MustCompile(`(?i)pk_(live|test)_[0-9a-zA-Z]{24,}`), "[STRIPE_PUBLIC_REDACTED]"},
	// Slack
	{regexp.MustCompile(`(?i)xox[bapors]-[0-9a-zA-Z\-]{10,}`), "[SLACK_TOKEN_REDACTED]"},
	// Private keys
	{regexp.MustCompile(`(?i)-----BEGIN (RSA |DSA |EC |OPENSSH |PGP )?PRIVATE KEY-----`), "[PRIVATE_KEY_REDACTED]"},
	// Anthropic
	{regexp.MustCompile(`(?i)sk-ant-[a-zA-Z0-9\-]{20,}`), "[ANTHROPIC_KEY_REDACTED]"},
	// OpenAI
	{regexp.MustCompile(`(?i)sk-[a-zA-Z0-9]{48}`), "[OPENAI_KEY_REDACTED]"},
	// Generic api keys/secrets in assignments
	{regexp.MustCompile(`(?i)["']?(?:api[_-]?key|secret|password|token|auth)["']?\s*[:=]\s*["'][^"']{8,}["']`), "[SECRET_REDACTED]"},
}

// Scrubber removes sensitive data from text. It is pure: same input, same
// output.
type Scrubber interface {
	Scrub(text string) string
}

// PatternScrubber applies the fixed redaction table.
type PatternScrubber struct{}

// NewScrubber creates the default pattern-based scrubber.
func NewScrubber() *PatternScrubber {
	return &PatternScrubber{}
}

// Scrub replaces every recognized secret with its redaction marker.
func (s *PatternScrubber) Scrub(text string) string {
	for _, p := range secretPatterns {
		text = p.re.ReplaceAllString(text, p.replacement)
	}
	return text
}
