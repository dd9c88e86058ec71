package screener

import "regexp"

// Rule is one entry in the pattern library: a compiled, case-insensitive
// regex plus the metadata needed to report a hit.
type Rule struct {
	ID          string
	Description string
	Family      string
	Severity    Severity
	Multiline   bool
	re          *regexp.Regexp
}

func rule(id, family, description string, severity Severity, multiline bool, pattern string) Rule {
	return Rule{
		ID:          id,
		Description: description,
		Family:      family,
		Severity:    severity,
		Multiline:   multiline,
		re:          regexp.MustCompile("(?i)" + pattern),
	}
}

// DefaultRules is the flat pattern library: prompt-injection,
// credential-access, and exfiltration families. Multiline rules target
// whitespace-normalized whole-file content; their ID carries a
// "-multiline" suffix so the scanner can dedup against a same-base-id
// single-line finding in the same file.
func DefaultRules() []Rule {
	return []Rule{
		rule("prompt-injection.ignore-previous", "prompt-injection",
			"attempts to override prior instructions", SeverityError, false,
			`ignore (all )?(previous|prior|above) instructions`),
		rule("prompt-injection.system-override", "prompt-injection",
			"claims system/developer authority to redefine behavior", SeverityError, false,
			`you are now (in )?(developer|system|admin) mode`),
		rule("prompt-injection.hidden-directive", "prompt-injection",
			"instructs the agent to hide a specific directive from the user", SeverityError, false,
			`do not (tell|mention|reveal) this to the user`),
		// Multiline counterpart of prompt-injection.hidden-directive: catches
		// the same instruction when it's been split across lines by
		// whitespace the single-line pass would never join.
		rule("prompt-injection.hidden-directive-multiline", "prompt-injection",
			"instructs the agent to hide something from the user", SeverityError, true,
			`do not (tell|mention|reveal) (this|the user)`),
		rule("credential-access.password", "credential-access",
			"references reading or requesting a password", SeverityError, false,
			`\b(password|passwd)\b\s*[:=]`),
		rule("credential-access.api-key", "credential-access",
			"references an API key or token value", SeverityError, false,
			`\b(api[_-]?key|access[_-]?token|secret[_-]?key)\b\s*[:=]`),
		rule("credential-access.ssh-key", "credential-access",
			"references reading an SSH private key", SeverityError, false,
			`(id_rsa|id_ed25519|\.ssh/[a-z_]+)\b`),
		rule("credential-access.keychain", "credential-access",
			"references OS credential stores", SeverityError, false,
			`\b(keychain|credential manager|wallet\.dat)\b`),
		rule("exfiltration.curl-substitution", "exfiltration",
			"shells out to curl with a command substitution payload", SeverityError, false,
			`curl\s+[^\n]*\$\([^)]+\)`),
		rule("exfiltration.post-external", "exfiltration",
			"posts data to an external host", SeverityError, false,
			`\b(curl|wget)\b[^\n]*-X\s*POST[^\n]*https?://`),
		// No single-line counterpart exists for either rule below, so
		// they can never be suppressed by a same-base-id single-line
		// finding; they only ever fire once per file from the multiline
		// pass.
		rule("exfiltration.env-dump-multiline", "exfiltration",
			"dumps the process environment", SeverityWarning, true,
			`\b(env|printenv)\b\s*(\||>)`),
		rule("exfiltration.base64-pipe-multiline", "exfiltration",
			"base64-encodes output before sending it elsewhere", SeverityWarning, true,
			`base64[^\n]*\|\s*(curl|nc|ncat)\b`),
	}
}
