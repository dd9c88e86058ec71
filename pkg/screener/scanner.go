package screener

import (
	"fmt"
	"strings"
)

// multilineSuffix marks a rule ID as operating on whitespace-normalized
// whole-file content rather than line-by-line.
const multilineSuffix = "-multiline"

// ScannableFiles lists, in order, the files the scanner inspects when
// present in a skill's file set.
var ScannableFiles = []string{"manifest.yaml", "SKILL.md", "reference.md", "CHANGELOG.md"}

// Scan runs every rule in rules against files, keyed by basename. Returns
// findings grouped by file in ScannableFiles order; within a file,
// single-line findings come first in line-then-rule order, followed by
// multiline findings in rule order.
func Scan(files map[string][]byte, rules []Rule) []Finding {
	var findings []Finding
	for _, name := range ScannableFiles {
		content, ok := files[name]
		if !ok {
			continue
		}
		findings = append(findings, scanFile(name, string(content), rules)...)
	}
	return findings
}

func scanFile(name, content string, rules []Rule) []Finding {
	var singleLine, multiLine []Rule
	for _, r := range rules {
		if r.Multiline {
			multiLine = append(multiLine, r)
		} else {
			singleLine = append(singleLine, r)
		}
	}

	var findings []Finding
	seenSingleLineIDs := make(map[string]bool)

	lines := strings.Split(content, "\n")
	for lineNum, line := range lines {
		for _, r := range singleLine {
			if r.re.MatchString(line) {
				seenSingleLineIDs[r.ID] = true
				findings = append(findings, Finding{
					Severity: r.Severity,
					Check:    "pattern",
					Message:  r.Description,
					File:     name,
					Line:     lineNum + 1,
					Pattern:  r.ID,
				})
			}
		}
	}

	normalized := normalizeWhitespace(content)
	for _, r := range multiLine {
		if !r.re.MatchString(normalized) {
			continue
		}
		baseID := strings.TrimSuffix(r.ID, multilineSuffix)
		if seenSingleLineIDs[baseID] {
			continue
		}
		findings = append(findings, Finding{
			Severity: r.Severity,
			Check:    "pattern",
			Message:  r.Description,
			File:     name,
			Pattern:  r.ID,
		})
	}

	return findings
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// evidenceSnippet extracts up to maxLen characters of the matched region
// from content, trimmed of surrounding whitespace, for attaching to a
// review finding.
func evidenceSnippet(content string, loc []int, maxLen int) string {
	if len(loc) < 2 {
		return ""
	}
	start, end := loc[0], loc[1]
	if end-start > maxLen {
		end = start + maxLen
	}
	snippet := strings.TrimSpace(content[start:end])
	if len(snippet) > maxLen {
		snippet = snippet[:maxLen]
	}
	return snippet
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s…", s[:maxLen-1])
}
