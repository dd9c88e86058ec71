package screener

import (
	"fmt"
)

// zeroWidth lists characters that render invisibly but can carry hidden
// payloads inside otherwise ordinary-looking text.
var zeroWidth = map[rune]string{
	0x200B: "zero width space",
	0x200C: "zero width non-joiner",
	0x200D: "zero width joiner",
	0x2060: "word joiner",
	0xFEFF: "byte order mark / zero width no-break space",
}

// cyrillicToLatinLookalike maps Cyrillic code points to the Latin letter
// they are commonly confused with, for homoglyph detection.
var cyrillicToLatinLookalike = map[rune]rune{
	0x0430: 'a', // а
	0x0435: 'e', // е
	0x043E: 'o', // о
	0x0440: 'p', // р
	0x0441: 'c', // с
	0x0445: 'x', // х
	0x0456: 'i', // і
	0x0458: 'j', // ј
	0x0410: 'A', // А
	0x0415: 'E', // Е
	0x041E: 'O', // О
	0x0420: 'P', // Р
	0x0421: 'C', // С
}

func isUnicodeTag(r rune) bool {
	return r >= 0xE0001 && r <= 0xE007F
}

func hasCJK(line []rune) bool {
	for _, r := range line {
		if (r >= 0x3000 && r <= 0x9FFF) || (r >= 0xAC00 && r <= 0xD7A3) {
			return true
		}
	}
	return false
}

// UnicodeCheck scans file content for Unicode tag characters (a known
// hidden-instruction smuggling vector), zero-width characters, and
// Cyrillic/Latin homoglyphs. Homoglyph findings are suppressed on lines
// that already contain CJK text, where Cyrillic-range code points are
// far more likely to be legitimate transliteration than spoofing.
func UnicodeCheck(name, content string) []Finding {
	var findings []Finding
	lines := []rune{}
	lineNum := 1
	col := 0

	flushLine := func(line []rune) {
		cjk := hasCJK(line)
		for i, r := range line {
			if isUnicodeTag(r) {
				findings = append(findings, Finding{
					Severity: SeverityError,
					Check:    "unicode/tag-character",
					Message:  fmt.Sprintf("Unicode tag character U+%04X at line %d, col %d (hidden instruction smuggling vector)", r, lineNum, i+1),
					File:     name,
					Line:     lineNum,
				})
				continue
			}
			if label, ok := zeroWidth[r]; ok {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Check:    "unicode/zero-width",
					Message:  fmt.Sprintf("%s (U+%04X) at line %d, col %d", label, r, lineNum, i+1),
					File:     name,
					Line:     lineNum,
				})
				continue
			}
			if cjk {
				continue
			}
			if latin, ok := cyrillicToLatinLookalike[r]; ok {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Check:    "unicode/homoglyph",
					Message:  fmt.Sprintf("Cyrillic U+%04X at line %d, col %d looks like Latin %q", r, lineNum, i+1, latin),
					File:     name,
					Line:     lineNum,
				})
			}
		}
	}

	for _, r := range content {
		col++
		if r == '\n' {
			flushLine(lines)
			lines = lines[:0]
			lineNum++
			col = 0
			continue
		}
		lines = append(lines, r)
	}
	if len(lines) > 0 {
		flushLine(lines)
	}

	return findings
}
