package screener

import (
	"fmt"
	"strings"
)

const (
	maxFileSize  = 1 << 20 // 1 MiB per file
	maxTotalSize = 5 << 20 // 5 MiB total
)

// requiredFiles must be present in every skill archive.
var requiredFiles = []string{"manifest.yaml", "SKILL.md"}

// deniedExtensions blocks executable payload types from riding along in
// a skill archive.
var deniedExtensions = []string{
	".exe", ".dll", ".so", ".dylib", ".bin", ".bat", ".cmd", ".ps1",
	".sh", ".com", ".class", ".pyc", ".o", ".a",
}

// StructureCheck verifies required files are present, rejects denylisted
// extensions, and enforces per-file and total size caps.
func StructureCheck(files map[string][]byte) []Finding {
	var findings []Finding

	for _, name := range requiredFiles {
		if _, ok := files[name]; !ok {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Check:    "structure/required-file",
				Message:  fmt.Sprintf("missing required file %s", name),
			})
		}
	}

	var total int64
	for name, content := range files {
		total += int64(len(content))

		lower := strings.ToLower(name)
		for _, ext := range deniedExtensions {
			if strings.HasSuffix(lower, ext) {
				findings = append(findings, Finding{
					Severity: SeverityError,
					Check:    "structure/denied-extension",
					Message:  fmt.Sprintf("%s has a denied executable extension %s", name, ext),
					File:     name,
				})
				break
			}
		}

		if int64(len(content)) > maxFileSize {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Check:    "structure/file-too-large",
				Message:  fmt.Sprintf("%s is %d bytes, exceeds the 1 MiB per-file cap", name, len(content)),
				File:     name,
			})
		}
	}

	if total > maxTotalSize {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Check:    "structure/archive-too-large",
			Message:  fmt.Sprintf("archive totals %d bytes, exceeds the 5 MiB cap", total),
		})
	}

	return findings
}
