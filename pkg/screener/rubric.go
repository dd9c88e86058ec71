package screener

// RiskSeverity ranks a review finding's impact, distinct from the
// scanner's Severity (error/warning/info).
type RiskSeverity string

const (
	RiskCritical RiskSeverity = "critical"
	RiskHigh     RiskSeverity = "high"
	RiskMedium   RiskSeverity = "medium"
	RiskLow      RiskSeverity = "low"
	RiskNone     RiskSeverity = "none"
)

var riskRank = map[RiskSeverity]int{
	RiskNone: 0, RiskLow: 1, RiskMedium: 2, RiskHigh: 3, RiskCritical: 4,
}

// RubricCategory is one of the eight fixed review categories.
type RubricCategory string

const (
	CategoryCredentialAccess    RubricCategory = "credential-access"
	CategoryDataExfiltration    RubricCategory = "data-exfiltration"
	CategorySecurityModifier    RubricCategory = "security-modification"
	CategoryInstructionHiding   RubricCategory = "instruction-hiding"
	CategoryScopeMismatch       RubricCategory = "scope-mismatch"
	CategoryPermissionEscalate  RubricCategory = "permission-escalation"
	CategoryUnclearPurpose      RubricCategory = "unclear-purpose"
	CategoryExcessiveCapability RubricCategory = "excessive-capabilities"
)

// DefaultRubric maps each of the eight categories to its fixed default
// severity. The set is closed: no caller may add a ninth category.
var DefaultRubric = map[RubricCategory]RiskSeverity{
	CategoryCredentialAccess:    RiskCritical,
	CategoryDataExfiltration:    RiskCritical,
	CategorySecurityModifier:    RiskCritical,
	CategoryInstructionHiding:   RiskHigh,
	CategoryScopeMismatch:       RiskHigh,
	CategoryPermissionEscalate:  RiskHigh,
	CategoryUnclearPurpose:      RiskMedium,
	CategoryExcessiveCapability: RiskMedium,
}

// ReviewFinding is the output shape for review-level (as opposed to
// scanner-level) findings.
type ReviewFinding struct {
	Category    RubricCategory `json:"category"`
	Severity    RiskSeverity   `json:"severity"`
	Description string         `json:"description"`
	Evidence    string         `json:"evidence"`
	Confidence  string         `json:"confidence"`
}

// AggregateRisk returns the maximum severity across findings, or
// RiskNone if findings is empty.
func AggregateRisk(findings []ReviewFinding) RiskSeverity {
	risk := RiskNone
	for _, f := range findings {
		if riskRank[f.Severity] > riskRank[risk] {
			risk = f.Severity
		}
	}
	return risk
}

// Recommend produces install guidance parameterized by aggregate risk
// and the catalog-assigned trust level. Any critical finding overrides
// trust entirely.
func Recommend(risk RiskSeverity, trustLevel string) string {
	if risk == RiskCritical {
		return "do not install: critical risk findings present"
	}
	if risk == RiskNone && trustLevel == "first-party" {
		return "safe to install"
	}
	if risk == RiskNone {
		return "no risk findings, but confirm author and run selftest before installing"
	}
	return "review findings before installing; run selftest if proceeding"
}
