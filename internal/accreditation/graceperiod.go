package accreditation

import "time"

const (
	graceDaysStandard     = 180
	graceDaysIrregularity = 730

	millisPerDay = 24 * 60 * 60 * 1000
)

// standardGraceReasons wait graceDaysStandard days before re-accreditation.
var standardGraceReasons = map[string]bool{
	ReasonDescredenciamentoAPedido: true,
	ReasonNaoRenovacaoRTA:          true,
	ReasonNaoHomologacao:           true,
	ReasonDivergenciaCadastral:     true,
}

// permanentBlockReasons can never be re-accredited.
var permanentBlockReasons = map[string]bool{
	ReasonFusaoIncorporacao: true,
	ReasonBaixaCNPJ:         true,
}

// GracePeriodResult reports whether re-accreditation is currently permitted.
type GracePeriodResult struct {
	Allowed       bool `json:"allowed"`
	DaysRemaining *int `json:"days_remaining,omitempty"`
	RequiredDays  *int `json:"required_days,omitempty"`
	IsPermanent   bool `json:"is_permanent,omitempty"`
}

// CheckGracePeriod decides whether a pharmacy disaccredited for priorReason on
// priorDate may be re-accredited at evaluation time now. Missing inputs mean
// the rule does not apply. Pure function.
func CheckGracePeriod(priorReason *string, priorDate *time.Time, now time.Time) GracePeriodResult {
	if priorReason == nil || priorDate == nil {
		return GracePeriodResult{Allowed: true}
	}

	if permanentBlockReasons[*priorReason] {
		return GracePeriodResult{Allowed: false, IsPermanent: true}
	}

	var required int
	switch {
	case standardGraceReasons[*priorReason]:
		required = graceDaysStandard
	case *priorReason == ReasonIrregularidade:
		required = graceDaysIrregularity
	default:
		// No waiting period defined for this reason.
		return GracePeriodResult{Allowed: true}
	}

	// Whole days elapsed, floor of the millisecond delta.
	elapsed := int(now.Sub(*priorDate).Milliseconds() / millisPerDay)

	result := GracePeriodResult{RequiredDays: &required}
	if elapsed >= required {
		result.Allowed = true
		return result
	}
	remaining := required - elapsed
	result.DaysRemaining = &remaining
	return result
}
