package accreditation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestTransitionAllowedFromActive(t *testing.T) {
	table := NewRuleTable()

	// Every disaccreditation reason is reachable from ACTIVE regardless of
	// the stored reason.
	for _, reason := range []string{
		ReasonDescredenciamentoAPedido,
		ReasonNaoRenovacaoRTA,
		ReasonNaoHomologacao,
		ReasonDivergenciaCadastral,
		ReasonIrregularidade,
		ReasonFusaoIncorporacao,
		ReasonBaixaCNPJ,
	} {
		assert.True(t, table.TransitionAllowed(StatusActive, nil, StatusInactive, []string{reason}),
			"ACTIVE -> INACTIVE should accept %s", reason)
	}

	// Re-accreditation codes are not valid deactivation reasons.
	assert.False(t, table.TransitionAllowed(StatusActive, nil, StatusInactive, []string{ReasonRecredenciamento}))
	assert.False(t, table.TransitionAllowed(StatusActive, nil, StatusInactive, []string{ReasonRegularidade}))
}

func TestTransitionAllowedFromInactive(t *testing.T) {
	table := NewRuleTable()

	// RECREDENCIAMENTO works from any stored reason.
	assert.True(t, table.TransitionAllowed(StatusInactive, strPtr(ReasonIrregularidade), StatusActive, []string{ReasonRecredenciamento}))
	assert.True(t, table.TransitionAllowed(StatusInactive, nil, StatusActive, []string{ReasonRecredenciamento}))

	// REGULARIDADE only works from the registration finding reasons.
	assert.True(t, table.TransitionAllowed(StatusInactive, strPtr(ReasonDivergenciaCadastral), StatusActive, []string{ReasonRegularidade}))
	assert.True(t, table.TransitionAllowed(StatusInactive, strPtr(ReasonNaoHomologacao), StatusActive, []string{ReasonRegularidade}))
	assert.False(t, table.TransitionAllowed(StatusInactive, strPtr(ReasonIrregularidade), StatusActive, []string{ReasonRegularidade}))
	assert.False(t, table.TransitionAllowed(StatusInactive, nil, StatusActive, []string{ReasonRegularidade}))
}

func TestTransitionAllowedUnknownReason(t *testing.T) {
	table := NewRuleTable()

	assert.False(t, table.TransitionAllowed(StatusActive, nil, StatusInactive, []string{"NOT_A_REASON"}))
	assert.False(t, table.TransitionAllowed(StatusInactive, nil, StatusActive, []string{"NOT_A_REASON"}))
	assert.False(t, table.TransitionAllowed(StatusActive, nil, StatusInactive, nil))
}

func TestTransitionAllowedUnionAcrossRules(t *testing.T) {
	table := NewRuleTable()

	// A proposal list matches if any single reason is allowed by any rule.
	assert.True(t, table.TransitionAllowed(StatusInactive, strPtr(ReasonDivergenciaCadastral), StatusActive,
		[]string{"NOT_A_REASON", ReasonRegularidade}))
}

func TestPossibleTransitionsFromActive(t *testing.T) {
	table := NewRuleTable()

	transitions := table.PossibleTransitionsFor(StatusActive, nil)
	assert.Len(t, transitions, 1)
	assert.Equal(t, StatusInactive, transitions[0].ToStatus)
	assert.ElementsMatch(t, []string{
		ReasonDescredenciamentoAPedido,
		ReasonNaoRenovacaoRTA,
		ReasonNaoHomologacao,
		ReasonDivergenciaCadastral,
		ReasonIrregularidade,
		ReasonFusaoIncorporacao,
		ReasonBaixaCNPJ,
	}, transitions[0].AllowedReasonCodes)
	assert.IsIncreasing(t, transitions[0].AllowedReasonCodes)
}

func TestPossibleTransitionsFromInactiveMergesRules(t *testing.T) {
	table := NewRuleTable()

	// DIVERGENCIA_CADASTRAL matches both the wildcard rule and its own rule,
	// so the ACTIVE destination carries the union of their reasons.
	transitions := table.PossibleTransitionsFor(StatusInactive, strPtr(ReasonDivergenciaCadastral))
	assert.Len(t, transitions, 1)
	assert.Equal(t, StatusActive, transitions[0].ToStatus)
	assert.Equal(t, []string{ReasonRecredenciamento, ReasonRegularidade}, transitions[0].AllowedReasonCodes)

	// A reason with no dedicated rule only gets the wildcard's codes.
	transitions = table.PossibleTransitionsFor(StatusInactive, strPtr(ReasonIrregularidade))
	assert.Len(t, transitions, 1)
	assert.Equal(t, []string{ReasonRecredenciamento}, transitions[0].AllowedReasonCodes)
}
