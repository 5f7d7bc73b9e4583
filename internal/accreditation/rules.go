package accreditation

import "sort"

// ReasonAny matches any current reason, including none.
const ReasonAny = "*"

// TransitionRule declares one legal move in the accreditation lifecycle.
// Rules are a union: any single matching rule is enough to allow a move.
type TransitionRule struct {
	FromStatus       Status
	FromReason       string // a reason code or ReasonAny
	ToStatus         Status
	AllowedToReasons []string
}

// transitionRules is the business transition matrix. It is data, not code:
// changing accreditation policy means editing this table (and bumping
// MachineVersion), not the engine.
var transitionRules = []TransitionRule{
	{
		FromStatus: StatusActive,
		FromReason: ReasonAny,
		ToStatus:   StatusInactive,
		AllowedToReasons: []string{
			ReasonDescredenciamentoAPedido,
			ReasonNaoRenovacaoRTA,
			ReasonNaoHomologacao,
			ReasonDivergenciaCadastral,
			ReasonIrregularidade,
			ReasonFusaoIncorporacao,
			ReasonBaixaCNPJ,
		},
	},
	{
		FromStatus:       StatusInactive,
		FromReason:       ReasonAny,
		ToStatus:         StatusActive,
		AllowedToReasons: []string{ReasonRecredenciamento},
	},
	// Pharmacies deactivated over registration findings may also return by
	// regularizing the registration, without a full re-accreditation.
	{
		FromStatus:       StatusInactive,
		FromReason:       ReasonDivergenciaCadastral,
		ToStatus:         StatusActive,
		AllowedToReasons: []string{ReasonRegularidade},
	},
	{
		FromStatus:       StatusInactive,
		FromReason:       ReasonNaoHomologacao,
		ToStatus:         StatusActive,
		AllowedToReasons: []string{ReasonRegularidade},
	},
}

// RuleTable answers pure lookups against the transition matrix.
type RuleTable struct {
	rules []TransitionRule
}

func NewRuleTable() *RuleTable {
	return &RuleTable{rules: transitionRules}
}

func (t *RuleTable) matchesFrom(rule TransitionRule, fromStatus Status, fromReason *string) bool {
	if rule.FromStatus != fromStatus {
		return false
	}
	if rule.FromReason == ReasonAny {
		return true
	}
	return fromReason != nil && *fromReason == rule.FromReason
}

// TransitionAllowed reports whether some rule permits moving from
// (fromStatus, fromReason) to toStatus with one of the proposed reasons.
// An unknown reason simply fails to match; that is a rejection, not an error.
func (t *RuleTable) TransitionAllowed(fromStatus Status, fromReason *string, toStatus Status, proposedReasons []string) bool {
	for _, rule := range t.rules {
		if !t.matchesFrom(rule, fromStatus, fromReason) || rule.ToStatus != toStatus {
			continue
		}
		for _, allowed := range rule.AllowedToReasons {
			for _, proposed := range proposedReasons {
				if allowed == proposed {
					return true
				}
			}
		}
	}
	return false
}

// PossibleTransitionsFor returns every reachable target status with the union
// of reason codes that may accompany it, sorted, ACTIVE destinations first.
func (t *RuleTable) PossibleTransitionsFor(fromStatus Status, fromReason *string) []PossibleTransition {
	byTarget := map[Status]map[string]bool{}
	for _, rule := range t.rules {
		if !t.matchesFrom(rule, fromStatus, fromReason) {
			continue
		}
		set, ok := byTarget[rule.ToStatus]
		if !ok {
			set = map[string]bool{}
			byTarget[rule.ToStatus] = set
		}
		for _, reason := range rule.AllowedToReasons {
			set[reason] = true
		}
	}

	transitions := make([]PossibleTransition, 0, len(byTarget))
	for _, target := range []Status{StatusActive, StatusInactive} {
		set, ok := byTarget[target]
		if !ok {
			continue
		}
		codes := make([]string, 0, len(set))
		for code := range set {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		transitions = append(transitions, PossibleTransition{
			ToStatus:           target,
			AllowedReasonCodes: codes,
		})
	}
	return transitions
}
