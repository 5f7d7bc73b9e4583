package accreditation

// The workflow engine is intentionally tiny: two meaningful states routed from
// the persisted status. The complexity lives in the guards and the tables they
// consult, not in the state count.

type engineState string

const (
	stateRouteByStatus engineState = "routeByStatus"
	stateActive        engineState = "ACTIVE"
	stateInactive      engineState = "INACTIVE"
)

type guardFunc func(wctx *WorkflowContext, ev UpdateStatusEvent) bool

type actionFunc func(wctx *WorkflowContext, ev UpdateStatusEvent)

// Engine evaluates one UpdateStatusEvent against a restored workflow context.
// It is constructed, started, driven through a single event and discarded
// within one request; resumption across requests happens via the snapshot.
type Engine struct {
	rules   *RuleTable
	state   engineState
	wctx    *WorkflowContext
	guards  map[string]guardFunc
	actions map[string]actionFunc
}

// NewEngine builds an engine with its guards and actions resolved up front.
func NewEngine(rules *RuleTable) *Engine {
	e := &Engine{
		rules: rules,
		state: stateRouteByStatus,
	}
	e.guards = map[string]guardFunc{
		"transitionAllowed":    e.guardTransitionAllowed,
		"gracePeriodSatisfied": e.guardGracePeriodSatisfied,
	}
	e.actions = map[string]actionFunc{
		"applyTransition": applyTransition,
	}
	return e
}

// Start seeds the engine with a context and routes to the state matching its
// status. The routing state never persists.
func (e *Engine) Start(wctx *WorkflowContext) {
	e.wctx = wctx
	if wctx.Status == StatusActive {
		e.state = stateActive
	} else {
		e.state = stateInactive
	}
}

// Send evaluates the event and reports whether it was accepted. If no guard
// combination passes, the event is ignored: state and context stay as they
// are and Send returns false.
func (e *Engine) Send(ev UpdateStatusEvent) bool {
	if !e.accepts(ev) {
		return false
	}
	e.actions["applyTransition"](e.wctx, ev)
	if ev.Status == StatusActive {
		e.state = stateActive
	} else {
		e.state = stateInactive
	}
	return true
}

func (e *Engine) accepts(ev UpdateStatusEvent) bool {
	switch e.state {
	case stateActive:
		return e.guards["transitionAllowed"](e.wctx, ev)
	case stateInactive:
		if ev.Status == StatusActive && ev.ReasonCode != nil && *ev.ReasonCode == ReasonRecredenciamento {
			return e.guards["transitionAllowed"](e.wctx, ev) &&
				e.guards["gracePeriodSatisfied"](e.wctx, ev)
		}
		return e.guards["transitionAllowed"](e.wctx, ev)
	default:
		return false
	}
}

func (e *Engine) guardTransitionAllowed(wctx *WorkflowContext, ev UpdateStatusEvent) bool {
	if ev.ReasonCode == nil {
		return false
	}
	return e.rules.TransitionAllowed(wctx.Status, wctx.ReasonCode, ev.Status, []string{*ev.ReasonCode})
}

func (e *Engine) guardGracePeriodSatisfied(wctx *WorkflowContext, ev UpdateStatusEvent) bool {
	prior := wctx.UpdatedAt
	return CheckGracePeriod(wctx.ReasonCode, &prior, ev.OccurredAt).Allowed
}

// applyTransition replaces the context's status, reason, timestamp and user
// with the event's values. Nothing else is touched.
func applyTransition(wctx *WorkflowContext, ev UpdateStatusEvent) {
	wctx.Status = ev.Status
	wctx.ReasonCode = ev.ReasonCode
	wctx.UpdatedAt = ev.OccurredAt
	wctx.UserID = ev.UserID
}

// Context returns a copy of the engine's current context.
func (e *Engine) Context() WorkflowContext {
	return *e.wctx
}

// Snapshot captures the current context as the persistable workflow state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		MachineVersion: MachineVersion,
		Status:         e.wctx.Status,
		ReasonCode:     e.wctx.ReasonCode,
		UpdatedAt:      e.wctx.UpdatedAt,
		UserID:         e.wctx.UserID,
	}
}
