package accreditation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestContext(status Status, reason *string, updatedAt time.Time) *WorkflowContext {
	return &WorkflowContext{
		PharmacyID: uuid.New(),
		Status:     status,
		ReasonCode: reason,
		UpdatedAt:  updatedAt,
		UserID:     uuid.New(),
	}
}

func TestEngineDeactivation(t *testing.T) {
	engine := NewEngine(NewRuleTable())
	engine.Start(newTestContext(StatusActive, nil, time.Now().Add(-time.Hour)))

	actor := uuid.New()
	occurred := time.Now()
	accepted := engine.Send(UpdateStatusEvent{
		Status:     StatusInactive,
		ReasonCode: strPtr(ReasonNaoRenovacaoRTA),
		UserID:     actor,
		OccurredAt: occurred,
	})

	assert.True(t, accepted)
	snapshot := engine.Snapshot()
	assert.Equal(t, StatusInactive, snapshot.Status)
	assert.Equal(t, ReasonNaoRenovacaoRTA, *snapshot.ReasonCode)
	assert.Equal(t, actor, snapshot.UserID)
	assert.Equal(t, occurred, snapshot.UpdatedAt)
	assert.Equal(t, MachineVersion, snapshot.MachineVersion)
}

func TestEngineIgnoresEventWithoutReason(t *testing.T) {
	engine := NewEngine(NewRuleTable())
	wctx := newTestContext(StatusActive, nil, time.Now())
	engine.Start(wctx)

	accepted := engine.Send(UpdateStatusEvent{Status: StatusInactive, OccurredAt: time.Now()})

	assert.False(t, accepted)
	assert.Equal(t, StatusActive, engine.Snapshot().Status)
}

func TestEngineIgnoresDisallowedReason(t *testing.T) {
	engine := NewEngine(NewRuleTable())
	engine.Start(newTestContext(StatusActive, nil, time.Now()))

	// A re-accreditation code is not a valid deactivation reason; the event
	// is dropped without error.
	accepted := engine.Send(UpdateStatusEvent{
		Status:     StatusInactive,
		ReasonCode: strPtr(ReasonRecredenciamento),
		OccurredAt: time.Now(),
	})

	assert.False(t, accepted)
	snapshot := engine.Snapshot()
	assert.Equal(t, StatusActive, snapshot.Status)
	assert.Nil(t, snapshot.ReasonCode)
}

func TestEngineRejectsMoveToCurrentStatus(t *testing.T) {
	engine := NewEngine(NewRuleTable())
	deactivated := time.Now().Add(-time.Hour)
	actor := uuid.New()
	engine.Start(newTestContext(StatusInactive, strPtr(ReasonNaoRenovacaoRTA), deactivated))

	// No rule allows INACTIVE -> INACTIVE, with the same reason or another
	// one. The rejection must be reported, not inferred from the status: the
	// target equals the current status either way.
	accepted := engine.Send(UpdateStatusEvent{
		Status:     StatusInactive,
		ReasonCode: strPtr(ReasonNaoRenovacaoRTA),
		UserID:     actor,
		OccurredAt: time.Now(),
	})
	assert.False(t, accepted)

	accepted = engine.Send(UpdateStatusEvent{
		Status:     StatusInactive,
		ReasonCode: strPtr(ReasonDivergenciaCadastral),
		UserID:     actor,
		OccurredAt: time.Now(),
	})
	assert.False(t, accepted)

	snapshot := engine.Snapshot()
	assert.Equal(t, ReasonNaoRenovacaoRTA, *snapshot.ReasonCode)
	assert.Equal(t, deactivated, snapshot.UpdatedAt)
}

func TestEngineReaccreditationBlockedInsideGracePeriod(t *testing.T) {
	engine := NewEngine(NewRuleTable())
	deactivated := time.Now().Add(-30 * 24 * time.Hour)
	engine.Start(newTestContext(StatusInactive, strPtr(ReasonDescredenciamentoAPedido), deactivated))

	accepted := engine.Send(UpdateStatusEvent{
		Status:     StatusActive,
		ReasonCode: strPtr(ReasonRecredenciamento),
		OccurredAt: time.Now(),
	})

	assert.False(t, accepted)
	assert.Equal(t, StatusInactive, engine.Snapshot().Status)
}

func TestEngineReaccreditationAfterGracePeriod(t *testing.T) {
	engine := NewEngine(NewRuleTable())
	deactivated := time.Now().Add(-181 * 24 * time.Hour)
	engine.Start(newTestContext(StatusInactive, strPtr(ReasonDescredenciamentoAPedido), deactivated))

	accepted := engine.Send(UpdateStatusEvent{
		Status:     StatusActive,
		ReasonCode: strPtr(ReasonRecredenciamento),
		OccurredAt: time.Now(),
	})

	assert.True(t, accepted)
	snapshot := engine.Snapshot()
	assert.Equal(t, StatusActive, snapshot.Status)
	assert.Equal(t, ReasonRecredenciamento, *snapshot.ReasonCode)
}

func TestEngineReaccreditationPermanentlyBlocked(t *testing.T) {
	engine := NewEngine(NewRuleTable())
	deactivated := time.Now().Add(-10 * 365 * 24 * time.Hour)
	engine.Start(newTestContext(StatusInactive, strPtr(ReasonBaixaCNPJ), deactivated))

	accepted := engine.Send(UpdateStatusEvent{
		Status:     StatusActive,
		ReasonCode: strPtr(ReasonRecredenciamento),
		OccurredAt: time.Now(),
	})

	assert.False(t, accepted)
	assert.Equal(t, StatusInactive, engine.Snapshot().Status)
}

func TestEngineRegularizationSkipsGracePeriod(t *testing.T) {
	engine := NewEngine(NewRuleTable())
	// Deactivated yesterday, far inside the 180 day window.
	deactivated := time.Now().Add(-24 * time.Hour)
	engine.Start(newTestContext(StatusInactive, strPtr(ReasonDivergenciaCadastral), deactivated))

	accepted := engine.Send(UpdateStatusEvent{
		Status:     StatusActive,
		ReasonCode: strPtr(ReasonRegularidade),
		OccurredAt: time.Now(),
	})

	assert.True(t, accepted)
	snapshot := engine.Snapshot()
	assert.Equal(t, StatusActive, snapshot.Status)
	assert.Equal(t, ReasonRegularidade, *snapshot.ReasonCode)
}

func TestEngineContextCopy(t *testing.T) {
	engine := NewEngine(NewRuleTable())
	wctx := newTestContext(StatusActive, nil, time.Now())
	engine.Start(wctx)

	copied := engine.Context()
	copied.Status = StatusInactive

	assert.Equal(t, StatusActive, engine.Snapshot().Status)
}
