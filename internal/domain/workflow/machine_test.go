package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateBorrador, false},
		{StateRadicada, false},
		{StateEnRevision, false},
		{StateConObservaciones, false},
		{StateCerrada, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"draft", StateBorrador, true},
		{"closed", StateCerrada, true},
		{"unknown", State("ARCHIVADA"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("ARCHIVADA"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	NewBuilder().Build(State("ARCHIVADA"))
}

func TestMachine_FireTransitions(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateBorrador).Permit(TriggerRadicar, StateRadicada)
	b.Configure(StateRadicada).Permit(TriggerAsignarJurados, StateEnRevision)

	m := b.Build(StateBorrador)
	ctx := context.Background()

	if err := m.Fire(ctx, TriggerRadicar); err != nil {
		t.Fatalf("Fire(RADICAR) error = %v", err)
	}
	if m.State() != StateRadicada {
		t.Errorf("State() = %v, want %v", m.State(), StateRadicada)
	}

	if err := m.Fire(ctx, TriggerAsignarJurados); err != nil {
		t.Fatalf("Fire(ASIGNAR_JURADOS) error = %v", err)
	}
	if m.State() != StateEnRevision {
		t.Errorf("State() = %v, want %v", m.State(), StateEnRevision)
	}
}

func TestMachine_FireRejectsUnconfiguredTrigger(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateBorrador).Permit(TriggerRadicar, StateRadicada)

	m := b.Build(StateBorrador)

	err := m.Fire(context.Background(), TriggerConsolidar)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
	if m.State() != StateBorrador {
		t.Errorf("failed Fire() must not move the state, got %v", m.State())
	}
}

func TestMachine_GuardBlocksTransition(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateRadicada).
		PermitIf(TriggerAsignarJurados, StateEnRevision, func(ctx context.Context) bool { return false })

	m := b.Build(StateRadicada)

	err := m.Fire(context.Background(), TriggerAsignarJurados)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want ErrGuardFailed", err)
	}
}

func TestMachine_CanFire(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateBorrador).Permit(TriggerRadicar, StateRadicada)

	m := b.Build(StateBorrador)

	if !m.CanFire(TriggerRadicar) {
		t.Error("CanFire(RADICAR) = false, want true")
	}
	if m.CanFire(TriggerConsolidar) {
		t.Error("CanFire(CONSOLIDAR) = true, want false")
	}
}

func TestMachine_PermittedTriggers(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateEnRevision).
		Permit(TriggerConsolidar, StateCerrada).
		Permit(TriggerObservar, StateConObservaciones)

	m := b.Build(StateEnRevision)

	triggers := m.PermittedTriggers()
	if len(triggers) != 2 {
		t.Fatalf("PermittedTriggers() returned %d triggers, want 2", len(triggers))
	}
}

func TestBuilder_LaterConfigureDoesNotMutateBuiltMachine(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateBorrador).Permit(TriggerRadicar, StateRadicada)

	m := b.Build(StateBorrador)

	b.Configure(StateBorrador).Permit(TriggerConsolidar, StateCerrada)

	if m.CanFire(TriggerConsolidar) {
		t.Error("built machine picked up a transition configured after Build()")
	}
}
