package engine

import (
	"context"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// stepMachine tracks the lifecycle of one step. The transitions mirror what
// the retry loop is allowed to do: a retrying step must be re-started before
// it can succeed, and only a running step can fail for good.
type stepMachine struct {
	fsm *fsm.FSM
}

func newStepMachine(log *zap.Logger, moduleID, description string) *stepMachine {
	m := &stepMachine{}
	m.fsm = fsm.NewFSM(
		string(StatePending),
		fsm.Events{
			{Name: "start", Src: []string{string(StatePending), string(StateRetrying)}, Dst: string(StateRunning)},
			{Name: "retry", Src: []string{string(StateRunning)}, Dst: string(StateRetrying)},
			{Name: "succeed", Src: []string{string(StateRunning)}, Dst: string(StateSucceeded)},
			{Name: "fail", Src: []string{string(StateRunning), string(StateRetrying)}, Dst: string(StateFailed)},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				log.Debug("step transition",
					zap.String("module", moduleID),
					zap.String("step", description),
					zap.String("event", e.Event),
					zap.String("src", e.Src),
					zap.String("dst", e.Dst),
				)
			},
		},
	)
	return m
}

func (m *stepMachine) event(ctx context.Context, name string) {
	_ = m.fsm.Event(ctx, name)
}

func (m *stepMachine) state() StepState {
	return StepState(m.fsm.Current())
}
