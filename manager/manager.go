// Copyright 2024 The Neutron Authors
// This file is part of the neutron-host library.
//
// The neutron-host library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The neutron-host library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the neutron-host library. If not, see <http://www.gnu.org/licenses/>.

// Package manager implements the recursive call-execution algorithm: the
// single entry point that drives a hypervisor through
// enter_state/execute/set_result/set_error/exit_state, dispatches
// ElementCall suspensions through CallSystem, and recurses into a fresh
// frame whenever an element pushes a nested context.
package manager

import (
	"github.com/google/uuid"

	"github.com/earlgreytech/neutron-host/codata"
	"github.com/earlgreytech/neutron-host/common"
	"github.com/earlgreytech/neutron-host/element"
	"github.com/earlgreytech/neutron-host/hypervisor"
	"github.com/earlgreytech/neutron-host/log"
	"github.com/earlgreytech/neutron-host/metrics"
	"github.com/earlgreytech/neutron-host/state"
)

// Result is execute()'s return value: the gas the frame (and everything it
// recursively ran) consumed, and the guest's reported status code.
type Result struct {
	GasUsed    uint64
	StatusCode uint32
}

// Manager ties together the three components execute() needs beyond
// CoData itself: the hypervisor registry, the element dispatcher, and the
// checkpointed store the storage element writes through.
type Manager struct {
	VMM   *hypervisor.VMManager
	CS    *element.CallSystem
	State *state.GlobalState
	Log   log.Logger
}

// New builds a Manager. A nil logger falls back to the package root logger.
func New(vmm *hypervisor.VMManager, cs *element.CallSystem, gs *state.GlobalState, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.Root()
	}
	return &Manager{VMM: vmm, CS: cs, State: gs, Log: logger}
}

// Run is the top-level caller's entry point: it runs execute() for the
// single frame already pushed onto cd, then durably commits or discards
// whatever the checkpoint that frame opened left behind — the one
// checkpoint no recursive call site is left to resolve, because nothing
// called this frame.
func (m *Manager) Run(cd *codata.CoData) (Result, *common.Error) {
	res, err := m.execute(cd)
	depth := m.State.Depth()
	if depth > 0 {
		if err != nil && err.IsRecoverable() {
			m.State.RevertSingleCheckpoint()
		} else if cerr := m.State.Commit(); cerr != nil && err == nil {
			err = cerr
		}
	}
	// execute()'s own step-6 promotion only fires for errors that break its
	// main loop; a frame that never got far enough to open a checkpoint
	// (bad VM version, enter_state failure) would otherwise hand back a
	// recoverable error with nothing left above it to promote it — Run is
	// always the outermost call, so it is the backstop.
	if err != nil && err.IsRecoverable() {
		err = common.TopLevelError(err)
	}
	return res, err
}

// execute runs one context frame end to end, recursing into itself whenever
// the guest's element call pushes a nested frame onto cd.
func (m *Manager) execute(cd *codata.CoData) (Result, *common.Error) {
	corrID := uuid.New().String()
	logger := m.Log.New("correlation_id", corrID)
	metrics.CallDepth.Update(int64(cd.ContextCount()))

	g0 := cd.GasRemaining
	ctx := cd.CurrentContext()

	hv, err := m.VMM.New(ctx.SelfAddress.Version())
	if err != nil {
		return Result{}, err
	}

	if err := hv.EnterState(cd, m.CS); err != nil {
		return Result{}, err
	}

	m.State.Checkpoint()
	metrics.CheckpointOpened.Inc(1)

	var statusCode uint32
	var loopErr *common.Error

loop:
	for {
		vmRes, verr := hv.Execute(cd)
		if verr != nil {
			loopErr = verr
			break loop
		}

		switch vmRes.Kind {
		case hypervisor.Ended:
			statusCode = vmRes.StatusCode
			break loop

		case hypervisor.ElementCall:
			cd.EnterElement()
			elRes, cerr := m.CS.Call(cd, vmRes.FeatureID, vmRes.FunctionID)
			if cerr != nil {
				cd.ExitElement()
				if cerr.IsRecoverable() {
					hv.SetError(uint64(cerr.Code()))
					continue loop
				}
				loopErr = cerr
				break loop
			}

			switch elRes.Kind {
			case element.ResultValue:
				cd.ExitElement()
				hv.SetResult(elRes.Value)

			case element.ResultNewCall:
				cd.ExitElement()
				subRes, suberr := m.execute(cd)
				if suberr != nil {
					if suberr.IsRecoverable() {
						m.State.RevertSingleCheckpoint()
						metrics.CheckpointReverted.Inc(1)
						hv.SetError(uint64(suberr.Code()))
						continue loop
					}
					loopErr = suberr
					break loop
				}
				m.State.CommitSingleCheckpoint()
				metrics.CheckpointCommitted.Inc(1)
				hv.SetResult(uint64(subRes.StatusCode))
			}
		}
	}

	if loopErr != nil && loopErr.IsRecoverable() && cd.ContextCount() == 1 {
		loopErr = common.TopLevelError(loopErr)
	}

	// end_execution: one last enter/exit of the element boundary so the
	// caller observes this frame's results where it expects them, then pop.
	cd.EnterElement()
	cd.ExitElement()
	cd.PopContext()

	hv.ExitState(cd, m.CS)

	gasUsed := g0 - cd.GasRemaining
	metrics.GasConsumed.Inc(int64(gasUsed))

	if loopErr != nil {
		logger.Debug("execution frame ended with error", "code", loopErr.Code(), "recoverable", loopErr.IsRecoverable())
		return Result{GasUsed: gasUsed}, loopErr
	}
	logger.Trace("execution frame ended", "status", statusCode, "gas_used", gasUsed)
	return Result{GasUsed: gasUsed, StatusCode: statusCode}, nil
}
