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

package element

import (
	"github.com/earlgreytech/neutron-host/codata"
	"github.com/earlgreytech/neutron-host/common"
	"github.com/earlgreytech/neutron-host/gas"
	"github.com/earlgreytech/neutron-host/log"
)

// Logging function IDs. Each pops a fragment count and then that many
// byte-string fragments off the input stack (in order), joins them, and
// emits the result to the host's log at the matching severity.
const (
	FuncLogDebug   uint32 = 0
	FuncLogInfo    uint32 = 1
	FuncLogWarning uint32 = 2
	FuncLogError   uint32 = 3
)

// LoggingElement implements LOGGING_FEATURE. It carries a contract-address
// tag on every emitted record so a host watching the log stream can tell
// which running contract produced which line.
type LoggingElement struct {
	logger   log.Logger
	schedule *gas.Schedule
}

// NewLoggingElement wires a destination logger and gas schedule into the
// element. Passing a nil logger falls back to the package root logger.
func NewLoggingElement(logger log.Logger, schedule *gas.Schedule) *LoggingElement {
	if logger == nil {
		logger = log.Root()
	}
	return &LoggingElement{logger: logger, schedule: schedule}
}

func (l *LoggingElement) SystemCall(cs *CallSystem, cd *codata.CoData, function uint32) (ElementResult, *common.Error) {
	countBytes, err := cd.PopInputStack()
	if err != nil {
		return ElementResult{}, err
	}
	count := decodeU64(countBytes)

	fragments := make([][]byte, count)
	total := 0
	for i := uint64(0); i < count; i++ {
		frag, err := cd.PopInputStack()
		if err != nil {
			return ElementResult{}, err
		}
		fragments[i] = frag
		total += len(frag)
	}

	c := l.schedule.ElementFunction(LoggingFeature, function)
	cost := c.Base + c.PerByte*uint64(total)
	if !gas.Charge(&cd.GasRemaining, cost) {
		return ElementResult{}, common.ErrOutOfGas
	}

	msg := make([]byte, 0, total)
	for _, f := range fragments {
		msg = append(msg, f...)
	}

	self := cd.CurrentContext().SelfAddress
	switch function {
	case FuncLogDebug:
		l.logger.Debug(string(msg), "contract", self)
	case FuncLogInfo:
		l.logger.Info(string(msg), "contract", self)
	case FuncLogWarning:
		l.logger.Warn(string(msg), "contract", self)
	case FuncLogError:
		l.logger.Error(string(msg), "contract", self)
	default:
		return ElementResult{}, common.ErrInvalidSystemFunction
	}
	return Result(0), nil
}
