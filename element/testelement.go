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
)

// TestFeature is an exported, test-only element ID: it is
// never registered by NewCallSystem and has no ambient-stack dependencies,
// so CoData/Manager tests can exercise the element boundary without
// pulling in GlobalState or the logging destination.
const TestFeature uint32 = 6

// EchoElement pops every item off the current input stack and pushes it
// back onto the output stack in the same order, then returns Result(0).
// It exists purely to give element-boundary tests something to call that
// proves the flip happened without needing real storage or logging.
type EchoElement struct{}

func (EchoElement) SystemCall(cs *CallSystem, cd *codata.CoData, function uint32) (ElementResult, *common.Error) {
	var items [][]byte
	for {
		v, err := cd.PopInputStack()
		if err != nil {
			break
		}
		items = append(items, v)
	}
	for i := len(items) - 1; i >= 0; i-- {
		cd.PushOutputStack(items[i])
	}
	return Result(0), nil
}
