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
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/earlgreytech/neutron-host/codata"
	"github.com/earlgreytech/neutron-host/common"
	"github.com/earlgreytech/neutron-host/metrics"
)

// CallSystem routes (feature_id, function_id) pairs to registered Elements
// and enforces the single-live-borrow re-entrancy rule: an element that is
// already executing cannot be re-entered, including by itself, before it
// returns.
type CallSystem struct {
	elements map[uint32]Element
	borrowed mapset.Set[uint32]
}

// NewCallSystem builds a CallSystem with the two hard-wired elements
// already registered.
func NewCallSystem(storage Element, logging Element) *CallSystem {
	cs := &CallSystem{
		elements: make(map[uint32]Element),
		borrowed: mapset.NewThreadUnsafeSet[uint32](),
	}
	cs.elements[GlobalStorageFeature] = storage
	cs.elements[LoggingFeature] = logging
	return cs
}

// Register adds a user element under featureID. Registering over one of
// the two reserved IDs is an unrecoverable developer error — it would
// silently shadow host-guaranteed functionality for every guest.
func (cs *CallSystem) Register(featureID uint32, el Element) *common.Error {
	if featureID == GlobalStorageFeature || featureID == LoggingFeature {
		return common.ErrReservedFeatureID
	}
	cs.elements[featureID] = el
	return nil
}

// Call is the public entry point: the top bit of functionID is masked off,
// so guest-initiated calls can never reach a privately-numbered function.
func (cs *CallSystem) Call(cd *codata.CoData, featureID, functionID uint32) (ElementResult, *common.Error) {
	return cs.dispatch(cd, featureID, functionID&^functionPrivateBit)
}

// PrivateCall dispatches without masking, for host-internal use and for
// elements calling other elements.
func (cs *CallSystem) PrivateCall(cd *codata.CoData, featureID, functionID uint32) (ElementResult, *common.Error) {
	return cs.dispatch(cd, featureID, functionID)
}

func (cs *CallSystem) dispatch(cd *codata.CoData, featureID, functionID uint32) (ElementResult, *common.Error) {
	el, ok := cs.elements[featureID]
	if !ok {
		return ElementResult{}, common.ErrInvalidSystemFunction
	}
	if cs.borrowed.Contains(featureID) {
		metrics.ElementBorrowFaults.Inc(1)
		return ElementResult{}, common.ErrElementBorrowed
	}
	cs.borrowed.Add(featureID)
	defer cs.borrowed.Remove(featureID)

	metrics.ElementDispatches.Inc(1)
	return el.SystemCall(cs, cd, functionID)
}
