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

// Package metrics wires rcrowley/go-metrics counters for the quantities
// worth watching across a run: checkpoint depth, element dispatch volume,
// and gas consumption. A single process-wide registry with package-level
// named counters registered at init.
package metrics

import (
	gometrics "github.com/rcrowley/go-metrics"
)

var (
	registry = gometrics.NewRegistry()

	CheckpointDepth   = gometrics.NewRegisteredGauge("state/checkpoint_depth", registry)
	CheckpointOpened  = gometrics.NewRegisteredCounter("state/checkpoints_opened", registry)
	CheckpointReverted = gometrics.NewRegisteredCounter("state/checkpoints_reverted", registry)
	CheckpointCommitted = gometrics.NewRegisteredCounter("state/checkpoints_committed", registry)

	ElementDispatches = gometrics.NewRegisteredCounter("element/dispatches", registry)
	ElementBorrowFaults = gometrics.NewRegisteredCounter("element/borrow_faults", registry)

	GasConsumed = gometrics.NewRegisteredCounter("manager/gas_consumed", registry)
	CallDepth   = gometrics.NewRegisteredGauge("manager/call_depth", registry)
)

// Registry exposes the underlying registry, e.g. for a future metrics.Log
// or an exporter wired in by the CLI harness.
func Registry() gometrics.Registry { return registry }
