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

// Command neutron-run is a CLI test harness for BareVM (hypervisor §4.3.1):
// it loads a flat code blob as a BareExecution frame's ".text" section
// (conventionally based at 0x10000, though BareVM's register machine has
// no address space of its own to place it at — the offset is bookkeeping
// for callers that also hand it a real ELF), runs it to completion through
// Manager.Run, and reports gas used and the guest's exit status.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/earlgreytech/neutron-host/codata"
	"github.com/earlgreytech/neutron-host/common"
	"github.com/earlgreytech/neutron-host/element"
	"github.com/earlgreytech/neutron-host/hypervisor"
	"github.com/earlgreytech/neutron-host/internal/config"
	"github.com/earlgreytech/neutron-host/log"
	"github.com/earlgreytech/neutron-host/manager"
	"github.com/earlgreytech/neutron-host/state"
)

// textLoadOffset documents where an ELF-derived code image's .text section
// is conventionally based; BareVM's program counter is a plain index into
// the code slice it is handed, so this value is informational only — it
// lets a future ELF loader translate symbol addresses before slicing the
// section out for BareVM.
const textLoadOffset = 0x10000

var (
	configFlag = cli.StringFlag{Name: "config", Usage: "TOML configuration file"}
	dataFlag   = cli.StringFlag{Name: "data", Usage: "path to the initial data/constants section"}
	gasFlag    = cli.Int64Flag{Name: "gas", Usage: "gas limit for this run", Value: 10_000_000}
)

func main() {
	app := cli.NewApp()
	app.Name = "neutron-run"
	app.Usage = "run a flat code blob against the neutron execution host"
	app.Flags = []cli.Flag{configFlag, dataFlag, gasFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		color.Red("neutron-run: %v", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return cli.NewExitError("usage: neutron-run [options] <code-file>", 1)
	}

	cfg := config.Defaults()
	if f := ctx.String(configFlag.Name); f != "" {
		loaded, err := config.Load(f)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("loading config: %v", err), 1)
		}
		cfg = loaded
	}
	applyLogLevel(cfg.Log.Level)

	code, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("reading code file: %v", err), 1)
	}

	var data []byte
	if dataPath := ctx.String(dataFlag.Name); dataPath != "" {
		data, err = os.ReadFile(dataPath)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("reading data file: %v", err), 1)
		}
	}

	gs, gerr := state.New(cfg.Storage.Path)
	if gerr != nil {
		return cli.NewExitError(fmt.Sprintf("opening storage: %v", gerr), 1)
	}
	defer gs.Close()

	schedule := cfg.Gas
	cs := element.NewCallSystem(
		element.NewStorageElement(gs, &schedule),
		element.NewLoggingElement(nil, &schedule),
	)

	vmm := hypervisor.NewVMManager()
	vmm.Register(1, hypervisor.NewBareVMFactory(&schedule))

	mgr := manager.New(vmm, cs, gs, log.Root())

	var addrData [common.AddressDataLen]byte
	cd := codata.NewTopLevelCall(common.NewAddress(1, addrData), uint64(ctx.Int64(gasFlag.Name)), 0)
	cd.CurrentContext().ExecutionType = common.BareExecution
	if err := cd.PushInputKey([]byte("!.c"), code); err != nil {
		return cli.NewExitError(fmt.Sprintf("loading code section: %v", err), 1)
	}
	if data != nil {
		if err := cd.PushInputKey([]byte("!.d"), data); err != nil {
			return cli.NewExitError(fmt.Sprintf("loading data section: %v", err), 1)
		}
	}

	res, rerr := mgr.Run(cd)
	if rerr != nil {
		color.Red("FAIL  status=error code=0x%08x gas_used=%d", rerr.Code(), res.GasUsed)
		return cli.NewExitError(rerr.Error(), 1)
	}
	if res.StatusCode == 0 {
		color.Green("PASS  status=0 gas_used=%d", res.GasUsed)
	} else {
		color.Yellow("DONE  status=%d gas_used=%d", res.StatusCode, res.GasUsed)
		return cli.NewExitError("", int(res.StatusCode))
	}
	return nil
}

func applyLogLevel(level string) {
	switch level {
	case "trace":
		log.SetLevel(log.LevelTrace)
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	case "crit":
		log.SetLevel(log.LevelCrit)
	default:
		log.SetLevel(log.LevelInfo)
	}
}
