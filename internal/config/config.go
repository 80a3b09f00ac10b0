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

// Package config loads the run configuration for cmd/neutron-run: a
// naoina/toml decoder configured so TOML keys match Go field names
// verbatim, loaded over a set of in-code defaults.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"

	"github.com/earlgreytech/neutron-host/gas"
)

// tomlSettings disables case-folding or renaming between TOML keys and Go
// struct fields, and turns an unrecognized field into an error instead of a
// silent skip.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// StorageConfig selects where GlobalState's committed baseline lives.
type StorageConfig struct {
	// Path is the goleveldb directory. Empty means in-memory, used by tests
	// and one-shot `neutron-run` invocations that never persist state.
	Path string `toml:",omitempty"`
}

// LogConfig controls the root logger.
type LogConfig struct {
	Level string `toml:",omitempty"` // one of trace/debug/info/warn/error/crit
}

// Config is the top-level run configuration for cmd/neutron-run.
type Config struct {
	Storage StorageConfig
	Gas     gas.Schedule
	Log     LogConfig
}

// Defaults returns a Config usable with no TOML file at all.
func Defaults() Config {
	return Config{
		Gas: *gas.Default(),
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a TOML file into a copy of Defaults(), so any field the file
// omits keeps its default value.
func Load(path string) (Config, error) {
	cfg := Defaults()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
		var lineErr *toml.LineError
		if errors.As(err, &lineErr) {
			return cfg, fmt.Errorf("%s, %w", path, err)
		}
		return cfg, err
	}
	return cfg, nil
}
