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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OverridesDefaultsFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "neutron.toml")
	body := `
[Storage]
Path = "/tmp/neutron-state"

[Log]
Level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/neutron-state", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Gas schedule was never mentioned in the file, so it keeps its default.
	assert.NotEmpty(t, cfg.Gas.ElementCost)
}

func TestLoad_UnknownFieldIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "neutron.toml")
	require.NoError(t, os.WriteFile(path, []byte("NotAField = 1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaults_HasUsableGasSchedule(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, uint64(1), cfg.Gas.VMOp(999))
}
