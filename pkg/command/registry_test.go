// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratastor/svcgate/pkg/clispec"
)

func testSpec() *clispec.Spec {
	return &clispec.Spec{
		ArrayType: "SVC",
		Commands: []*clispec.Command{
			{
				Name:         "mkhost",
				Executable:   "mkhost",
				IsSVC:        true,
				ResponseType: "MetadataEntry",
				Params: []*clispec.Param{
					{Name: "name", Flag: "-name", WithName: true, Required: true},
					{Name: "hbawwpn", Flag: "-hbawwpn", WithName: true},
					{Name: "force", Flag: "-force", IsFlag: true},
					{Name: "delim", Flag: "-delim", WithName: true},
				},
			},
			{
				Name:         "lshost",
				Executable:   "lshost",
				IsSVC:        false,
				ResponseType: "Generic",
				Params: []*clispec.Param{
					{Name: "target", WithName: false},
				},
			},
		},
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry(testSpec())
	cmd, err := r.Lookup("mkhost")
	require.NoError(t, err)
	assert.Equal(t, "mkhost", cmd.Name)

	_, err = r.Lookup("nosuchcommand")
	assert.Error(t, err)
}

func TestRegistry_Build_MissingRequiredArg(t *testing.T) {
	r := NewRegistry(testSpec())
	cmd, _ := r.Lookup("mkhost")
	_, _, err := r.Build(cmd, Args{Values: map[string]string{}})
	assert.Error(t, err)
}

func TestRegistry_Build_UnknownArg(t *testing.T) {
	r := NewRegistry(testSpec())
	cmd, _ := r.Lookup("mkhost")
	_, _, err := r.Build(cmd, Args{Values: map[string]string{"name": "h1", "bogus": "x"}})
	assert.Error(t, err)
}

func TestRegistry_Build_SVCForcesDelimAndTrailingSentinel(t *testing.T) {
	r := NewRegistry(testSpec())
	cmd, _ := r.Lookup("mkhost")
	line, delim, err := r.Build(cmd, Args{Values: map[string]string{"name": "h1", "hbawwpn": "10000090FA"}})
	require.NoError(t, err)
	assert.Equal(t, ',', delim)
	assert.Contains(t, line, "mkhost")
	assert.Contains(t, line, "-name h1")
	assert.Contains(t, line, "-hbawwpn 10000090FA")
	assert.Contains(t, line, "-delim ,")
	assert.Contains(t, line, "|| echo "+clispec.ErrorTag()+" $?")
}

func TestRegistry_Build_PositionalDeferredToEndForSVC(t *testing.T) {
	spec := &clispec.Spec{
		ArrayType: "SVC",
		Commands: []*clispec.Command{
			{
				Name:       "rmhost",
				Executable: "rmhost",
				IsSVC:      true,
				Params: []*clispec.Param{
					{Name: "force", Flag: "-force", IsFlag: true},
					{Name: "target", WithName: false},
				},
			},
		},
	}
	r := NewRegistry(spec)
	cmd, _ := r.Lookup("rmhost")
	line, _, err := r.Build(cmd, Args{
		Values: map[string]string{"target": "host1"},
		Flags:  map[string]bool{"force": true},
	})
	require.NoError(t, err)
	assert.Contains(t, line, "-force")
	assert.Contains(t, line, "host1")
	// Positional args are deferred to the end of the line for SVC commands.
	assert.True(t, strings.Index(line, "host1") > strings.Index(line, "-force"))
}

func TestRegistry_Build_StrictParamChoiceRejectsInvalidValue(t *testing.T) {
	spec := &clispec.Spec{
		Commands: []*clispec.Command{
			{
				Name:       "chhost",
				Executable: "chhost",
				Params: []*clispec.Param{
					{Name: "type", Flag: "-type", WithName: true, Choices: []string{"generic", "hpux"}},
				},
			},
		},
	}
	r := NewRegistry(spec)
	r.StrictParamChoice = true
	cmd, _ := r.Lookup("chhost")
	_, _, err := r.Build(cmd, Args{Values: map[string]string{"type": "bogus"}})
	assert.Error(t, err)

	_, _, err = r.Build(cmd, Args{Values: map[string]string{"type": "hpux"}})
	assert.NoError(t, err)
}
