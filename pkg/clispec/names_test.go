// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package clispec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "lshost", canonicalName("lshost"))
	assert.Equal(t, "ls_host", canonicalName("ls host"))
	assert.Equal(t, "C123", canonicalName("123"))
	assert.Equal(t, "C", canonicalName(""))
	assert.Equal(t, "C_abc", canonicalName("_abc"))
}

func TestCanonicalName_Truncates(t *testing.T) {
	long := ""
	for i := 0; i < 80; i++ {
		long += "a"
	}
	got := canonicalName(long)
	assert.LessOrEqual(t, len(got), maxCanonicalNameLen)
}

func TestResolveKeyConflict_NoCollision(t *testing.T) {
	name, err := resolveKeyConflict("lshost", map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, "lshost", name)
}

func TestResolveKeyConflict_Collision(t *testing.T) {
	taken := map[string]bool{"lshost": true}
	name, err := resolveKeyConflict("lshost", taken)
	require.NoError(t, err)
	assert.Equal(t, "lshost_0", name)
}

func TestResolveKeyConflict_ExhaustsAlphabet(t *testing.T) {
	taken := map[string]bool{"lshost": true}
	for i := 0; i < len(suffixAlphabet); i++ {
		taken[canonicalSuffixed("lshost", i)] = true
	}
	_, err := resolveKeyConflict("lshost", taken)
	assert.Error(t, err)
}

func canonicalSuffixed(name string, i int) string {
	return name + "_" + string(suffixAlphabet[i])
}

// EscapeShellArg is idempotent once a value has been quoted: re-escaping
// an already-quoted value must not double-wrap it in another layer of
// quotes.
func TestEscapeShellArg_Idempotent(t *testing.T) {
	values := []string{"simple123", "with space", "already'quoted'", "semi;colon", ""}
	for _, v := range values {
		once := EscapeShellArg(v)
		twice := EscapeShellArg(once)
		assert.Equal(t, once, twice, "value %q not idempotent", v)
	}
}

func TestEscapeShellArg_AlnumPassesThrough(t *testing.T) {
	assert.Equal(t, "abc123", EscapeShellArg("abc123"))
}

func TestEscapeShellArg_QuotesUnsafe(t *testing.T) {
	assert.Equal(t, "'with space'", EscapeShellArg("with space"))
}

func TestReturnCodeTail(t *testing.T) {
	assert.Equal(t, "|| echo tag123 $?", ReturnCodeTail("tag123"))
}
