// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratastor/svcgate/pkg/transport"
)

func testPoolConfig() PoolConfig {
	return PoolConfig{MinSize: 1, MaxSize: 2}
}

// TestRegistry_Get_SameCredentialsShareOneAgent exercises Testable
// Property 6: repeated Get calls for the same (endpoint, username, password)
// never grow the registry past one entry and always hand back the same
// *Agent, matching storage_agent.py's get_agent cache-hit behavior.
func TestRegistry_Get_SameCredentialsShareOneAgent(t *testing.T) {
	r := NewRegistry(SpecConfig{}, nil)

	a1, err := r.Get("array1", "admin", "secret", transport.Config{}, testPoolConfig())
	require.NoError(t, err)
	a2, err := r.Get("array1", "admin", "secret", transport.Config{}, testPoolConfig())
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.Equal(t, 1, r.Len())
}

// TestRegistry_Get_DistinctEndpointsOrUsersGetDistinctAgents confirms the
// registry is keyed on the full (endpoint, username) pair, not endpoint
// alone or username alone.
func TestRegistry_Get_DistinctEndpointsOrUsersGetDistinctAgents(t *testing.T) {
	r := NewRegistry(SpecConfig{}, nil)

	a1, err := r.Get("array1", "admin", "secret", transport.Config{}, testPoolConfig())
	require.NoError(t, err)
	a2, err := r.Get("array2", "admin", "secret", transport.Config{}, testPoolConfig())
	require.NoError(t, err)
	a3, err := r.Get("array1", "other", "secret", transport.Config{}, testPoolConfig())
	require.NoError(t, err)

	assert.NotSame(t, a1, a2)
	assert.NotSame(t, a1, a3)
	assert.Equal(t, 3, r.Len())
}

// TestRegistry_Get_PasswordRotationEvictsAndReplaces exercises Scenario F:
// a changed password for an already-cached key evicts the old Agent and
// installs a new one, rather than reusing the stale credentials.
func TestRegistry_Get_PasswordRotationEvictsAndReplaces(t *testing.T) {
	r := NewRegistry(SpecConfig{}, nil)

	a1, err := r.Get("array1", "admin", "oldpass", transport.Config{}, testPoolConfig())
	require.NoError(t, err)

	a2, err := r.Get("array1", "admin", "newpass", transport.Config{}, testPoolConfig())
	require.NoError(t, err)

	assert.NotSame(t, a1, a2)
	assert.Equal(t, "newpass", a2.password)
	// The rotated-out Agent's pool is shut down, and exactly one entry
	// remains cached for this key.
	assert.Equal(t, 1, r.Len())

	_, err = a1.pool.Get(context.Background())
	assert.Error(t, err)
}

func TestRegistry_Evict_RemovesCachedAgent(t *testing.T) {
	r := NewRegistry(SpecConfig{}, nil)

	_, err := r.Get("array1", "admin", "secret", transport.Config{}, testPoolConfig())
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	r.Evict("array1", "admin")
	assert.Equal(t, 0, r.Len())

	// Evicting an absent key is a no-op, not an error.
	r.Evict("array1", "admin")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ClearAgents_EmptiesRegistry(t *testing.T) {
	r := NewRegistry(SpecConfig{}, nil)

	_, err := r.Get("array1", "admin", "secret", transport.Config{}, testPoolConfig())
	require.NoError(t, err)
	_, err = r.Get("array2", "admin", "secret", transport.Config{}, testPoolConfig())
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())

	r.ClearAgents()
	assert.Equal(t, 0, r.Len())
}
