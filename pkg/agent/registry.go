// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package agent keeps one live Agent per (array endpoint, username) pair,
// the same cache-by-credentials role storage_agent.py's module-level
// _array_agents dict plays in the reference client, and exposes the
// host-management operations callers actually invoke against an array.
package agent

import (
	"sync"

	"github.com/stratastor/logger"
	"github.com/stratastor/svcgate/pkg/command"
	"github.com/stratastor/svcgate/pkg/pool"
	"github.com/stratastor/svcgate/pkg/transport"
)

// Key identifies one cached Agent. Two callers asking for the same
// endpoint and username always share a connection pool; a changed
// password evicts and replaces the cached entry rather than reusing it.
type Key struct {
	Endpoint string
	Username string
}

// Agent owns one array's connection pool and, once discovered, the
// command registry built from that array's own CLISpec. All of its
// methods are safe for concurrent use; the underlying Pool serializes
// access to individual SSH sessions.
type Agent struct {
	key      Key
	password string
	pool     *pool.Pool
	specCfg  SpecConfig
	log      logger.Logger

	specOnce sync.Mutex
	registry *command.Registry
}

// PoolConfig bounds the connection pool created for a newly cached Agent.
type PoolConfig struct {
	MinSize int
	MaxSize int
}

// Registry is the process-wide cache of Agents. One Registry is normally
// shared across all HTTP handlers.
type Registry struct {
	mu      sync.Mutex
	agents  map[Key]*Agent
	specCfg SpecConfig
	log     logger.Logger
}

// NewRegistry creates an empty Agent cache. specCfg tells every Agent
// where to find a bundled CLISpec if the array itself doesn't answer
// catxmlspec.
func NewRegistry(specCfg SpecConfig, l logger.Logger) *Registry {
	return &Registry{agents: map[Key]*Agent{}, specCfg: specCfg, log: l}
}

// Get returns the cached Agent for (endpoint, username), creating one on
// first use. If an Agent is already cached under this key with a
// different password, it is evicted (its pool shut down) and replaced,
// mirroring storage_agent.py's get_agent password-rotation handling.
func (r *Registry) Get(endpoint, username, password string, tcfg transport.Config, pcfg PoolConfig) (*Agent, error) {
	key := Key{Endpoint: endpoint, Username: username}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.agents[key]; ok {
		if existing.password == password {
			return existing, nil
		}
		existing.pool.Shutdown()
		delete(r.agents, key)
	}

	tcfg.Host = endpoint
	tcfg.User = username
	tcfg.Password = password

	dial := func() (*transport.Session, error) {
		return transport.Dial(tcfg, r.log)
	}

	a := &Agent{
		key:      key,
		password: password,
		pool:     pool.New(dial, pcfg.MinSize, pcfg.MaxSize, r.log),
		specCfg:  r.specCfg,
		log:      r.log,
	}
	r.agents[key] = a
	return a, nil
}

// ClearAgents evicts every cached Agent, shutting down its pool. Called on
// graceful shutdown so no SSH sessions outlive the process.
func (r *Registry) ClearAgents() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, a := range r.agents {
		a.pool.Shutdown()
		delete(r.agents, key)
	}
}

// Evict removes the cached Agent for (endpoint, username), if any,
// shutting down its pool. Used when credentials are known to have been
// rotated out from under a live Agent.
func (r *Registry) Evict(endpoint, username string) {
	key := Key{Endpoint: endpoint, Username: username}
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.agents[key]; ok {
		a.pool.Shutdown()
		delete(r.agents, key)
	}
}

// Len reports how many agents are currently cached, for diagnostics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.agents)
}

// PoolStats reports the live/max connection counts of every cached
// agent's pool, keyed by endpoint, for the periodic health sweep.
func (r *Registry) PoolStats() map[string][2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][2]int, len(r.agents))
	for k, a := range r.agents {
		cur, max := a.pool.Size()
		out[k.Endpoint] = [2]int{cur, max}
	}
	return out
}

// PruneAll probes every cached agent's idle connections and closes any
// that have gone dead, returning how many were reaped in total. Called
// by the periodic maintenance sweep.
func (r *Registry) PruneAll() int {
	r.mu.Lock()
	agents := make([]*Agent, 0, len(r.agents))
	for _, a := range r.agents {
		agents = append(agents, a)
	}
	r.mu.Unlock()

	reaped := 0
	for _, a := range agents {
		reaped += a.pool.Prune()
	}
	return reaped
}
