// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"strings"

	"github.com/stratastor/svcgate/pkg/command"
	"github.com/stratastor/svcgate/pkg/errors"
	"github.com/stratastor/svcgate/pkg/response"
)

// HostSpec describes a host object to create: its name and the initiator
// ports it owns. FC ports are preferred when both are supplied, matching
// storage_agent.py's create_host behavior of favoring Fibre Channel
// over iSCSI when a host exposes both.
type HostSpec struct {
	Name     string
	FCPorts  []string
	ISCSIPorts []string
}

// CreateHost creates a host object on the array with all of its ports
// bound in a single mkhost call, comma-joining multiple FC or iSCSI
// ports into one "-fcwwpn"/"-iscsiname" value the same way
// storage_agent.py's create_host does. If mkhost fails with a real error,
// CreateHost makes a best-effort attempt to delete the partially created
// host before returning that error wrapped as AgentArrayError, mirroring
// the reference client's create-then-cleanup-on-failure behavior. A
// failure the error preprocessor classifies as benign counts as success.
func (a *Agent) CreateHost(ctx context.Context, spec HostSpec) error {
	ports := spec.FCPorts
	portKey := "fcwwpn"
	if len(ports) == 0 {
		ports = spec.ISCSIPorts
		portKey = "iscsiname"
	}
	if len(ports) == 0 {
		return errors.New(errors.CommandMissingArg, "host has no FC or iSCSI ports")
	}

	args := command.Args{
		Values: map[string]string{
			"name":  spec.Name,
			portKey: strings.Join(ports, ","),
		},
	}

	if _, err := a.invoke(ctx, "mkhost", args); err != nil {
		isErr, _, orig := a.classify(err, false)
		if isErr {
			_ = a.DeleteHost(ctx, spec.Name)
			return errors.Wrap(orig, errors.AgentArrayError)
		}
	}

	return nil
}

// DeleteHost removes a host object. A "host does not exist" response from
// the array is treated as success, since the caller's goal — the host
// being gone — is already satisfied.
func (a *Agent) DeleteHost(ctx context.Context, name string) error {
	args := command.Args{Values: map[string]string{"name": name}}
	_, err := a.invoke(ctx, "rmhost", args)
	if err == nil {
		return nil
	}
	isErr, _, orig := a.classify(err, true)
	if !isErr {
		return nil
	}
	return errors.Wrap(orig, errors.AgentArrayError)
}

// GetHosts lists host objects. When name is non-empty, only that host is
// returned; an empty result with no error means the host does not exist.
func (a *Agent) GetHosts(ctx context.Context, name string) ([]response.Record, error) {
	args := command.Args{Values: map[string]string{}}
	if name != "" {
		args.Values["filtervalue"] = "name=" + name
	}

	recs, err := a.invoke(ctx, "lshost", args)
	if err != nil {
		isErr, _, orig := a.classify(err, true)
		if !isErr {
			return nil, nil
		}
		return nil, errors.Wrap(orig, errors.AgentArrayError)
	}
	return recs, nil
}

// invoke resolves this array's command registry (discovering its CLISpec
// on first use), checks out a pooled session, runs name/args against it,
// and returns the session to the pool regardless of outcome.
func (a *Agent) invoke(ctx context.Context, name string, args command.Args) ([]response.Record, error) {
	reg, err := a.ensureSpec(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := a.pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	defer a.pool.Put(sess)

	resp, err := reg.Invoke(ctx, sess, a.log, name, args)
	if err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// classify runs the CMMVC error/warning classification over err.
func (a *Agent) classify(err error, skipNotExisting bool) (isError bool, code string, original error) {
	return Preprocess(err, a.log, skipNotExisting)
}
