// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"time"

	"github.com/stratastor/logger"
	"github.com/stratastor/svcgate/pkg/clispec"
	"github.com/stratastor/svcgate/pkg/errors"
	"github.com/stratastor/svcgate/pkg/response"
)

// Sender is anything that can run one assembled command line and return
// its stdout/stderr. transport.Session satisfies this.
type Sender interface {
	SendCommand(ctx context.Context, line string) (stdout, stderr string, err error)
}

// Invoke builds and runs cmd against sender, retrying on a busy-metadata
// return code up to clispec.RetryTime() attempts, one second apart, then
// parses the surviving stdout into records per cmd.ResponseType.
func (r *Registry) Invoke(ctx context.Context, sender Sender, l logger.Logger, name string, args Args) (response.CLIResponse, error) {
	cmd, err := r.Lookup(name)
	if err != nil {
		return response.CLIResponse{}, err
	}

	line, delim, err := r.Build(cmd, args)
	if err != nil {
		return response.CLIResponse{}, errors.Wrap(err, errors.CommandBuildFailed)
	}

	tag := r.errorTag()
	var lastErr error
	for attempt := 1; attempt <= clispec.RetryTime(); attempt++ {
		stdout, stderr, sendErr := sender.SendCommand(ctx, line)
		if sendErr != nil {
			return response.CLIResponse{}, sendErr
		}

		body, rc, tagFound := response.CLIFailure(stdout, tag)
		if !tagFound {
			if l != nil {
				l.Warn("command: return-code sentinel not found in output", "command", name)
			}
			return response.Parse(response.Kind(cmd.ResponseType), stdout, delim)
		}

		if rc == 0 {
			return response.Parse(response.Kind(cmd.ResponseType), body, delim)
		}

		lastErr = response.CLIFailureError(rc, stderr)
		if rc != clispec.MetadataBusyCode() || attempt == clispec.RetryTime() {
			return response.CLIResponse{}, lastErr
		}

		if l != nil {
			l.Warn("command: retrying after busy metadata", "command", name, "attempt", attempt)
		}
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return response.CLIResponse{}, errors.New(errors.CommandRetriesExhausted, ctx.Err().Error())
		}
	}

	return response.CLIResponse{}, errors.Wrap(lastErr, errors.CommandRetriesExhausted)
}
