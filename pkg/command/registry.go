// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package command turns a named, argument-bearing call into the exact
// shell command line a CLISpec document describes, invokes it over a
// transport, and retries the handful of failures the array itself asks
// callers to retry.
package command

import (
	"fmt"
	"strings"

	"github.com/stratastor/svcgate/pkg/clispec"
	"github.com/stratastor/svcgate/pkg/errors"
)

// Registry resolves command names against a parsed CLISpec document and
// builds the shell command line for a given set of arguments.
type Registry struct {
	spec *clispec.Spec
	// StrictParamChoice, when true, rejects an argument value that isn't
	// among a Param's declared Choices. The reference client treats
	// ParamChoice as documentation only and never enforces it; StrictParamChoice
	// is an opt-in policy switch for deployments that want the stronger
	// guarantee.
	StrictParamChoice bool
}

// NewRegistry wraps a parsed Spec for invocation.
func NewRegistry(spec *clispec.Spec) *Registry {
	return &Registry{spec: spec}
}

// Lookup returns the Command registered under name.
func (r *Registry) Lookup(name string) (*clispec.Command, error) {
	cmd := r.spec.ByName(name)
	if cmd == nil {
		return nil, errors.New(errors.CommandNotFound, name)
	}
	return cmd, nil
}

// Args is the caller-supplied argument set for one invocation: named
// values for ValueParams, and the set of FlagParam names that are set.
type Args struct {
	Values map[string]string
	Flags  map[string]bool
}

// Build assembles the full shell command line for cmd given args,
// including the trailing return-code sentinel. SVC commands (IsSVC) defer
// positional/no-name parameters to the end of the line. A command that
// declares a "delim" parameter gets "-delim ," (never the caller's own
// value) when it is an SVC command or the caller set the "delim" flag.
// The returned delimiter is always ','.
func (r *Registry) Build(cmd *clispec.Command, args Args) (line string, delim rune, err error) {
	bound := map[string]*clispec.Param{}
	for _, p := range cmd.Params {
		bound[p.Name] = p
	}

	for name := range args.Values {
		if _, ok := bound[name]; !ok {
			return "", 0, errors.New(errors.CommandUnknownArg, name)
		}
	}
	for name := range args.Flags {
		if _, ok := bound[name]; !ok {
			return "", 0, errors.New(errors.CommandUnknownArg, name)
		}
	}

	for _, p := range cmd.Params {
		if !p.Required {
			continue
		}
		if p.IsFlag {
			if !args.Flags[p.Name] {
				return "", 0, errors.New(errors.CommandMissingArg, p.Name)
			}
			continue
		}
		if _, ok := args.Values[p.Name]; !ok {
			return "", 0, errors.New(errors.CommandMissingArg, p.Name)
		}
	}

	if r.StrictParamChoice {
		for _, p := range cmd.Params {
			if len(p.Choices) == 0 {
				continue
			}
			v, ok := args.Values[p.Name]
			if !ok {
				continue
			}
			if !choiceAllowed(p.Choices, v) {
				return "", 0, errors.New(
					errors.CommandInvalidChoice,
					fmt.Sprintf("%s=%q not in %v", p.Name, v, p.Choices),
				)
			}
		}
	}

	delim = ','
	forceComma := args.Flags["delim"]
	delete(args.Flags, "delim")
	_, hasDelim := bound["delim"]
	emitComma := hasDelim && (forceComma || cmd.IsSVC)

	var named, positional []string
	// Stable order: iterate cmd.Params rather than the args maps so the
	// assembled line doesn't vary run to run for identical input.
	for _, p := range cmd.Params {
		if p.Name == "delim" && emitComma {
			continue // emitted below as "-delim ,"
		}
		switch {
		case p.IsFlag:
			if args.Flags[p.Name] && p.Name != "nohdr" {
				named = append(named, p.Flag)
			}
		case p.WithName:
			v, ok := args.Values[p.Name]
			if !ok {
				continue
			}
			named = append(named, p.Flag, clispec.EscapeShellArg(v))
		default:
			v, ok := args.Values[p.Name]
			if !ok {
				continue
			}
			if cmd.IsSVC {
				positional = append(positional, clispec.EscapeShellArg(v))
			} else {
				named = append(named, clispec.EscapeShellArg(v))
			}
		}
	}

	if emitComma {
		named = append(named, "-delim", ",")
	}

	parts := append([]string{cmd.Executable}, named...)
	parts = append(parts, positional...)
	tail := clispec.ReturnCodeTail(r.errorTag())
	line = strings.Join(parts, " ") + " " + tail
	return line, delim, nil
}

// errorTag is always the module's own sentinel: the CLISpec document
// never carries one, despite Errors/Error declaring the array's CMMVC
// error-code prefixes (see clispec.Spec.ErrorPrefixes).
func (r *Registry) errorTag() string {
	return clispec.ErrorTag()
}

func choiceAllowed(choices []string, v string) bool {
	return contains(choices, v)
}

func contains(in []string, v string) bool {
	for _, c := range in {
		if c == v {
			return true
		}
	}
	return false
}
