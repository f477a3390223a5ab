// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package clispec parses the self-describing CLISpec XML documents that
// declare, per array firmware family, which CLI commands exist, what
// arguments they take and how their output should be parsed. A CLISpec
// document is the only thing that differs between array families; none
// of the code that consumes a parsed Spec knows anything about a specific
// firmware.
package clispec

// SchemaVersion is the only CLISpec schema this parser understands. Older
// or newer "version" attributes on the root ArraySyntax element are
// rejected rather than guessed at.
const SchemaVersion = "2.0"

// Spec is a fully parsed CLISpec document: the array family it targets,
// the error-code prefixes the array reports failures with, and the
// commands it declares.
type Spec struct {
	// ArrayType is the array family the document was written for, e.g.
	// "svc", taken from ArrayType's "type" attribute.
	ArrayType string
	// ArrayVersions lists every (type, version) pair the document
	// declares itself compatible with, taken from ArrayType's nested
	// ArrayVersion children.
	ArrayVersions []ArrayVersion
	// ErrorPrefixes are the CLI error/warning code prefixes (e.g.
	// "CMMV") the array reports failures with, taken from the
	// document's Errors/Error elements. This is unrelated to ErrorTag:
	// ErrorPrefixes is part of the wire document, while ErrorTag is a
	// fixed sentinel this module appends itself and never reads from
	// a spec document.
	ErrorPrefixes []string
	Commands      []*Command
}

// ArrayVersion is one (type, version) pair an ArrayType declares.
type ArrayVersion struct {
	Type    string
	Version string
}

// ByName returns the command registered under name, or nil.
func (s *Spec) ByName(name string) *Command {
	for _, c := range s.Commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Command describes one invocable CLI command: the literal command-line
// prefix that invokes it, its declared parameters and the shape its
// response should be parsed as.
type Command struct {
	// Name is the bare identifier callers use to invoke the command
	// (the Command element's own "name" attribute, e.g. "lscluster"). It
	// is not disambiguated: when two commands share a Name, only their
	// CanonicalName differs, and a lookup by Name finds the first one.
	Name string
	// CanonicalName is Name normalized to a safe identifier (see
	// canonicalName), with a suffix appended on collision.
	CanonicalName string
	// Executable is the literal CLI invocation prefix: the owning
	// Executable's namespace name followed by Name, e.g.
	// "svcinfo lscluster".
	Executable string
	// IsSVC marks commands whose argument ordering and stray-flag
	// handling follow the svcinfo/svctask conventions (see
	// command.Registry.Build for what that implies): it is true
	// whenever the owning Executable's namespace name starts with
	// "svc".
	IsSVC  bool
	Params []*Param
	// ParamChoices records the document's ParamChoice groupings. Their
	// member Params are also present, individually, in Params above;
	// ParamChoices is metadata only; see ParamChoice.
	ParamChoices []*ParamChoice
	ResponseType string
	// ResponseParam is the Response element's optional "param"
	// attribute, used by some commands to select a per-invocation
	// response shape (e.g. svcinfo commands that respond differently
	// when filtered down to a single object).
	ResponseParam string
}

// Param describes one argument a Command accepts.
type Param struct {
	// Name is the canonical key callers use in command.Args, derived
	// from Flag by stripping everything that isn't alphanumeric or an
	// underscore (so "-filtervalue" becomes "filtervalue").
	Name string
	// Flag is the literal text spliced into the command line, e.g.
	// "-filtervalue". For a ValueParam this doubles as the parameter's
	// raw name; for a positional ValueParam (NoName) it still holds the
	// raw name but is not emitted: only the caller's value is.
	Flag string
	// IsFlag marks a boolean switch that takes no value (FlagParam).
	IsFlag bool
	// WithName is false for a ValueParam declared with noName="true":
	// its value is passed positionally rather than as "-flag value".
	WithName bool
	Required bool
	// Choices, when non-empty, names the closed set of legal values
	// declared via Option children. Per the reference implementation
	// this is documentation only by default; see
	// command.Registry.StrictParamChoice.
	Choices []string
}

// ParamChoice records a ParamChoice element: a set of parameters the
// document declares mutually exclusive (or, if Required, exactly one of
// which must be supplied). The reference parser collects this purely as
// documentation and never enforces it at invocation time, and neither
// does this one.
type ParamChoice struct {
	Required   bool
	ParamNames []string
}
