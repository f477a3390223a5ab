// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package clispec

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/stratastor/logger"
	"github.com/stratastor/svcgate/pkg/errors"
)

// The wire shape below is ArraySyntax, the real CLISpec document format:
//
//	<ArraySyntax version="2.0">
//	    <ArrayType type="svc"><ArrayVersion type="svc" version="6.3"/></ArrayType>
//	    <Errors><Error>CMMV</Error></Errors>
//	    <Commands>
//	        <Executable name="svcinfo">
//	            <Command name="lscluster">
//	                <Response type="Generic"/>
//	                <ValueParam name="-filtervalue"/>
//	                <FlagParam name="-nohdr"/>
//	                <ValueParam name="cluster_id_or_name" noName="true"/>
//	            </Command>
//	        </Executable>
//	    </Commands>
//	</ArraySyntax>
//
// Commands may also be shipped as a single base64+zlib blob in
// CompressedCommands instead of inline, which wraps a standalone
// <Commands> document the same shape as the Commands element above.

type xmlArraySyntax struct {
	XMLName            xml.Name        `xml:"ArraySyntax"`
	Version            string          `xml:"version,attr"`
	ArrayType          *xmlArrayType   `xml:"ArrayType"`
	Errors             *xmlErrors      `xml:"Errors"`
	Commands           *xmlCommands    `xml:"Commands"`
	CompressedCommands *xmlCompressed  `xml:"CompressedCommands"`
}

type xmlArrayType struct {
	Type     string            `xml:"type,attr"`
	Versions []xmlArrayVersion `xml:"ArrayVersion"`
}

type xmlArrayVersion struct {
	Type    string `xml:"type,attr"`
	Version string `xml:"version,attr"`
}

type xmlErrors struct {
	Error []string `xml:"Error"`
}

type xmlCompressed struct {
	Compression string `xml:"compression,attr"`
	Encoding    string `xml:"encoding,attr"`
	Implements  string `xml:"implements,attr"`
	Text        string `xml:",chardata"`
}

// xmlCommands is both the root document's <Commands> element and the
// document CompressedCommands unwraps to.
type xmlCommands struct {
	Implements string        `xml:"implements,attr"`
	Response   *xmlResponse  `xml:"Response"`
	Executable []xmlExecutable `xml:"Executable"`
}

// xmlExecutable is a command namespace, e.g. "svcinfo" or "svctask". Its
// commands are either nested Command elements, or — when it has none —
// ValueParam/FlagParam/ParamChoice children of its own, making the
// Executable itself directly invokable.
type xmlExecutable struct {
	Name        string           `xml:"name,attr"`
	Description string           `xml:"description,attr"`
	Response    *xmlResponse     `xml:"Response"`
	Command     []xmlCommand     `xml:"Command"`
	ValueParam  []xmlValueParam  `xml:"ValueParam"`
	FlagParam   []xmlFlagParam   `xml:"FlagParam"`
	ParamChoice []xmlParamChoice `xml:"ParamChoice"`
}

type xmlCommand struct {
	Name        string           `xml:"name,attr"`
	Description string           `xml:"description,attr"`
	Response    *xmlResponse     `xml:"Response"`
	ValueParam  []xmlValueParam  `xml:"ValueParam"`
	FlagParam   []xmlFlagParam   `xml:"FlagParam"`
	ParamChoice []xmlParamChoice `xml:"ParamChoice"`
}

type xmlResponse struct {
	Type  string `xml:"type,attr"`
	Param string `xml:"param,attr"`
}

type xmlValueParam struct {
	Name        string   `xml:"name,attr"`
	NoName      string   `xml:"noName,attr"`
	Required    string   `xml:"required,attr"`
	Description string   `xml:"description,attr"`
	Option      []string `xml:"Option"`
}

type xmlFlagParam struct {
	Name        string `xml:"name,attr"`
	Required    string `xml:"required,attr"`
	Description string `xml:"description,attr"`
}

type xmlParamChoice struct {
	Required   string          `xml:"required,attr"`
	ValueParam []xmlValueParam `xml:"ValueParam"`
	FlagParam  []xmlFlagParam  `xml:"FlagParam"`
}

// Parse parses a CLISpec XML document. It accepts only schema version
// "2.0"; any other (or missing) version attribute is rejected so a newer
// document format never gets silently misread.
func Parse(doc []byte) (*Spec, error) {
	return ParseWithLogger(doc, nil)
}

// ParseWithLogger is Parse with a logger attached to the parse. Parsing
// itself logs nothing through l: every anomaly, including an empty
// ParamChoice, is returned as an error and fails the whole document.
func ParseWithLogger(doc []byte, l logger.Logger) (*Spec, error) {
	var x xmlArraySyntax
	if err := xml.Unmarshal(doc, &x); err != nil {
		return nil, errors.Wrap(
			errors.New(errors.CLISpecParseFailed, err.Error()),
			errors.CLISpecParseFailed,
		)
	}

	if x.Version != SchemaVersion {
		return nil, errors.New(
			errors.CLISpecSchemaUnsupported,
			fmt.Sprintf("ArraySyntax version %q is not supported, want %q", x.Version, SchemaVersion),
		)
	}
	if x.ArrayType == nil || strings.TrimSpace(x.ArrayType.Type) == "" {
		return nil, errors.New(errors.CLISpecMissingField, "ArrayType is required")
	}
	if x.Errors == nil || len(x.Errors.Error) == 0 {
		return nil, errors.New(errors.CLISpecMissingField, "Errors is required")
	}

	commands := x.Commands
	if commands == nil && x.CompressedCommands != nil {
		inflated, err := inflateCompressedCommands(*x.CompressedCommands)
		if err != nil {
			return nil, err
		}
		var cc xmlCommands
		if err := xml.Unmarshal(inflated, &cc); err != nil {
			return nil, errors.Wrap(
				errors.New(errors.CLISpecParseFailed, "CompressedCommands: "+err.Error()),
				errors.CLISpecParseFailed,
			)
		}
		if cc.Implements == "" {
			cc.Implements = x.CompressedCommands.Implements
		}
		commands = &cc
	}
	if commands == nil {
		return nil, errors.New(errors.CLISpecMissingField, "Commands or CompressedCommands is required")
	}

	spec := &Spec{
		ArrayType:     x.ArrayType.Type,
		ErrorPrefixes: x.Errors.Error,
	}
	for _, v := range x.ArrayType.Versions {
		spec.ArrayVersions = append(spec.ArrayVersions, ArrayVersion{Type: v.Type, Version: v.Version})
	}

	execs := commands.Executable
	if names := implementsList(commands.Implements); names != nil {
		execs = filterExecutables(execs, names)
	}

	builder := &commandBuilder{spec: spec, taken: map[string]bool{}, log: l}
	if err := builder.addExecutables(execs, commands.Response); err != nil {
		return nil, err
	}

	return spec, nil
}

// implementsList parses a Commands element's "implements" attribute, a
// comma-separated allow-list of Executable names. An empty/absent
// attribute means "no filtering", reported as a nil slice.
func implementsList(raw string) []string {
	var names []string
	for _, n := range strings.Split(raw, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

func filterExecutables(execs []xmlExecutable, names []string) []xmlExecutable {
	allowed := map[string]bool{}
	for _, n := range names {
		allowed[n] = true
	}
	var out []xmlExecutable
	for _, ex := range execs {
		if allowed[strings.TrimSpace(ex.Name)] {
			out = append(out, ex)
		}
	}
	return out
}

func inflateCompressedCommands(c xmlCompressed) ([]byte, error) {
	if c.Compression != "zlib" || c.Encoding != "base64" {
		return nil, errors.New(errors.CLISpecInvalidField, "CompressedCommands format is not supported")
	}
	compressed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.Text))
	if err != nil {
		return nil, errors.New(errors.CLISpecDecompressFailed, "base64: "+err.Error())
	}
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, errors.New(errors.CLISpecDecompressFailed, "zlib: "+err.Error())
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New(errors.CLISpecDecompressFailed, "inflate: "+err.Error())
	}
	return out, nil
}

// commandBuilder walks the Executable/Command tree into the flat
// Spec.Commands list, disambiguating Command.Name collisions (e.g. two
// Executables both declaring a "lsvdisk" Command) the same way the
// reference parser disambiguates CLIBase.cmds keys.
type commandBuilder struct {
	spec  *Spec
	taken map[string]bool
	log   logger.Logger
}

func (b *commandBuilder) addExecutables(execs []xmlExecutable, inherited *xmlResponse) error {
	for _, ex := range execs {
		if strings.TrimSpace(ex.Name) == "" {
			return errors.New(errors.CLISpecMissingField, "Executable name is required")
		}
		isSVC := strings.HasPrefix(ex.Name, "svc")
		resp := ex.Response
		if resp == nil {
			resp = inherited
		}

		if len(ex.Command) > 0 {
			for _, c := range ex.Command {
				if err := b.addCommand(ex.Name, isSVC, c, resp); err != nil {
					return err
				}
			}
			continue
		}

		// No nested Command elements: the Executable is itself
		// directly invokable, carrying its own params.
		cmd := &Command{
			Name:       ex.Name,
			Executable: ex.Name,
			IsSVC:      isSVC,
		}
		if resp != nil {
			cmd.ResponseType = resp.Type
			cmd.ResponseParam = resp.Param
		}
		if err := b.addParams(cmd, ex.ValueParam, ex.FlagParam, ex.ParamChoice); err != nil {
			return err
		}
		if err := b.register(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (b *commandBuilder) addCommand(execName string, isSVC bool, c xmlCommand, inherited *xmlResponse) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New(errors.CLISpecMissingField, fmt.Sprintf("Executable %q: Command name is required", execName))
	}

	resp := c.Response
	if resp == nil {
		resp = inherited
	}

	cmd := &Command{
		Name:       c.Name,
		Executable: execName + " " + c.Name,
		IsSVC:      isSVC,
	}
	if resp != nil {
		cmd.ResponseType = resp.Type
		cmd.ResponseParam = resp.Param
	}
	if err := b.addParams(cmd, c.ValueParam, c.FlagParam, c.ParamChoice); err != nil {
		return err
	}
	return b.register(cmd)
}

func (b *commandBuilder) addParams(cmd *Command, values []xmlValueParam, flags []xmlFlagParam, choices []xmlParamChoice) error {
	for _, v := range values {
		p, err := parseValueParam(v)
		if err != nil {
			return err
		}
		cmd.Params = append(cmd.Params, p)
	}
	for _, f := range flags {
		p, err := parseFlagParam(f)
		if err != nil {
			return err
		}
		cmd.Params = append(cmd.Params, p)
	}
	for _, ch := range choices {
		pc, err := b.addParamChoice(cmd, ch)
		if err != nil {
			return err
		}
		cmd.ParamChoices = append(cmd.ParamChoices, pc)
	}
	return nil
}

// addParamChoice parses a ParamChoice group: its ValueParam/FlagParam
// children become ordinary entries in cmd.Params (forced optional, same
// as the reference CLIParamChoice children), plus a ParamChoice record
// naming them for documentation/enforcement purposes.
func (b *commandBuilder) addParamChoice(cmd *Command, ch xmlParamChoice) (*ParamChoice, error) {
	pc := &ParamChoice{Required: ch.Required == "true" || ch.Required == "1"}

	for _, v := range ch.ValueParam {
		p, err := parseValueParam(v)
		if err != nil {
			return nil, err
		}
		p.Required = false
		cmd.Params = append(cmd.Params, p)
		pc.ParamNames = append(pc.ParamNames, p.Name)
	}
	for _, f := range ch.FlagParam {
		p, err := parseFlagParam(f)
		if err != nil {
			return nil, err
		}
		p.Required = false
		cmd.Params = append(cmd.Params, p)
		pc.ParamNames = append(pc.ParamNames, p.Name)
	}
	if len(pc.ParamNames) == 0 {
		return nil, errors.New(errors.CLISpecMissingField, "ParamChoice should have at least one child element")
	}
	return pc, nil
}

func (b *commandBuilder) register(cmd *Command) error {
	canon, err := resolveKeyConflict(canonicalName(cmd.Name), b.taken)
	if err != nil {
		return err
	}
	b.taken[canon] = true
	cmd.CanonicalName = canon
	b.spec.Commands = append(b.spec.Commands, cmd)
	return nil
}

func parseValueParam(v xmlValueParam) (*Param, error) {
	if strings.TrimSpace(v.Name) == "" {
		return nil, errors.New(errors.CLISpecMissingField, "ValueParam name is required")
	}
	noName := v.NoName == "true" || v.NoName == "1"
	p := &Param{
		Name:     paramKey(v.Name),
		Flag:     v.Name,
		IsFlag:   false,
		WithName: !noName,
		Required: v.Required == "true" || v.Required == "1",
		Choices:  v.Option,
	}
	return p, nil
}

func parseFlagParam(f xmlFlagParam) (*Param, error) {
	if strings.TrimSpace(f.Name) == "" {
		return nil, errors.New(errors.CLISpecMissingField, "FlagParam name is required")
	}
	p := &Param{
		Name:     paramKey(f.Name),
		Flag:     f.Name,
		IsFlag:   true,
		WithName: true,
		Required: f.Required == "true" || f.Required == "1",
	}
	return p, nil
}

// paramKey derives the canonical command.Args map key from a param's raw
// XML name, e.g. "-filtervalue" becomes "filtervalue" and
// "cluster_id_or_name" is unchanged, mirroring the reference parser's
// canonical_name(realname, replace_char='').
func paramKey(raw string) string {
	raw = strings.TrimSpace(raw)
	return invalidCharPattern.ReplaceAllString(raw, "")
}
