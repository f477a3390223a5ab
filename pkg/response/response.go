// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package response turns the free-text stdout of an array CLI command into
// structured records. Unlike a JSON-speaking tool, the array CLI emits a
// handful of different textual shapes depending on the command family
// (comma-delimited tables, colon-delimited key/value blocks, fixed-column
// route dumps); which shape to expect is declared per command in the
// CLISpec document and selected here at parse time.
package response

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stratastor/svcgate/pkg/errors"
)

// Record is one parsed row: field name to either a scalar string or,
// once a repeated field has been merged across several rows/blocks, a
// []string. Callers that only expect a scalar use GetString.
type Record map[string]any

// GetString returns key's value as a string. A []string value returns
// its first element; a missing key returns "".
func (r Record) GetString(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// Kind names the response shape a command's output should be parsed as.
type Kind string

const (
	KindGeneric           Kind = "Generic"
	KindLsRoute           Kind = "LsRoute"
	KindMetadataEntry     Kind = "MetadataEntry"
	KindMetadataEntryList Kind = "MetadataEntryList"
	KindMetadataDbList    Kind = "MetadataDbList"
	KindLsMetadataVdisk   Kind = "LsMetadataVdisk"
)

// loginFailureSentinel is the header CMMVC emits, as the sole header line,
// when the supplied credentials were rejected by the array itself rather
// than by the SSH transport.
const loginFailureSentinel = "CMMVC7017E Login has failed"

// CLIFailure checks stdout for the sentinel tag appended to every invoked
// command ("|| echo <tag> $?") and, if present, strips it and reports the
// CLI's own return code. ok is false when the tag wasn't found at all, in
// which case body is stdout unchanged and rc is 0; command.Invoke logs a
// warning and parses that body as a successful response.
func CLIFailure(stdout, tag string) (body string, rc int, ok bool) {
	lines := strings.Split(stdout, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, tag) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, tag))
		n, ok2 := firstSignedInt(rest)
		if !ok2 {
			continue
		}
		body = strings.Join(lines[:i], "\n")
		return body, n, true
	}
	return stdout, 0, false
}

// firstSignedInt returns the first whitespace-separated, optionally
// signed integer token in s.
func firstSignedInt(s string) (int, bool) {
	for _, f := range strings.Fields(s) {
		if n, err := strconv.Atoi(f); err == nil {
			return n, true
		}
	}
	return 0, false
}

// CLIFailureError builds the exact error message the reference CLI client
// produces for a failed invocation.
func CLIFailureError(rc int, stderr string) *errors.GatewayError {
	msg := fmt.Sprintf("CLI failure. Return code is %d. Error message is %q", rc, stderr)
	return errors.New(errors.ResponseCLIFailure, msg).
		WithMetadata("return_code", strconv.Itoa(rc)).
		WithMetadata("stderr", stderr)
}

// Parse dispatches body to the shape-specific parser named by kind and
// wraps the result as a CLIResponse.
func Parse(kind Kind, body string, delim rune) (CLIResponse, error) {
	if isLoginFailure(body) {
		return CLIResponse{}, errors.New(errors.ResponseLoginFailed, loginFailureSentinel).
			WithMetadata("return_code", "1")
	}

	var (
		recs []Record
		err  error
	)
	switch kind {
	case KindGeneric, "":
		recs, err = parseGeneric(body, delim)
	case KindLsRoute:
		recs, err = parseLsRoute(body)
	case KindMetadataEntry:
		var rec Record
		rec, err = parseMetadataEntry(body)
		if err == nil {
			recs = []Record{rec}
		}
	case KindMetadataEntryList:
		recs, err = parseLabeledColumns(body, 3)
	case KindLsMetadataVdisk:
		recs = []Record{singleBlockRecord(body, ' ')}
	case KindMetadataDbList:
		recs, err = parseLabeledColumns(body, 1)
	default:
		err = errors.New(errors.CLISpecResponseTypeUnknown, string(kind))
	}
	if err != nil {
		return CLIResponse{}, err
	}
	return CLIResponse{Records: recs}, nil
}

func isLoginFailure(body string) bool {
	lines := strings.SplitN(body, "\n", 2)
	if len(lines) == 0 {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(lines[0]), loginFailureSentinel)
}

// splitLines splits body into lines, dropping any that are blank after
// trimming. Used where blank lines carry no structural meaning (e.g. a
// single labeled-column table).
func splitLines(body string) []string {
	var out []string
	for _, l := range rawLines(body) {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

func rawLines(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.Split(body, "\n")
}
