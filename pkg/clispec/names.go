// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package clispec

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/stratastor/svcgate/pkg/errors"
)

// invalidCharPattern matches anything that can't appear in a canonical
// command or parameter identifier.
var invalidCharPattern = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// maxCanonicalNameLen bounds how much of the original name survives
// canonicalization; long CLI command descriptions get truncated rather
// than producing unwieldy identifiers.
const maxCanonicalNameLen = 50

// suffixAlphabet is exhausted, one character at a time, to disambiguate
// canonical names that collide after normalization. 62 symbols means 62
// collisions can be resolved for the same base name; a 63rd is a fatal
// CLISpec error since it signals a spec document too degenerate to trust.
const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// errorTag is appended to a shell command's stdout so a failure can be
// distinguished from pathological output containing "0" on its own line.
const errorTag = "error411049e268734c0c996d65b3854f1113"

// retryTime bounds how many attempts (the first one included) a command
// gets when the array reports its metadata is busy (CMMVC return code 11).
const retryTime = 3

// metadataBusyCode is the CLI return code meaning "try again shortly".
const metadataBusyCode = 11

// canonicalName normalizes an arbitrary command or parameter name into a
// safe Go/shell identifier: trim, truncate, replace anything that isn't
// alphanumeric-or-underscore with '_', and prefix with 'C' if the result
// would otherwise start with a digit or underscore.
func canonicalName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > maxCanonicalNameLen {
		name = name[:maxCanonicalNameLen]
	}
	name = invalidCharPattern.ReplaceAllString(name, "_")
	if name == "" {
		return "C"
	}
	r := rune(name[0])
	if unicode.IsDigit(r) || r == '_' {
		return "C" + name
	}
	return name
}

// resolveKeyConflict disambiguates name against the set of names already
// taken by appending "_" plus a character from suffixAlphabet, advancing
// through the alphabet until a free name is found.
func resolveKeyConflict(name string, taken map[string]bool) (string, error) {
	if !taken[name] {
		return name, nil
	}
	for i := 0; i < len(suffixAlphabet); i++ {
		candidate := fmt.Sprintf("%s_%c", name, suffixAlphabet[i])
		if !taken[candidate] {
			return candidate, nil
		}
	}
	return "", errors.New(
		errors.CLISpecNameCollision,
		fmt.Sprintf("exhausted %d-symbol suffix alphabet disambiguating %q", len(suffixAlphabet), name),
	)
}

// EscapeShellArg quotes s for inclusion in a shell command line, mirroring
// the CLISpec reference escaping: an empty value or one that's already
// safe (pure alphanumeric) passes through untouched; anything else is
// single-quoted, but only the quote characters actually missing at either
// end are added, so an already-quoted value is never double-wrapped.
func EscapeShellArg(s string) string {
	if s == "" || isAlnum(s) {
		return s
	}
	out := s
	if !strings.HasPrefix(out, "'") {
		out = "'" + out
	}
	if !strings.HasSuffix(out, "'") {
		out = out + "'"
	}
	return out
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ReturnCodeTail builds the shell suffix appended to every assembled
// command so a non-zero exit code can be detected even though the
// command's own stdout/stderr may not mention it: "|| echo <tag> $?".
func ReturnCodeTail(tag string) string {
	return fmt.Sprintf("|| echo %s $?", tag)
}

// ErrorTag is the sentinel tag appended to every assembled command; a Spec
// document carries no tag of its own, so this one is always used.
func ErrorTag() string { return errorTag }

// RetryTime is the default number of attempts for a busy-metadata retry.
func RetryTime() int { return retryTime }

// MetadataBusyCode is the CLI return code that triggers a retry.
func MetadataBusyCode() int { return metadataBusyCode }
