// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"regexp"
	"strings"

	"github.com/stratastor/logger"
	"github.com/stratastor/svcgate/pkg/errors"
)

// errorCodePattern matches the CMMVC error/warning code embedded in a
// CLI failure's stderr, e.g. "CMMVC6035E" or "CMMVC8545W".
var errorCodePattern = regexp.MustCompile(`CMMVC[0-9]+[EW]`)

const (
	objectExistsCode    = "CMMVC6035E"
	objectNotExistsCode = "CMMVC5753E"
)

// Preprocess classifies a failed CLI invocation the way the array itself
// distinguishes a genuine failure from a message that merely looks like
// one: a warning (code ends in 'W'), an "object already exists" message,
// or — when the caller opted in via skipNotExisting — an "object doesn't
// exist" message on what was meant to be a delete. Only a message none of
// those cover is reported back as a real error.
func Preprocess(err error, l logger.Logger, skipNotExisting bool) (isError bool, code string, original error) {
	stderr := stderrOf(err)
	match := errorCodePattern.FindString(stderr)
	if match == "" {
		// No recognized CMMVC code: this isn't a benign, classifiable
		// message, so it falls into "everything else is a real error".
		if l != nil {
			l.Error("agent: array reported an unrecognized error", "err", err)
		}
		return true, "", err
	}

	if isWarning(match) || match == objectExistsCode {
		if l != nil {
			l.Warn("agent: treating CLI message as non-fatal", "code", match, "err", err)
		}
		return false, match, err
	}

	if skipNotExisting && match == objectNotExistsCode {
		if l != nil {
			l.Warn("agent: target already absent, treating as success", "code", match, "err", err)
		}
		return false, match, err
	}

	if l != nil {
		l.Error("agent: array reported an error", "code", match, "err", err)
	}
	return true, match, err
}

func isWarning(code string) bool {
	return strings.HasSuffix(code, "W")
}

func stderrOf(err error) string {
	if gwErr, ok := err.(*errors.GatewayError); ok {
		if gwErr.Metadata != nil {
			return gwErr.Metadata["stderr"]
		}
		return gwErr.Message
	}
	return err.Error()
}
