// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stratastor/svcgate/pkg/response"
)

func TestPreprocess_ObjectAlreadyExists_NotAnError(t *testing.T) {
	err := response.CLIFailureError(1, "CMMVC6035E The action failed because the object already exists.")
	isErr, code, _ := Preprocess(err, nil, false)
	assert.False(t, isErr)
	assert.Equal(t, "CMMVC6035E", code)
}

func TestPreprocess_ObjectNotExists_SkippedOnDelete(t *testing.T) {
	err := response.CLIFailureError(1, "CMMVC5753E The specified object does not exist.")
	isErr, code, _ := Preprocess(err, nil, true)
	assert.False(t, isErr)
	assert.Equal(t, "CMMVC5753E", code)
}

func TestPreprocess_ObjectNotExists_IsErrorWhenNotSkipped(t *testing.T) {
	err := response.CLIFailureError(1, "CMMVC5753E The specified object does not exist.")
	isErr, code, _ := Preprocess(err, nil, false)
	assert.True(t, isErr)
	assert.Equal(t, "CMMVC5753E", code)
}

func TestPreprocess_Warning_NotAnError(t *testing.T) {
	err := response.CLIFailureError(1, "CMMVC8545W I/O group has a node with a hardware boot error.")
	isErr, code, _ := Preprocess(err, nil, false)
	assert.False(t, isErr)
	assert.Equal(t, "CMMVC8545W", code)
}

func TestPreprocess_GenuineError_IsError(t *testing.T) {
	err := response.CLIFailureError(1, "CMMVC5754E The command failed because the storage pool was not found.")
	isErr, code, _ := Preprocess(err, nil, false)
	assert.True(t, isErr)
	assert.Equal(t, "CMMVC5754E", code)
}

func TestPreprocess_NoCode_IsError(t *testing.T) {
	err := response.CLIFailureError(1, "connection reset by peer")
	isErr, code, orig := Preprocess(err, nil, false)
	assert.True(t, isErr)
	assert.Equal(t, "", code)
	assert.Equal(t, err, orig)
}
