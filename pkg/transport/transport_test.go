// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	gwerrors "github.com/stratastor/svcgate/pkg/errors"
)

func TestConfig_Addr_DefaultsToPort22(t *testing.T) {
	c := Config{Host: "10.0.0.1"}
	assert.Equal(t, "10.0.0.1:22", c.addr())
}

func TestConfig_Addr_ExplicitPort(t *testing.T) {
	c := Config{Host: "10.0.0.1", Port: 2222}
	assert.Equal(t, "10.0.0.1:2222", c.addr())
}

func TestClassifyDialError_DNSFailure(t *testing.T) {
	err := &net.DNSError{Err: "no such host", Name: "bogus.invalid"}
	got := classifyDialError(err)
	code, ok := gwerrors.GetCode(got)
	assert.True(t, ok)
	assert.Equal(t, gwerrors.ErrorCode(gwerrors.TransportHostUnreachable), code)
}

func TestClassifyDialError_AuthFailure(t *testing.T) {
	got := classifyDialError(errors.New("ssh: unable to authenticate"))
	code, ok := gwerrors.GetCode(got)
	assert.True(t, ok)
	assert.Equal(t, gwerrors.ErrorCode(gwerrors.TransportAuthFailed), code)
}

func TestClassifyDialError_Generic(t *testing.T) {
	got := classifyDialError(errors.New("connection refused"))
	code, ok := gwerrors.GetCode(got)
	assert.True(t, ok)
	assert.Equal(t, gwerrors.ErrorCode(gwerrors.TransportConnectFailed), code)
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("ssh: unable to authenticate, attempt 1", "unable to authenticate"))
	assert.False(t, containsAny("connection refused", "unable to authenticate", "handshake failed"))
}
