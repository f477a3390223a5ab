// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/stratastor/svcgate/pkg/clispec"
	"github.com/stratastor/svcgate/pkg/transport"
)

const testArraySpecXML = `<?xml version="1.0" encoding="UTF-8"?>
<ArraySyntax version="2.0">
    <ArrayType type="svc"><ArrayVersion type="svc" version="6.3"/></ArrayType>
    <Errors><Error>CMMV</Error></Errors>
    <Commands>
        <Executable name="svcinfo">
            <Command name="lshost">
                <Response type="Generic"/>
                <ValueParam name="-filtervalue"/>
                <FlagParam name="-nohdr"/>
            </Command>
        </Executable>
        <Executable name="svctask">
            <Command name="mkhost">
                <Response type="MetadataEntry"/>
                <ValueParam name="-name" required="true"/>
                <ValueParam name="-fcwwpn"/>
                <ValueParam name="-iscsiname"/>
            </Command>
            <Command name="rmhost">
                <Response type="Generic"/>
                <ValueParam name="name" noName="true" required="true"/>
            </Command>
        </Executable>
    </Commands>
</ArraySyntax>`

// fakeArray is a minimal in-process SSH server standing in for a real
// storage array: it accepts any password, answers the "keepalive@svcgate"
// global request the same way transport.Session.Alive probes a cached
// connection, and replies to every exec request with either the bundled
// CLISpec (for catxmlspec) or a bare return-code sentinel line (for
// everything else). Connections and execs are counted so a test can
// assert on whether a session was redialed or reused.
type fakeArray struct {
	addr string
	ln   net.Listener

	dials int32
	execs int32
}

func startFakeArray(t *testing.T) *fakeArray {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(ssh.ConnMetadata, []byte) (*ssh.Permissions, error) {
			return nil, nil
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	fa := &fakeArray{addr: ln.Addr().String(), ln: ln}

	go func() {
		for {
			nConn, err := ln.Accept()
			if err != nil {
				return
			}
			atomic.AddInt32(&fa.dials, 1)
			go fa.handleConn(nConn, cfg)
		}
	}()

	t.Cleanup(func() { _ = ln.Close() })
	return fa
}

func (fa *fakeArray) handleConn(nConn net.Conn, cfg *ssh.ServerConfig) {
	conn, chans, reqs, err := ssh.NewServerConn(nConn, cfg)
	if err != nil {
		return
	}
	defer conn.Close()

	go func() {
		for req := range reqs {
			if req.WantReply {
				_ = req.Reply(req.Type == "keepalive@svcgate", nil)
			}
		}
	}()

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		channel, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		go fa.handleSession(channel, requests)
	}
}

func (fa *fakeArray) handleSession(channel ssh.Channel, requests <-chan *ssh.Request) {
	defer channel.Close()
	for req := range requests {
		if req.Type != "exec" {
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
			continue
		}
		atomic.AddInt32(&fa.execs, 1)
		cmd := string(req.Payload[4:])
		_ = req.Reply(true, nil)

		_, _ = channel.Write([]byte(fa.output(cmd)))
		_, _ = channel.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{0}))
		return
	}
}

func (fa *fakeArray) output(cmd string) string {
	if strings.Contains(cmd, "catxmlspec") {
		return testArraySpecXML
	}
	return clispec.ErrorTag() + " 0\n"
}

func (fa *fakeArray) dialCount() int { return int(atomic.LoadInt32(&fa.dials)) }
func (fa *fakeArray) execCount() int { return int(atomic.LoadInt32(&fa.execs)) }

func (fa *fakeArray) hostPort(t *testing.T) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(fa.addr)
	require.NoError(t, err)
	var port int
	_, err = fmt.Sscanf(portStr, "%d", &port)
	require.NoError(t, err)
	return host, port
}

// TestAgent_SharedTransportAcrossSequentialCalls exercises Scenario E:
// two sequential calls against the same Agent share one dialed SSH
// connection rather than opening a fresh one per call. A fake Dialer
// can't demonstrate this (pool_test.go's zero-value Session is never
// Alive(), so it is always redialed); this uses a real, in-process SSH
// server so transport.Session.Alive's keepalive probe has a genuine
// connection to answer it.
func TestAgent_SharedTransportAcrossSequentialCalls(t *testing.T) {
	fa := startFakeArray(t)
	host, port := fa.hostPort(t)

	reg := NewRegistry(SpecConfig{}, nil)
	a, err := reg.Get(host, "admin", "secret", transport.Config{
		Port:           port,
		ConnectTimeout: 5 * time.Second,
		CommandTimeout: 5 * time.Second,
	}, PoolConfig{MinSize: 1, MaxSize: 2})
	require.NoError(t, err)

	ctx := context.Background()

	_, err = a.GetHosts(ctx, "")
	require.NoError(t, err)
	_, err = a.GetHosts(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 1, fa.dialCount(), "both calls should share one dialed connection")
	// catxmlspec once (cached via ensureSpec) plus one lshost per call.
	assert.Equal(t, 3, fa.execCount())
}

// TestAgent_CreateHost_SingleMkhostCallWithCommaJoinedPorts confirms
// CreateHost issues exactly one mkhost invocation with comma-joined FC
// ports rather than a separate call per port, matching
// storage_agent.py's create_host.
func TestAgent_CreateHost_SingleMkhostCallWithCommaJoinedPorts(t *testing.T) {
	fa := startFakeArray(t)
	host, port := fa.hostPort(t)

	reg := NewRegistry(SpecConfig{}, nil)
	a, err := reg.Get(host, "admin", "secret", transport.Config{
		Port:           port,
		ConnectTimeout: 5 * time.Second,
		CommandTimeout: 5 * time.Second,
	}, PoolConfig{MinSize: 1, MaxSize: 2})
	require.NoError(t, err)

	ctx := context.Background()
	err = a.CreateHost(ctx, HostSpec{Name: "h1", FCPorts: []string{"10000090FA1B2C3D", "10000090FA1B2C3E"}})
	require.NoError(t, err)

	// catxmlspec once plus exactly one mkhost call, never a second
	// per-port call.
	assert.Equal(t, 2, fa.execCount())
}
