// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package transport is the SSH client used to talk to a single storage
// array. One Session owns exactly one authenticated SSH connection and
// opens a fresh channel per command, the same way the reference client
// never multiplexes commands onto a shared channel.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/stratastor/logger"
	"github.com/stratastor/svcgate/pkg/errors"
)

// Config describes how to reach and authenticate against one array.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	// PrivateKey, if set, is used instead of Password.
	PrivateKey []byte

	// ConnectTimeout bounds the initial TCP+handshake.
	ConnectTimeout time.Duration
	// CommandTimeout bounds a single SendCommand call when the caller's
	// context carries no deadline.
	CommandTimeout time.Duration

	// KnownHostsFile, if set, is checked/updated for host key
	// verification: an unknown host's key is recorded and accepted, a
	// changed key is rejected. Empty means any host key is accepted
	// without being checked or recorded.
	KnownHostsFile string
}

func (c Config) addr() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", port))
}

// Session is one authenticated connection to one array. It is not safe
// for concurrent SendCommand calls from multiple goroutines; pool.Pool is
// what provides concurrency across many Sessions.
type Session struct {
	cfg    Config
	client *ssh.Client
	log    logger.Logger
}

// Dial opens a new authenticated SSH session.
func Dial(cfg Config, l logger.Logger) (*Session, error) {
	s := &Session{cfg: cfg, log: l}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) connect() error {
	clientCfg, err := s.clientConfig()
	if err != nil {
		return err
	}

	timeout := s.cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	clientCfg.Timeout = timeout

	client, err := ssh.Dial("tcp", s.cfg.addr(), clientCfg)
	if err != nil {
		return classifyDialError(err)
	}
	s.client = client
	return nil
}

func (s *Session) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if len(s.cfg.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(s.cfg.PrivateKey)
		if err != nil {
			return nil, errors.New(errors.TransportAuthFailed, "invalid private key: "+err.Error())
		}
		auth = append(auth, ssh.PublicKeys(signer))
	} else {
		auth = append(auth, ssh.Password(s.cfg.Password))
	}

	hostKeyCallback, err := s.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	return &ssh.ClientConfig{
		User:            s.cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
	}, nil
}

// hostKeyCallback returns a callback that verifies against
// KnownHostsFile, creating it (and its directory) on first use so the
// first connection to a given array trusts-and-records, the same
// auto_add behavior the reference client defaults to.
func (s *Session) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if s.cfg.KnownHostsFile == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}

	if err := os.MkdirAll(filepath.Dir(s.cfg.KnownHostsFile), 0700); err != nil {
		return nil, errors.New(errors.TransportConnectFailed, "known_hosts dir: "+err.Error())
	}
	if _, err := os.Stat(s.cfg.KnownHostsFile); os.IsNotExist(err) {
		f, err := os.OpenFile(s.cfg.KnownHostsFile, os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, errors.New(errors.TransportConnectFailed, "known_hosts create: "+err.Error())
		}
		f.Close()
	}

	cb, err := knownhosts.New(s.cfg.KnownHostsFile)
	if err != nil {
		return nil, errors.New(errors.TransportConnectFailed, "known_hosts: "+err.Error())
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := cb(hostname, remote, key)
		if err == nil {
			return nil
		}
		var keyErr *knownhosts.KeyError
		if ok := asKeyError(err, &keyErr); ok && len(keyErr.Want) == 0 {
			// Unknown host: append and accept, mirroring auto_add.
			return appendKnownHost(s.cfg.KnownHostsFile, hostname, key)
		}
		return errors.New(errors.TransportHostKeyMismatch, err.Error())
	}, nil
}

func asKeyError(err error, target **knownhosts.KeyError) bool {
	ke, ok := err.(*knownhosts.KeyError)
	if ok {
		*target = ke
	}
	return ok
}

func appendKnownHost(path, hostname string, key ssh.PublicKey) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return errors.New(errors.TransportConnectFailed, "known_hosts append: "+err.Error())
	}
	defer f.Close()
	line := knownhosts.Line([]string{hostname}, key) + "\n"
	_, err = f.WriteString(line)
	return err
}

// SendCommand runs a single command line on a fresh channel and returns
// its stdout and stderr. On a channel timeout, the session reconnects
// before returning the timeout error, so the next SendCommand on this
// Session doesn't inherit a half-dead connection.
func (s *Session) SendCommand(ctx context.Context, line string) (stdout, stderr string, err error) {
	if _, ok := ctx.Deadline(); !ok {
		timeout := s.cfg.CommandTimeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	session, err := s.client.NewSession()
	if err != nil {
		return "", "", errors.New(errors.TransportChannelFailed, err.Error())
	}
	defer session.Close()

	var outBuf, errBuf bytes.Buffer
	session.Stdout = &outBuf
	session.Stderr = &errBuf

	done := make(chan error, 1)
	go func() {
		done <- session.Run(line)
	}()

	select {
	case runErr := <-done:
		if runErr != nil {
			if _, ok := runErr.(*ssh.ExitError); ok {
				// Non-zero exit is a normal outcome: the caller inspects
				// the sentinel tail in stdout, not this error.
				return outBuf.String(), errBuf.String(), nil
			}
			return outBuf.String(), errBuf.String(), errors.New(errors.TransportChannelFailed, runErr.Error())
		}
		return outBuf.String(), errBuf.String(), nil
	case <-ctx.Done():
		_ = session.Close()
		if reconnectErr := s.reconnect(); reconnectErr != nil {
			if s.log != nil {
				s.log.Warn("transport: reconnect after timeout failed", "err", reconnectErr)
			}
		}
		return "", "", errors.New(errors.TransportTimeout, ctx.Err().Error())
	}
}

// reconnect closes and reopens the underlying SSH client. Mirrors the
// reference client's behavior of reconnecting immediately on a timeout
// rather than leaving the caller to decide.
func (s *Session) reconnect() error {
	if s.client != nil {
		_ = s.client.Close()
	}
	return s.connect()
}

// Alive reports whether the underlying connection still answers a
// keepalive request. Used by pool.Pool on checkout to decide whether to
// hand out this Session or replace it.
func (s *Session) Alive() bool {
	if s.client == nil {
		return false
	}
	_, _, err := s.client.SendRequest("keepalive@svcgate", true, nil)
	return err == nil
}

// Close tears down the underlying connection.
func (s *Session) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func classifyDialError(err error) error {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return errors.New(errors.TransportTimeout, err.Error())
	}
	if _, ok := err.(*net.DNSError); ok {
		return errors.New(errors.TransportHostUnreachable, err.Error())
	}
	msg := err.Error()
	switch {
	case containsAny(msg, "SSH host key did not match"):
		// The host key callback's own error, wrapped by the handshake.
		return errors.New(errors.TransportHostKeyMismatch, msg)
	case containsAny(msg, "unable to authenticate", "handshake failed"):
		return errors.New(errors.TransportAuthFailed, msg)
	default:
		return errors.New(errors.TransportConnectFailed, msg)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
