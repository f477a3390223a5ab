// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratastor/svcgate/pkg/clispec"
)

type scriptedSender struct {
	outputs []string
	calls   int
}

func (s *scriptedSender) SendCommand(ctx context.Context, line string) (string, string, error) {
	out := s.outputs[s.calls]
	s.calls++
	return out, "", nil
}

func okOutput(tag, body string) string {
	return body + "\n" + tag + " 0"
}

func failOutput(tag string, rc int) string {
	return "some stderr text\n" + tag + " " + fmt.Sprintf("%d", rc)
}

func TestInvoke_Success(t *testing.T) {
	spec := testSpec()
	r := NewRegistry(spec)
	sender := &scriptedSender{outputs: []string{okOutput(clispec.ErrorTag(), "id,name\n1,foo")}}

	resp, err := r.Invoke(context.Background(), sender, nil, "lshost", Args{})
	require.NoError(t, err)
	recs := resp.AsList()
	require.Len(t, recs, 1)
	assert.Equal(t, "1", recs[0]["id"])
}

func TestInvoke_RetriesOnBusyMetadata(t *testing.T) {
	spec := testSpec()
	r := NewRegistry(spec)
	sender := &scriptedSender{outputs: []string{
		failOutput(clispec.ErrorTag(), clispec.MetadataBusyCode()),
		okOutput(clispec.ErrorTag(), "id: 1"),
	}}

	resp, err := r.Invoke(context.Background(), sender, nil, "mkhost", Args{
		Values: map[string]string{"name": "h1", "hbawwpn": "10000090FA"},
	})
	require.NoError(t, err)
	recs := resp.AsList()
	require.Len(t, recs, 1)
	assert.Equal(t, "1", recs[0]["id"])
	assert.Equal(t, 2, sender.calls)
}

func TestInvoke_GivesUpAfterRetryBudget(t *testing.T) {
	spec := testSpec()
	r := NewRegistry(spec)
	busy := clispec.MetadataBusyCode()
	sender := &scriptedSender{outputs: []string{
		failOutput(clispec.ErrorTag(), busy),
		failOutput(clispec.ErrorTag(), busy),
		failOutput(clispec.ErrorTag(), busy),
	}}

	_, err := r.Invoke(context.Background(), sender, nil, "mkhost", Args{
		Values: map[string]string{"name": "h1", "hbawwpn": "10000090FA"},
	})
	assert.Error(t, err)
	assert.Equal(t, clispec.RetryTime(), sender.calls)
}

func TestInvoke_NonBusyFailureReturnsImmediately(t *testing.T) {
	spec := testSpec()
	r := NewRegistry(spec)
	sender := &scriptedSender{outputs: []string{failOutput(clispec.ErrorTag(), 1)}}

	_, err := r.Invoke(context.Background(), sender, nil, "mkhost", Args{
		Values: map[string]string{"name": "h1", "hbawwpn": "10000090FA"},
	})
	assert.Error(t, err)
	assert.Equal(t, 1, sender.calls)
}
