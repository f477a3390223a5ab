// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIFailure_Success(t *testing.T) {
	stdout := "id,name\n1,foo\nerror411049e268734c0c996d65b3854f1113 0\n"
	body, rc, ok := CLIFailure(stdout, "error411049e268734c0c996d65b3854f1113")
	require.True(t, ok)
	assert.Equal(t, 0, rc)
	assert.Equal(t, "id,name\n1,foo", body)
}

func TestCLIFailure_NonZero(t *testing.T) {
	stdout := "CMMVC5753E object does not exist\nerror411049e268734c0c996d65b3854f1113 1\n"
	body, rc, ok := CLIFailure(stdout, "error411049e268734c0c996d65b3854f1113")
	require.True(t, ok)
	assert.Equal(t, 1, rc)
	assert.Equal(t, "CMMVC5753E object does not exist", body)
}

func TestCLIFailure_TagMissing(t *testing.T) {
	_, _, ok := CLIFailure("plain output, no tag", "tag123")
	assert.False(t, ok)
}

func TestParse_GenericWithHeader(t *testing.T) {
	body := "id,name,status\n1,foo,on\n2,bar,on"
	resp, err := Parse(KindGeneric, body, ',')
	require.NoError(t, err)
	recs := resp.AsList()
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0]["id"])
	assert.Equal(t, "foo", recs[0]["name"])
	assert.Equal(t, "on", recs[0]["status"])
}

func TestParse_GenericNoHeaderIsBlankLineBlocks(t *testing.T) {
	// One colon-style block: the varying-width, non-numeric key/value
	// columns cast no header vote, the score stays at zero, so no header
	// is detected and the whole block folds into a single record.
	body := "id 1\ntier generic_ssd\ntier_capacity 0.00MB"
	resp, err := Parse(KindGeneric, body, ' ')
	require.NoError(t, err)
	recs := resp.AsList()
	require.Len(t, recs, 1)
	assert.Equal(t, "1", recs[0]["id"])
	assert.Equal(t, "generic_ssd", recs[0]["tier"])
}

func TestParse_GenericNoHeaderRepeatedKeyPromotesToList(t *testing.T) {
	// Scenario G: a detailed "lsvdisk -delim ," dump with a field
	// ("tier") repeated within one block.
	body := "id,1\ntier,generic_ssd\ntier_capacity,0.00MB\ntier,generic_hdd\ntier_capacity,100.00MB"
	resp, err := Parse(KindGeneric, body, ',')
	require.NoError(t, err)
	single := resp.AsSingleElement()
	assert.Equal(t, []string{"generic_ssd", "generic_hdd"}, single["tier"])
	assert.Equal(t, []string{"0.00MB", "100.00MB"}, single["tier_capacity"])
	assert.Equal(t, "1", single["id"])
}

func TestParse_LsMetadataVdisk(t *testing.T) {
	body := "id 1\ntier generic_ssd\ntier_capacity 0.00MB\ntier generic_hdd\ntier_capacity 100.00MB"
	resp, err := Parse(KindLsMetadataVdisk, body, ' ')
	require.NoError(t, err)
	recs := resp.AsList()
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"generic_ssd", "generic_hdd"}, recs[0]["tier"])
	assert.Equal(t, "1", recs[0]["id"])
}

func TestParse_MetadataEntryCreate(t *testing.T) {
	body := "Token: 1234 TimeStamp: 20141013"
	resp, err := Parse(KindMetadataEntry, body, ',')
	require.NoError(t, err)
	recs := resp.AsList()
	require.Len(t, recs, 1)
	assert.Equal(t, "1234", recs[0]["Token"])
	assert.Equal(t, "20141013", recs[0]["TimeStamp"])
	_, hasContent := recs[0]["content"]
	assert.False(t, hasContent)
}

func TestParse_MetadataEntryRetrieveAttachesContent(t *testing.T) {
	body := "Token: 1234\nextra line one\nextra line two"
	resp, err := Parse(KindMetadataEntry, body, ',')
	require.NoError(t, err)
	recs := resp.AsList()
	require.Len(t, recs, 1)
	assert.Equal(t, "1234", recs[0]["Token"])
	assert.Equal(t, "extra line one\nextra line two", recs[0]["content"])
}

func TestParse_MetadataEntryList(t *testing.T) {
	body := "id name status\n1 foo on\n2 bar off"
	resp, err := Parse(KindMetadataEntryList, body, ',')
	require.NoError(t, err)
	recs := resp.AsList()
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0]["id"])
	assert.Equal(t, "foo", recs[0]["name"])
	assert.Equal(t, "on", recs[0]["status"])
}

func TestParse_MetadataEntryListRequiresThreeColumns(t *testing.T) {
	body := "id name\n1 foo"
	_, err := Parse(KindMetadataEntryList, body, ',')
	assert.Error(t, err)
}

func TestParse_MetadataDbList(t *testing.T) {
	body := "id name status\n1 foo on\n2 bar off"
	resp, err := Parse(KindMetadataDbList, body, ',')
	require.NoError(t, err)
	recs := resp.AsList()
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0]["id"])
	_, hasName := recs[0]["name"]
	assert.False(t, hasName)
}

func TestParse_LsRoute(t *testing.T) {
	body := "IPv4 routing table\n" +
		"Next Hop       Destination    iface\n" +
		"10.0.0.1       0.0.0.0/0      eth0\n" +
		"IPv6 routing table\n" +
		"Next Hop       Destination    iface\n" +
		"::1            ::/0           eth0\n"
	resp, err := Parse(KindLsRoute, body, ' ')
	require.NoError(t, err)
	recs := resp.AsList()
	require.Len(t, recs, 2)
	assert.Equal(t, "10.0.0.1", recs[0]["Next_Hop"])
	assert.Equal(t, "::1", recs[1]["Next_Hop"])
}

func TestParse_LoginFailure(t *testing.T) {
	_, err := Parse(KindGeneric, loginFailureSentinel, ',')
	assert.Error(t, err)
}

func TestParse_UnknownKind(t *testing.T) {
	_, err := Parse(Kind("Bogus"), "x", ',')
	assert.Error(t, err)
}

func TestAsSingleElement_IdentityForOneRecord(t *testing.T) {
	resp := CLIResponse{Records: []Record{{"id": "1", "name": "foo"}}}
	single := resp.AsSingleElement()
	assert.Equal(t, Record{"id": "1", "name": "foo"}, single)
}

func TestAsSingleElement_CollapsesIdenticalFields(t *testing.T) {
	resp := CLIResponse{Records: []Record{
		{"id": "1", "status": "on"},
		{"id": "1", "status": "on"},
	}}
	single := resp.AsSingleElement()
	assert.Equal(t, "1", single["id"])
	assert.Equal(t, "on", single["status"])
}

func TestAsDict_GroupsByKey(t *testing.T) {
	resp := CLIResponse{Records: []Record{
		{"name": "h1", "wwpn": "a"},
		{"name": "h1", "wwpn": "b"},
		{"name": "h2", "wwpn": "c"},
	}}
	byName := resp.AsDict("name")
	assert.Equal(t, []string{"a", "b"}, byName["h1"]["wwpn"])
	assert.Equal(t, "c", byName["h2"]["wwpn"])
}

func TestHasHeader_IdenticalFirstRowNeverScoresAsHeader(t *testing.T) {
	// Testable Property 5: the header row literally equal to a data row
	// can never be detected as a header.
	rows := [][]string{{"foo", "bar"}, {"foo", "bar"}, {"foo", "bar"}}
	_, hasHdr := hasHeader(rows)
	assert.False(t, hasHdr)
}
