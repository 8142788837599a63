package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumRaw_OrderIndependent(t *testing.T) {
	a := json.RawMessage(`{"id":"a","hour":7}`)
	b := json.RawMessage(`{"id":"b","hour":8}`)

	c1, err := ChecksumRaw([]json.RawMessage{a, b})
	require.NoError(t, err)
	c2, err := ChecksumRaw([]json.RawMessage{b, a})
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestChecksumRaw_WhitespaceIndependent(t *testing.T) {
	c1, err := ChecksumRaw([]json.RawMessage{json.RawMessage(`{"id":"a","hour":7}`)})
	require.NoError(t, err)
	c2, err := ChecksumRaw([]json.RawMessage{json.RawMessage(" {\"id\": \"a\",\n  \"hour\": 7} ")})
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestChecksumRaw_ContentSensitive(t *testing.T) {
	c1, err := ChecksumRaw([]json.RawMessage{json.RawMessage(`{"id":"a","hour":7}`)})
	require.NoError(t, err)
	c2, err := ChecksumRaw([]json.RawMessage{json.RawMessage(`{"id":"a","hour":8}`)})
	require.NoError(t, err)
	assert.NotEqual(t, c1, c2)
}

func TestChecksumRaw_Empty(t *testing.T) {
	c, err := ChecksumRaw(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, c)
}

func TestChecksumRaw_RejectsMissingID(t *testing.T) {
	_, err := ChecksumRaw([]json.RawMessage{json.RawMessage(`{"hour":7}`)})
	require.Error(t, err)
}

func TestChecksum_MatchesRaw(t *testing.T) {
	type item struct {
		ID   string `json:"id"`
		Hour int    `json:"hour"`
	}
	c1, err := Checksum([]item{{ID: "a", Hour: 7}})
	require.NoError(t, err)
	c2, err := ChecksumRaw([]json.RawMessage{json.RawMessage(`{"id":"a","hour":7}`)})
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}
