package cent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeRequestBatch(t *testing.T) *BatchRequest {
	t.Helper()
	batch, err := NewBatchRequest(testEndpoint, "secret",
		mustRequest(t, "publish", map[string]any{"channel": "a"}),
		mustRequest(t, "presence", map[string]any{"channel": "b"}),
		mustRequest(t, "history", map[string]any{"channel": "c"}),
	)
	require.NoError(t, err)
	return batch
}

func TestBatchResponseFromArray(t *testing.T) {
	batch := threeRequestBatch(t)
	br, err := newBatchResponse(batch, RawReply(`[
		{"method":"publish","body":{}},
		{"method":"presence","result":{"presence":{}}},
		{"method":"history","error":{"code":103,"message":"permission denied"}}
	]`), defaultKinds)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, br.Keys())
	assert.Empty(t, br.Missing())
	assert.Same(t, batch, br.Request())

	presence, ok := br.At(1)
	require.True(t, ok)
	assert.JSONEq(t, `{"presence":{}}`, string(presence.Body()))
	req, ok := presence.Request()
	require.True(t, ok)
	assert.Equal(t, "presence", req.Method())

	history, ok := br.At(2)
	require.True(t, ok)
	require.True(t, history.IsError())
	assert.Equal(t, "permission denied", history.ErrorMessage())
	assert.ErrorIs(t, history.Err(), ErrPermissionDenied)
	assert.Equal(t, uint32(103), history.ServerError().Code)
	assert.Equal(t, "centrifugo: 103: permission denied", history.Err().Error())

	assert.True(t, br.IsError())
	assert.ErrorIs(t, br.Err(), ErrPermissionDenied)
}

func TestBatchResponseFromSingleObject(t *testing.T) {
	batch := threeRequestBatch(t)
	br, err := newBatchResponse(batch, RawReply(`{"method":"publish","body":null,"error":null}`), defaultKinds)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, br.Keys())
	assert.Equal(t, []int{1, 2}, br.Missing())

	first, ok := br.First()
	require.True(t, ok)
	assert.Nil(t, first.Body())
	assert.False(t, first.IsError())
	assert.NoError(t, first.Err())
	assert.Nil(t, first.ServerError())
	assert.False(t, br.IsError())
	assert.NoError(t, br.Err())
}

func TestBatchResponseFromKeyedObject(t *testing.T) {
	batch := threeRequestBatch(t)
	br, err := newBatchResponse(batch, RawReply(`{
		"2": {"method":"history","body":{"publications":[]}},
		"0": {"method":"publish","body":{}},
		"7": {"error":"not available"}
	}`), defaultKinds)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 0, 7}, br.Keys())
	assert.Equal(t, 3, br.Len())
	assert.Equal(t, []int{1}, br.Missing())

	stray, ok := br.At(7)
	require.True(t, ok)
	_, ok = stray.Request()
	assert.False(t, ok)
	assert.ErrorIs(t, stray.Err(), ErrNotAvailable)

	keys := make([]int, 0)
	for k, r := range br.All() {
		keys = append(keys, k)
		assert.NotNil(t, r)
	}
	assert.Equal(t, []int{2, 0, 7}, keys)
	assert.Len(t, br.Responses(), 3)
}

func TestBatchResponseMissingFields(t *testing.T) {
	batch := threeRequestBatch(t)
	br, err := newBatchResponse(batch, RawReply(`[{}, null, {"error":""}]`), defaultKinds)
	require.NoError(t, err)
	require.Equal(t, 3, br.Len())

	for _, r := range br.Responses() {
		assert.False(t, r.IsError())
		assert.Nil(t, r.Body())
		assert.Empty(t, r.Method())
		var v map[string]any
		assert.NoError(t, r.DecodeBody(&v))
		assert.Nil(t, v)
	}
}

func TestBatchResponseFromEmptyObject(t *testing.T) {
	batch := threeRequestBatch(t)
	br, err := newBatchResponse(batch, RawReply(`{}`), defaultKinds)
	require.NoError(t, err)
	require.Equal(t, 1, br.Len())

	r, ok := br.At(0)
	require.True(t, ok)
	assert.False(t, r.IsError())
	assert.Nil(t, r.Body())
	assert.Empty(t, r.Method())
	assert.Equal(t, []int{1, 2}, br.Missing())
}

func TestBatchResponseErrorMethodFallsBackToRequest(t *testing.T) {
	batch := threeRequestBatch(t)
	br, err := newBatchResponse(batch, RawReply(`[{"error":"permission denied"}]`), defaultKinds)
	require.NoError(t, err)

	r, ok := br.At(0)
	require.True(t, ok)
	assert.Empty(t, r.Method())
	assert.Equal(t, "publish", r.ServerError().Method)
	assert.Same(t, r, r.ServerError().Response)
}

func TestBatchResponseMalformed(t *testing.T) {
	batch := threeRequestBatch(t)
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `<html>bad gateway</html>`},
		{name: "truncated", raw: `[{"method":"publish"`},
		{name: "scalar", raw: `42`},
		{name: "string", raw: `"ok"`},
		{name: "non integer key", raw: `{"first":{"body":{}}}`},
		{name: "scalar entry", raw: `[1, 2]`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newBatchResponse(batch, RawReply(tc.raw), defaultKinds)
			assert.ErrorIs(t, err, ErrMalformedReply)
		})
	}
}

func TestBatchResponseEmpty(t *testing.T) {
	batch := threeRequestBatch(t)
	br, err := newBatchResponse(batch, RawReply(`[]`), defaultKinds)
	require.NoError(t, err)
	assert.Equal(t, 0, br.Len())
	assert.Equal(t, []int{0, 1, 2}, br.Missing())
	_, ok := br.First()
	assert.False(t, ok)
}
