package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeBatch_RoundTrips(t *testing.T) {
	t.Parallel()

	envs := []Envelope{
		Hello(HelloPayload{ContractVersion: "abp/v0.1"}),
		Fatal(FatalPayload{Error: "boom"}),
	}

	data, err := EncodeBatch(envs)
	require.NoError(t, err)

	results := DecodeBatch(data)
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
	}
	require.Equal(t, TagHello, results[0].Envelope.Tag)
	require.Equal(t, TagFatal, results[1].Envelope.Tag)
}

func TestDecodeBatch_MalformedLineDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	data := []byte(`{"t":"hello","hello":{"contract_version":"abp/v0.1"}}` + "\n" +
		`not json at all` + "\n" +
		`{"t":"fatal","fatal":{"error":"boom"}}`)

	results := DecodeBatch(data)
	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	require.NoError(t, results[2].Err)
}

func TestDecodeBatch_SkipsBlankLines(t *testing.T) {
	t.Parallel()

	data := []byte(`{"t":"fatal","fatal":{"error":"boom"}}` + "\n\n\n")
	results := DecodeBatch(data)
	require.Len(t, results, 1)
}
