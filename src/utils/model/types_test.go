package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONBValueAndScan(t *testing.T) {
	in := JSONB(`{"rows": 1000}`)

	value, err := in.Value()
	require.Nil(t, err)
	require.Equal(t, `{"rows": 1000}`, value)

	var out JSONB
	require.Nil(t, out.Scan([]byte(`{"rows": 1000}`)))
	require.Equal(t, in, out)

	require.Nil(t, out.Scan(nil))
	require.Nil(t, out)
}

func TestJSONBEmptyMarshalsAsNull(t *testing.T) {
	payload, err := json.Marshal(struct {
		Meta JSONB `json:"meta"`
	}{})
	require.Nil(t, err)
	require.Equal(t, `{"meta":null}`, string(payload))

	value, err := JSONB(nil).Value()
	require.Nil(t, err)
	require.Nil(t, value)
}

func TestPurchaseMetadataRoundTrip(t *testing.T) {
	in := PurchaseMetadata{
		PlatformFee:  10,
		SellerAmount: 190,
		Network:      "testnet",
		FailedStep:   "token_issue",
	}

	value, err := in.Value()
	require.Nil(t, err)

	var out PurchaseMetadata
	require.Nil(t, out.Scan(value))
	require.Equal(t, in, out)
}

func TestPurchaseMetadataScanNil(t *testing.T) {
	out := PurchaseMetadata{Network: "stale"}
	require.Nil(t, out.Scan(nil))
	require.Equal(t, PurchaseMetadata{}, out)
}
