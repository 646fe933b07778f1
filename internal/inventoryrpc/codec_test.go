package inventoryrpc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONCodec_RoundTrip(t *testing.T) {
	c := jsonCodec{}
	req := CheckAndReserveStockRequest{
		OrderID: "order-1",
		Items: []ProductItem{
			{ProductID: "p1", SKU: "SKU-1", Quantity: 2},
		},
		WarehouseID: "wh-1",
	}

	body, err := c.Marshal(req)
	require.NoError(t, err)

	var decoded CheckAndReserveStockRequest
	require.NoError(t, c.Unmarshal(body, &decoded))
	require.Equal(t, req, decoded)
}

func TestJSONCodec_Name(t *testing.T) {
	require.Equal(t, "json", jsonCodec{}.Name())
}
