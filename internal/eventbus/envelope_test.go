package eventbus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	payload, err := json.Marshal(map[string]string{"order_id": "abc"})
	require.NoError(t, err)

	env := NewEnvelope(EventOrderCreated, payload)

	require.NotEqual(t, env.ID.String(), "")
	require.Equal(t, EventOrderCreated, env.EventType)
	require.Equal(t, SchemaVersion, env.Version)
	require.JSONEq(t, `{"order_id":"abc"}`, string(env.Payload))
}

func TestEnvelope_MarshalRoundTrip(t *testing.T) {
	payload, _ := json.Marshal(map[string]int{"item_count": 3})
	env := NewEnvelope(EventOrderStatusChanged, payload)

	body, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Equal(t, env.ID, decoded.ID)
	require.Equal(t, env.EventType, decoded.EventType)
	require.Equal(t, env.Version, decoded.Version)
	require.JSONEq(t, string(env.Payload), string(decoded.Payload))
}
