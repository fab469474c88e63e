package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

func TestNewCloudEvent(t *testing.T) {
	evt, err := NewCloudEvent("service-facility", "booking.created", "b-1", samplePayload{BookingID: "b-1", Status: "pending"})
	require.NoError(t, err)

	assert.Equal(t, "1.0", evt.SpecVersion)
	assert.Equal(t, "service-facility", evt.Source)
	assert.Equal(t, "booking.created", evt.Type)
	assert.Equal(t, "b-1", evt.Subject)
	assert.NotEmpty(t, evt.ID)
	assert.False(t, evt.Time.IsZero())

	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	var decoded CloudEvent
	require.NoError(t, json.Unmarshal(raw, &decoded))

	var got samplePayload
	require.NoError(t, decoded.ParseData(&got))
	assert.Equal(t, "pending", got.Status)
}

func TestParseData_Empty(t *testing.T) {
	var got samplePayload
	assert.Error(t, CloudEvent{ID: "x"}.ParseData(&got))
}

func TestNewCloudEvent_Unmarshalable(t *testing.T) {
	_, err := NewCloudEvent("s", "t", "", make(chan int))
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishEvent(context.Background(), "topic", CloudEvent{}))
}
