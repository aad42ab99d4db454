package events_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"school-service/internal/config"
	"school-service/internal/events"
	"school-service/internal/logger"
	"school-service/internal/metrics"
	"school-service/internal/testnats"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testnats.Terminate()
	os.Exit(code)
}

func TestNATSPublisher_Container(t *testing.T) {
	natsContainer := testnats.SetupSharedNATS(t)
	nc := natsContainer.Connect(t)

	received := make(chan *nats.Msg, 1)
	_, err := nc.Subscribe("school.records.attendance.marked", func(msg *nats.Msg) {
		received <- msg
	})
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	publisher, err := events.New(config.EventsConfig{
		Driver:  "nats",
		Subject: "school.records",
		NATS:    config.NATSConfig{URL: natsContainer.URL},
	}, logger.NewDiscard(), metrics.NewMock())
	require.NoError(t, err)

	publisher.Publish(context.Background(), events.TypeAttendanceMarked, "1", map[string]string{
		"date":   "2024-01-10",
		"status": "Absent",
	})
	require.NoError(t, publisher.Close())

	select {
	case msg := <-received:
		var event struct {
			Type    string            `json:"type"`
			Key     string            `json:"key"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(msg.Data, &event))
		assert.Equal(t, events.TypeAttendanceMarked, event.Type)
		assert.Equal(t, "1", event.Key)
		assert.Equal(t, "Absent", event.Payload["status"])
	case <-time.After(2 * time.Second):
		t.Fatal("event not received on NATS within timeout")
	}
}
