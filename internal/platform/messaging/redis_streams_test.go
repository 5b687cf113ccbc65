package messaging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	contractsv1 "legisflow/contracts/gen/events/v1"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if termErr := container.Terminate(ctx); termErr != nil {
			t.Logf("terminate container: %v", termErr)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStreamsRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	client := setupRedis(t)
	bus := NewRedisStreams(client, "test", nil, WithBlock(100*time.Millisecond))
	require.NoError(t, bus.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var failures atomic.Int32
	received := make(chan string, 4)
	require.NoError(t, bus.Subscribe(ctx, "campaign.created", "workflow-cg", func(_ context.Context, event contractsv1.Envelope) error {
		if event.EventID == "flaky" && failures.Add(1) == 1 {
			return errors.New("first attempt fails")
		}
		received <- event.EventID
		return nil
	}))

	require.NoError(t, bus.Publish(ctx, "campaign.created", testEnvelope("e1")))
	select {
	case got := <-received:
		require.Equal(t, "e1", got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for e1")
	}

	require.NoError(t, bus.Publish(ctx, "campaign.created", testEnvelope("flaky")))
	require.Eventually(t, func() bool { return failures.Load() == 1 }, 5*time.Second, 20*time.Millisecond)

	pending, err := client.XPending(ctx, bus.StreamKey("campaign.created"), "workflow-cg").Result()
	require.NoError(t, err)
	require.EqualValues(t, 1, pending.Count)

	// A restarted consumer picks up its pending entry.
	cancel()
	restartCtx, restartCancel := context.WithCancel(context.Background())
	defer restartCancel()
	require.NoError(t, bus.Subscribe(restartCtx, "campaign.created", "workflow-cg", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event.EventID
		return nil
	}))
	select {
	case got := <-received:
		require.Equal(t, "flaky", got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for redelivery")
	}
}
