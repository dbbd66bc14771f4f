package display

import (
	"context"
	"testing"
	"time"

	"pos-till/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubDeliversToTillSubscribers(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("till-1")
	defer sub.Close()
	other := hub.Subscribe("till-2")
	defer other.Close()

	msg := UpdateMessage(domain.LineItem{ProductID: "p1", Name: "Mate"}, decimal.NewFromInt(363))
	hub.Publish(context.Background(), "till-1", msg)

	select {
	case got := <-sub.Messages():
		assert.Equal(t, domain.DisplayUpdate, got.Type)
		assert.Equal(t, "363", got.Payload.Total.String())
	case <-time.After(time.Second):
		t.Fatal("expected a display message")
	}
	assert.Empty(t, other.Messages())
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("till")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < DefaultSubscriberBuffer*4; i++ {
			hub.Publish(context.Background(), "till", ThanksMessage())
		}
		hub.Publish(context.Background(), "nobody", ThanksMessage())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, sub.Messages(), DefaultSubscriberBuffer)
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("till")
	assert.Equal(t, 1, hub.Subscribers("till"))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.Subscribers("till"))
}

func TestRedisPublisherRelaysIntoHub(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hub := NewHub()
	sub := hub.Subscribe("till-1")
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Relay(ctx, client, "customer_display", hub, zap.NewNop())

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("customer_display")["customer_display"] == 1
	}, time.Second, 10*time.Millisecond)

	publisher := NewRedisPublisher(client, "customer_display", zap.NewNop())
	publisher.Publish(ctx, "till-1", ThanksMessage())

	select {
	case got := <-sub.Messages():
		assert.Equal(t, domain.DisplayThanks, got.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("expected relayed message")
	}
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop{}.Publish(context.Background(), "till", ThanksMessage())
	})
}
