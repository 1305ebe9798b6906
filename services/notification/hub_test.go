package notification

import (
	"context"
	"testing"
	"time"

	"fixly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func offerEvent(bookingID, serviceType, district string) models.DispatchEvent {
	return models.DispatchEvent{
		Type:        models.DispatchEventOffer,
		BookingID:   bookingID,
		ServiceType: serviceType,
		District:    district,
		SentAt:      time.Now().UTC(),
	}
}

func TestHubDeliversToMatchingTopic(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	sub := hub.Subscribe("Plumbing", "Jaffna")
	other := hub.Subscribe("Plumbing", "Colombo")

	hub.Publish(context.Background(), offerEvent("b-1", "Plumbing", "Jaffna"))

	select {
	case ev := <-sub.Events():
		assert.Equal(t, "b-1", ev.BookingID)
	case <-time.After(time.Second):
		t.Fatal("expected event on matching topic")
	}

	select {
	case ev := <-other.Events():
		t.Fatalf("unexpected event on other topic: %+v", ev)
	default:
	}
}

func TestHubUnsubscribeClosesStream(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	sub := hub.Subscribe("Plumbing", "Jaffna")
	hub.Unsubscribe(sub)

	_, open := <-sub.Events()
	require.False(t, open)

	// Publishing after unsubscribe must not panic.
	hub.Publish(context.Background(), offerEvent("b-1", "Plumbing", "Jaffna"))
}

func TestHubDropsWhenSubscriberBufferFull(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	slow := hub.Subscribe("Plumbing", "Jaffna")

	// Overfill the buffer; Publish must never block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(context.Background(), offerEvent("b-1", "Plumbing", "Jaffna"))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	assert.Len(t, slow.Events(), subscriberBuffer)
}
