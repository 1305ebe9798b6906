package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fixly/models"
	"fixly/services/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePusher struct {
	mu      sync.Mutex
	sent    []models.PushMessage
	failFor map[string]bool
}

func (f *fakePusher) Send(_ context.Context, msg models.PushMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[msg.Endpoint] {
		return errors.New("endpoint gone")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakePusher) endpoints() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		out = append(out, m.Endpoint)
	}
	return out
}

func testBooking() *models.Booking {
	return &models.Booking{
		ID:          "b-1",
		ServiceType: "Plumbing",
		Status:      models.BookingStatusRequested,
		Location:    models.Location{District: "Jaffna", City: "Jaffna"},
		CreatedAt:   time.Now().UTC(),
	}
}

func newTestFanout(t *testing.T, pusher *fakePusher) (*DefaultFanoutService, *subscription.Registry, *Hub) {
	t.Helper()
	registry := subscription.NewRegistry(nil)
	hub := NewHub(nil, zap.NewNop())
	return NewDefaultFanoutService(hub, registry, pusher, zap.NewNop()), registry, hub
}

func TestOfferReachesBothChannels(t *testing.T) {
	pusher := &fakePusher{}
	svc, registry, hub := newTestFanout(t, pusher)
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-a"))
	live := hub.Subscribe("Plumbing", "Jaffna")

	svc.Offer(ctx, testBooking(), []string{"pro-1"})

	select {
	case ev := <-live.Events():
		assert.Equal(t, models.DispatchEventOffer, ev.Type)
		require.NotNil(t, ev.Booking)
		assert.Equal(t, "b-1", ev.Booking.ID)
	case <-time.After(time.Second):
		t.Fatal("expected live offer event")
	}

	require.Len(t, pusher.sent, 1)
	msg := pusher.sent[0]
	assert.Equal(t, "token-a", msg.Endpoint)
	assert.Equal(t, models.DispatchEventOffer, msg.Kind)
	assert.Equal(t, "b-1", msg.BookingID)
	assert.Equal(t, "Plumbing", msg.ServiceType)
	assert.Equal(t, "Jaffna", msg.District)
}

func TestPushFailureIsIsolatedPerEndpoint(t *testing.T) {
	pusher := &fakePusher{failFor: map[string]bool{"token-b": true}}
	svc, registry, _ := newTestFanout(t, pusher)
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-a"))
	require.NoError(t, registry.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-b"))
	require.NoError(t, registry.Register(ctx, "pro-2", "Plumbing", "Jaffna", "token-c"))

	svc.Offer(ctx, testBooking(), []string{"pro-1", "pro-2"})

	assert.ElementsMatch(t, []string{"token-a", "token-c"}, pusher.endpoints())
}

func TestWithdrawCarriesOnlyBookingID(t *testing.T) {
	pusher := &fakePusher{}
	svc, registry, hub := newTestFanout(t, pusher)
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-a"))
	live := hub.Subscribe("Plumbing", "Jaffna")

	svc.Withdraw(ctx, testBooking(), []string{"pro-1"})

	select {
	case ev := <-live.Events():
		assert.Equal(t, models.DispatchEventWithdraw, ev.Type)
		assert.Equal(t, "b-1", ev.BookingID)
		assert.Nil(t, ev.Booking)
	case <-time.After(time.Second):
		t.Fatal("expected live withdraw event")
	}

	require.Len(t, pusher.sent, 1)
	assert.Equal(t, models.DispatchEventWithdraw, pusher.sent[0].Kind)
}

func TestOfferWithEmptyPoolIsSilent(t *testing.T) {
	pusher := &fakePusher{}
	svc, _, hub := newTestFanout(t, pusher)
	live := hub.Subscribe("Plumbing", "Jaffna")

	svc.Offer(context.Background(), testBooking(), nil)

	select {
	case ev := <-live.Events():
		t.Fatalf("unexpected event for empty pool: %+v", ev)
	default:
	}
	assert.Empty(t, pusher.sent)
}
