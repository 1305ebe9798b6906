package dispatch

import "sync"

// offerTracker remembers which professionals have already been offered each
// booking, so rescan cycles do not re-notify anyone and a withdrawal can
// reach everyone ever offered. Offers are ephemeral by design: the tracker
// starts empty on process restart and the next rescan repopulates it.
type offerTracker struct {
	mu      sync.Mutex
	offered map[string]map[string]struct{}
}

func newOfferTracker() *offerTracker {
	return &offerTracker{offered: make(map[string]map[string]struct{})}
}

// markOffered records professionals for a booking and returns only the ones
// not seen before, preserving input order.
func (t *offerTracker) markOffered(bookingID string, professionalIDs []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	set := t.offered[bookingID]
	if set == nil {
		set = make(map[string]struct{})
		t.offered[bookingID] = set
	}

	var fresh []string
	for _, id := range professionalIDs {
		if _, seen := set[id]; seen {
			continue
		}
		set[id] = struct{}{}
		fresh = append(fresh, id)
	}
	return fresh
}

// offeredSet returns everyone ever offered the booking.
func (t *offerTracker) offeredSet(bookingID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	set := t.offered[bookingID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// drop forgets a booking entirely.
func (t *offerTracker) drop(bookingID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.offered, bookingID)
}

// retain keeps only the given bookings, releasing memory for bookings that
// have left the requested state without passing through Accept or Cancel on
// this instance.
func (t *offerTracker) retain(bookingIDs map[string]struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id := range t.offered {
		if _, keep := bookingIDs[id]; !keep {
			delete(t.offered, id)
		}
	}
}
