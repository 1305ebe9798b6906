package subscription

import (
	"context"
	"fmt"
	"sync"
	"time"

	professionalRepo "fixly/database/repository/professional"
	"fixly/models"
)

// ConfigurationError rejects a registration whose service or district cannot
// be resolved. It stops at the registry boundary and never propagates into
// dispatch.
type ConfigurationError struct {
	ProfessionalID string
	Reason         string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("subscription configuration error for professional %s: %s", e.ProfessionalID, e.Reason)
}

type topicKey struct {
	serviceType string
	district    string
}

// Registry maps (serviceType, district) to the professionals eligible for
// offers, and professional ids to their push endpoints. One professional may
// hold several endpoints (multi-device). The registry is constructed once per
// process and injected; it holds no ambient global state.
type Registry struct {
	mu             sync.RWMutex
	byTopic        map[topicKey]map[string]struct{}
	byEndpoint     map[string]models.PushSubscription
	byProfessional map[string]map[string]struct{}

	profRepo professionalRepo.ProfessionalRepository
}

// NewRegistry creates an empty registry. The professional repository is used
// to resolve missing service/district at register time and to refresh stale
// subscriptions; it may be nil, in which case callers must always supply both.
func NewRegistry(profRepo professionalRepo.ProfessionalRepository) *Registry {
	return &Registry{
		byTopic:        make(map[topicKey]map[string]struct{}),
		byEndpoint:     make(map[string]models.PushSubscription),
		byProfessional: make(map[string]map[string]struct{}),
		profRepo:       profRepo,
	}
}

// Register upserts one endpoint for a professional. Registering the same
// endpoint twice is a no-op; registering a second endpoint adds a device.
// When serviceType or district is empty the registry falls back to the
// professional's stored profile, and rejects the registration with a
// ConfigurationError if neither source resolves.
func (r *Registry) Register(ctx context.Context, professionalID, serviceType, district, endpoint string) error {
	if endpoint == "" {
		return &ConfigurationError{ProfessionalID: professionalID, Reason: "empty endpoint"}
	}
	if serviceType == "" || district == "" {
		resolved, err := r.resolveProfile(ctx, professionalID)
		if err != nil {
			return err
		}
		if serviceType == "" {
			serviceType = resolved.ServiceType
		}
		if district == "" {
			district = resolved.District
		}
	}
	if serviceType == "" || district == "" {
		return &ConfigurationError{ProfessionalID: professionalID, Reason: "no resolvable service or district"}
	}

	sub := models.PushSubscription{
		ProfessionalID: professionalID,
		Endpoint:       endpoint,
		ServiceType:    serviceType,
		District:       district,
		CreatedAt:      time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byEndpoint[endpoint]; ok {
		r.removeLocked(prev)
	}
	r.byEndpoint[endpoint] = sub

	key := topicKey{serviceType: serviceType, district: district}
	if r.byTopic[key] == nil {
		r.byTopic[key] = make(map[string]struct{})
	}
	r.byTopic[key][professionalID] = struct{}{}

	if r.byProfessional[professionalID] == nil {
		r.byProfessional[professionalID] = make(map[string]struct{})
	}
	r.byProfessional[professionalID][endpoint] = struct{}{}
	return nil
}

// Unregister removes one endpoint. Removing an unknown endpoint is a no-op.
func (r *Registry) Unregister(endpoint string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byEndpoint[endpoint]
	if !ok {
		return
	}
	r.removeLocked(sub)
}

// Lookup returns the professionals subscribed under (serviceType, district).
// This is the raw candidate pool, before visibility filtering.
func (r *Registry) Lookup(serviceType, district string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byTopic[topicKey{serviceType: serviceType, district: district}]
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	return out
}

// EndpointsFor returns every push endpoint held by a professional.
func (r *Registry) EndpointsFor(professionalID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	eps := r.byProfessional[professionalID]
	out := make([]string, 0, len(eps))
	for ep := range eps {
		out = append(out, ep)
	}
	return out
}

// Refresh re-resolves a professional's service and district from the profile
// store and re-keys their subscriptions. The out-of-scope profile service is
// expected to call this on profile change; until it does, subscriptions keep
// the routing captured at registration.
func (r *Registry) Refresh(ctx context.Context, professionalID string) error {
	resolved, err := r.resolveProfile(ctx, professionalID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	endpoints := make([]string, 0, len(r.byProfessional[professionalID]))
	for ep := range r.byProfessional[professionalID] {
		endpoints = append(endpoints, ep)
	}
	for _, endpoint := range endpoints {
		sub := r.byEndpoint[endpoint]
		r.removeLocked(sub)
		sub.ServiceType = resolved.ServiceType
		sub.District = resolved.District
		r.byEndpoint[endpoint] = sub

		key := topicKey{serviceType: sub.ServiceType, district: sub.District}
		if r.byTopic[key] == nil {
			r.byTopic[key] = make(map[string]struct{})
		}
		r.byTopic[key][professionalID] = struct{}{}

		if r.byProfessional[professionalID] == nil {
			r.byProfessional[professionalID] = make(map[string]struct{})
		}
		r.byProfessional[professionalID][endpoint] = struct{}{}
	}
	return nil
}

func (r *Registry) resolveProfile(ctx context.Context, professionalID string) (*models.Professional, error) {
	if r.profRepo == nil {
		return nil, &ConfigurationError{ProfessionalID: professionalID, Reason: "no resolvable service or district"}
	}
	p, err := r.profRepo.GetByID(ctx, professionalID)
	if err != nil {
		return nil, &ConfigurationError{ProfessionalID: professionalID, Reason: fmt.Sprintf("profile lookup failed: %v", err)}
	}
	return p, nil
}

// removeLocked drops one subscription from all three maps. Caller holds mu.
func (r *Registry) removeLocked(sub models.PushSubscription) {
	delete(r.byEndpoint, sub.Endpoint)

	if eps := r.byProfessional[sub.ProfessionalID]; eps != nil {
		delete(eps, sub.Endpoint)
		if len(eps) == 0 {
			delete(r.byProfessional, sub.ProfessionalID)
		}
	}

	// Keep the topic entry while the professional still has another endpoint
	// routed to the same topic.
	key := topicKey{serviceType: sub.ServiceType, district: sub.District}
	stillRouted := false
	for ep := range r.byProfessional[sub.ProfessionalID] {
		if other, ok := r.byEndpoint[ep]; ok && other.ServiceType == key.serviceType && other.District == key.district {
			stillRouted = true
			break
		}
	}
	if !stillRouted {
		if ids := r.byTopic[key]; ids != nil {
			delete(ids, sub.ProfessionalID)
			if len(ids) == 0 {
				delete(r.byTopic, key)
			}
		}
	}
}
