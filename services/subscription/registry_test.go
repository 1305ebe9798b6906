package subscription

import (
	"context"
	"errors"
	"testing"

	professionalRepo "fixly/database/repository/professional"
	"fixly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProfRepo struct {
	professionals map[string]*models.Professional
}

func (s *stubProfRepo) GetByID(_ context.Context, id string) (*models.Professional, error) {
	p, ok := s.professionals[id]
	if !ok {
		return nil, professionalRepo.ErrNotFound
	}
	return p, nil
}

func (s *stubProfRepo) ListByServiceDistrict(_ context.Context, serviceType, district string) ([]models.Professional, error) {
	var out []models.Professional
	for _, p := range s.professionals {
		if p.ServiceType == serviceType && p.District == district {
			out = append(out, *p)
		}
	}
	return out, nil
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-a"))
	require.NoError(t, r.Register(ctx, "pro-2", "Plumbing", "Jaffna", "token-b"))
	require.NoError(t, r.Register(ctx, "pro-3", "Electrical", "Jaffna", "token-c"))

	assert.ElementsMatch(t, []string{"pro-1", "pro-2"}, r.Lookup("Plumbing", "Jaffna"))
	assert.ElementsMatch(t, []string{"pro-3"}, r.Lookup("Electrical", "Jaffna"))
	assert.Empty(t, r.Lookup("Plumbing", "Colombo"))
}

func TestRegisterIsIdempotentAndMultiDevice(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-a"))
	require.NoError(t, r.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-a"))
	require.NoError(t, r.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-b"))

	assert.ElementsMatch(t, []string{"token-a", "token-b"}, r.EndpointsFor("pro-1"))
	assert.ElementsMatch(t, []string{"pro-1"}, r.Lookup("Plumbing", "Jaffna"))
}

func TestUnregisterIsNoOpWhenAbsent(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-a"))
	r.Unregister("token-a")
	r.Unregister("token-a") // double unregister must not panic or error
	r.Unregister("never-seen")

	assert.Empty(t, r.EndpointsFor("pro-1"))
	assert.Empty(t, r.Lookup("Plumbing", "Jaffna"))
}

func TestUnregisterKeepsOtherDevices(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-a"))
	require.NoError(t, r.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-b"))
	r.Unregister("token-a")

	assert.ElementsMatch(t, []string{"token-b"}, r.EndpointsFor("pro-1"))
	assert.ElementsMatch(t, []string{"pro-1"}, r.Lookup("Plumbing", "Jaffna"))
}

func TestRegisterRejectsUnresolvableProfile(t *testing.T) {
	r := NewRegistry(nil)
	err := r.Register(context.Background(), "pro-1", "", "", "token-a")

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "pro-1", cfgErr.ProfessionalID)
}

func TestRegisterResolvesProfileFromRepo(t *testing.T) {
	repo := &stubProfRepo{professionals: map[string]*models.Professional{
		"pro-1": {ID: "pro-1", ServiceType: "Plumbing", District: "Jaffna", Available: true},
	}}
	r := NewRegistry(repo)

	require.NoError(t, r.Register(context.Background(), "pro-1", "", "", "token-a"))
	assert.ElementsMatch(t, []string{"pro-1"}, r.Lookup("Plumbing", "Jaffna"))
}

func TestRefreshReroutesStaleSubscriptions(t *testing.T) {
	repo := &stubProfRepo{professionals: map[string]*models.Professional{
		"pro-1": {ID: "pro-1", ServiceType: "Plumbing", District: "Jaffna", Available: true},
	}}
	r := NewRegistry(repo)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "pro-1", "Plumbing", "Jaffna", "token-a"))

	// Profile moves district; subscription captured at register time is stale.
	repo.professionals["pro-1"].District = "Colombo"
	require.NoError(t, r.Refresh(ctx, "pro-1"))

	assert.Empty(t, r.Lookup("Plumbing", "Jaffna"))
	assert.ElementsMatch(t, []string{"pro-1"}, r.Lookup("Plumbing", "Colombo"))
	assert.ElementsMatch(t, []string{"token-a"}, r.EndpointsFor("pro-1"))
}
