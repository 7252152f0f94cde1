package settings

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbr/deploybot/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admin-settings.json")
	return NewStore(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s := testStore(t)
	cfg := s.Load()

	assert.Equal(t, 15.00, cfg.Payment.BasicPrice)
	assert.Equal(t, 25.00, cfg.Payment.StandardPrice)
	assert.Equal(t, 50.00, cfg.Payment.PremiumPrice)
	assert.True(t, cfg.Payment.PixEnabled)
	assert.True(t, cfg.Payment.AutoDeploy)
	assert.True(t, cfg.Notifications.AdminNotifications)
	assert.True(t, cfg.Notifications.PaymentNotifications)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	s := testStore(t)

	cfg := s.Load()
	cfg.Payment.StandardPrice = 30.00
	cfg.Payment.PixEnabled = false
	require.NoError(t, s.Save(cfg))

	got := s.Load()
	assert.Equal(t, 30.00, got.Payment.StandardPrice)
	assert.False(t, got.Payment.PixEnabled)
	// Untouched values survive the round trip.
	assert.Equal(t, 15.00, got.Payment.BasicPrice)
}

func TestLoadMalformedFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin-settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s := NewStore(path, slog.New(slog.NewTextHandler(io.Discard, nil)))

	cfg := s.Load()
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadReReadsEveryCall(t *testing.T) {
	s := testStore(t)

	cfg := s.Load()
	cfg.Payment.PremiumPrice = 99.00
	require.NoError(t, s.Save(cfg))

	// No caching: the next Load observes the change immediately.
	assert.Equal(t, 99.00, s.Load().Payment.PremiumPrice)
}

func TestPlanPrice(t *testing.T) {
	cfg := Defaults()

	for plan, want := range map[domain.Plan]float64{
		domain.PlanBasic:    15.00,
		domain.PlanStandard: 25.00,
		domain.PlanPremium:  50.00,
	} {
		got, err := cfg.PlanPrice(plan)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := cfg.PlanPrice(domain.Plan("gold"))
	assert.Error(t, err)
}
