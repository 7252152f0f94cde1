package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/hostbr/deploybot/internal/domain"
)

// PaymentSettings holds the admin-tunable payment values.
type PaymentSettings struct {
	BasicPrice    float64 `json:"basicPrice"`
	StandardPrice float64 `json:"standardPrice"`
	PremiumPrice  float64 `json:"premiumPrice"`
	PixEnabled    bool    `json:"pixEnabled"`
	AutoDeploy    bool    `json:"autoDeployEnabled"`
}

// NotificationSettings toggles the administrative observer channels.
type NotificationSettings struct {
	AdminNotifications   bool `json:"adminNotifications"`
	PaymentNotifications bool `json:"paymentNotifications"`
}

// Settings is the persisted admin configuration document.
type Settings struct {
	Payment       PaymentSettings      `json:"paymentSettings"`
	Notifications NotificationSettings `json:"notifications"`
	LogChannels   map[string]string    `json:"logChannels,omitempty"`
}

// PlanPrice resolves the configured price for a plan.
func (s Settings) PlanPrice(plan domain.Plan) (float64, error) {
	switch plan {
	case domain.PlanBasic:
		return s.Payment.BasicPrice, nil
	case domain.PlanStandard:
		return s.Payment.StandardPrice, nil
	case domain.PlanPremium:
		return s.Payment.PremiumPrice, nil
	}
	return 0, fmt.Errorf("unknown plan %q", plan)
}

// Defaults returns the settings used when no file exists yet.
func Defaults() Settings {
	return Settings{
		Payment: PaymentSettings{
			BasicPrice:    15.00,
			StandardPrice: 25.00,
			PremiumPrice:  50.00,
			PixEnabled:    true,
			AutoDeploy:    true,
		},
		Notifications: NotificationSettings{
			AdminNotifications:   true,
			PaymentNotifications: true,
		},
	}
}

// Store reads and writes the settings file. Load re-reads from disk on
// every call so admin changes apply to in-flight sessions at the next
// checkpoint (payment creation) without a restart.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore returns a store bound to the given file path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load returns the current settings, falling back to defaults when the
// file is missing or unreadable.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("settings read failed, using defaults", "path", s.path, "error", err)
		}
		return Defaults()
	}
	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.logger.Warn("settings file malformed, using defaults", "path", s.path, "error", err)
		return Defaults()
	}
	return cfg
}

// Save persists the settings atomically (write to temp, then rename).
func (s *Store) Save(cfg Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close settings file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
