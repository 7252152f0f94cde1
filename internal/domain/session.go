package domain

import "time"

// Plan identifies a hosting plan a user can pay for.
type Plan string

const (
	PlanBasic    Plan = "basic"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// Valid reports whether the plan is one of the known tiers.
func (p Plan) Valid() bool {
	switch p {
	case PlanBasic, PlanStandard, PlanPremium:
		return true
	}
	return false
}

// DefaultMemory returns the memory allocation (MB) a plan starts with.
func (p Plan) DefaultMemory() int {
	switch p {
	case PlanStandard:
		return 512
	case PlanPremium:
		return 1024
	default:
		return 256
	}
}

// Artifact references an uploaded application archive.
type Artifact struct {
	URL      string
	Filename string
	Size     int64
}

// DeployConfig holds the user-supplied deployment parameters.
type DeployConfig struct {
	DisplayName string
	Description string
	MemoryMB    int
	Version     string
}

// PayerIdentity carries the payer data required by the payment provider.
// Collected once per session and immutable afterwards.
type PayerIdentity struct {
	FullName string
	Email    string
	TaxID    string
}

// DeploySession threads a single deploy request from the initial command
// through configuration, payment and deploy. Keyed by requesting user id.
type DeploySession struct {
	UserID    string
	ChannelID string

	Artifact Artifact
	Plan     Plan
	// Price is resolved from current settings when the payment is created,
	// not when the session starts.
	Price float64

	Config DeployConfig
	Payer  *PayerIdentity

	PaymentID     string
	PaymentStatus PaymentStatus

	// ArtifactBytes caches the downloaded archive so manual retries never
	// re-download it.
	ArtifactBytes []byte

	CreatedAt time.Time
}
