package intake

import (
	"time"

	"github.com/cashcarbc/voice-intake/internal/offer"
	"github.com/cashcarbc/voice-intake/internal/postal"
)

// Match is a spoken value run through a reference vocabulary.
type Match struct {
	Raw        string  `json:"raw"`
	Normalized string  `json:"normalized"`
	Score      float64 `json:"score"`
}

// Value returns the normalized value, falling back to the raw phrase.
func (m Match) Value() string {
	if m.Normalized != "" {
		return m.Normalized
	}
	return m.Raw
}

// ModelName is the caller's model phrase and its cleaned, title-cased form.
type ModelName struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// OfferState tracks the fixed-price program for one call. Proposed holds an
// amount put to the caller that has not been accepted yet; Final is only set
// once Status is an accepted status.
type OfferState struct {
	Eligible bool `json:"eligible"`
	Initial  *int `json:"initial,omitempty"`
	Proposed *int `json:"proposed,omitempty"`
	Final    *int `json:"final,omitempty"`

	Status       string `json:"status,omitempty"`
	DesiredPrice *int   `json:"desired_price,omitempty"`
}

// setStatus moves the offer forward. Terminal statuses are never replaced.
func (o *OfferState) setStatus(status string) {
	if offer.IsTerminal(o.Status) {
		return
	}
	o.Status = status
}

// accept records an accepted amount together with its status.
func (o *OfferState) accept(status string, amount int) {
	if offer.IsTerminal(o.Status) {
		return
	}
	o.Status = status
	o.Final = intPtr(amount)
	o.Proposed = nil
}

// Callback records where a human should call the caller back.
type Callback struct {
	// UseSameNumber is nil until the caller answers.
	UseSameNumber *bool  `json:"use_same_number,omitempty"`
	Number        string `json:"number,omitempty"`
}

// Session is the per-call intake record.
type Session struct {
	CallID         string    `json:"call_id"`
	Step           Step      `json:"step"`
	CallerNumber   string    `json:"caller_number"`
	CalleeNumber   string    `json:"callee_number"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`

	Drivable    *bool     `json:"drivable,omitempty"`
	Year        string    `json:"year,omitempty"`
	Make        Match     `json:"make"`
	Model       ModelName `json:"model"`
	MileageKm   *int      `json:"mileage_km,omitempty"`
	AskingPrice *int      `json:"asking_price,omitempty"`

	City             Match             `json:"city"`
	PickupPostal     string            `json:"pickup_postal,omitempty"`
	PostalConfidence postal.Confidence `json:"postal_confidence,omitempty"`
	DistanceKm       *float64          `json:"distance_km,omitempty"`

	Condition      string   `json:"condition,omitempty"`
	ConditionFlags []string `json:"condition_flags,omitempty"`

	PricingRuleApplied string `json:"pricing_rule_applied,omitempty"`
	// PriceText is the range read to the caller, e.g. "$120 to $350".
	PriceText string `json:"price_text,omitempty"`

	Offer    OfferState `json:"offer"`
	Callback Callback   `json:"callback"`

	// Retries counts consecutive re-prompts of the current step.
	Retries       int `json:"retries,omitempty"`
	PostalRetries int `json:"postal_retries,omitempty"`
}

// NewSession starts a session at the first step.
func NewSession(in Input, now time.Time) *Session {
	return &Session{
		CallID:         in.CallID,
		Step:           StepDrives,
		CallerNumber:   in.CallerNumber,
		CalleeNumber:   in.CalleeNumber,
		CreatedAt:      now.UTC(),
		LastActivityAt: now.UTC(),
	}
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
