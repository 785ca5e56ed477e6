package leads

import (
	"strconv"
	"strings"
	"time"
)

// Record is one finished call, flattened the way the sales team reads it.
type Record struct {
	ID          string    `json:"id"`
	CallID      string    `json:"call_id"`
	Timestamp   time.Time `json:"timestamp"`
	Disposition string    `json:"disposition"`

	CallerName string `json:"caller_name,omitempty"`
	Phone      string `json:"phone"`

	Year      string `json:"year,omitempty"`
	Make      string `json:"make,omitempty"`
	Model     string `json:"model,omitempty"`
	Drives    bool   `json:"drives"`
	MileageKm *int   `json:"mileage_km,omitempty"`

	// PriceGiven is what the caller heard: "$300" or "$120 to $350".
	PriceGiven  string `json:"price_given,omitempty"`
	City        string `json:"city,omitempty"`
	Notes       string `json:"notes,omitempty"`
	AskingPrice *int   `json:"asking_price,omitempty"`

	DistanceKm   *float64 `json:"distance_km,omitempty"`
	PickupPostal string   `json:"pickup_postal,omitempty"`
	CityRaw      string   `json:"city_raw,omitempty"`
	CityScore    float64  `json:"city_score,omitempty"`
	RuleApplied  string   `json:"rule_applied,omitempty"`

	AutoOfferEligible bool   `json:"auto_offer_eligible"`
	AutoOfferInitial  *int   `json:"auto_offer_initial,omitempty"`
	AutoOfferFinal    *int   `json:"auto_offer_final,omitempty"`
	AutoOfferStatus   string `json:"auto_offer_status,omitempty"`
	DesiredPrice      *int   `json:"desired_price,omitempty"`

	// CallbackBestNumber is "Yes", "No" or empty when never asked.
	CallbackBestNumber string `json:"callback_best_number,omitempty"`
	CallbackNumber     string `json:"callback_number,omitempty"`
}

// Validate checks the fields every sink relies on.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.CallID) == "" {
		return ErrMissingCallID
	}
	return nil
}

// SheetColumns is the spreadsheet header in column order.
var SheetColumns = []string{
	"Timestamp", "Caller Name", "Phone Number", "Car Year", "Car Make", "Car Model",
	"Drives?", "Mileage", "AI price given", "City", "Notes", "AskingPrice",
	"Distance KM", "PickupPostal", "CityRaw", "CityScore", "RuleApplied",
	"AutoOfferEligible", "AutoOfferInitial", "AutoOfferFinal", "AutoOfferStatus",
	"CallbackBestNumber", "CallbackNumber", "DesiredPrice",
}

// SheetRow renders the record in SheetColumns order. Unset values are empty
// strings.
func (r *Record) SheetRow() []interface{} {
	return []interface{}{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.CallerName,
		r.Phone,
		r.Year,
		r.Make,
		r.Model,
		yesNo(r.Drives),
		intCell(r.MileageKm),
		r.PriceGiven,
		r.City,
		r.Notes,
		intCell(r.AskingPrice),
		floatCell(r.DistanceKm),
		r.PickupPostal,
		r.CityRaw,
		scoreCell(r.CityScore),
		r.RuleApplied,
		yesNo(r.AutoOfferEligible),
		intCell(r.AutoOfferInitial),
		intCell(r.AutoOfferFinal),
		r.AutoOfferStatus,
		r.CallbackBestNumber,
		r.CallbackNumber,
		intCell(r.DesiredPrice),
	}
}

// ListFilter narrows admin listings.
type ListFilter struct {
	Limit  int
	Offset int
	// Status matches AutoOfferStatus exactly when set.
	Status string
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func scoreCell(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
