package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/cashcarbc/voice-intake/internal/leads"
)

// BuildRecord flattens a finished session into the lead row.
func BuildRecord(s *Session, disposition Disposition, now time.Time) *leads.Record {
	rec := &leads.Record{
		CallID:      s.CallID,
		Timestamp:   now.UTC(),
		Disposition: string(disposition),
		Phone:       s.CallerNumber,
		Year:        s.Year,
		Make:        s.Make.Value(),
		Model:       s.Model.Normalized,
		Drives:      s.Drivable != nil && *s.Drivable,
		MileageKm:   s.MileageKm,
		PriceGiven:  priceGiven(s),
		City:        s.City.Value(),
		Notes:       notes(s),
		AskingPrice: s.AskingPrice,

		DistanceKm:   s.DistanceKm,
		PickupPostal: s.PickupPostal,
		CityRaw:      s.City.Raw,
		CityScore:    s.City.Score,
		RuleApplied:  s.PricingRuleApplied,

		AutoOfferEligible: s.Offer.Eligible,
		AutoOfferInitial:  s.Offer.Initial,
		AutoOfferFinal:    s.Offer.Final,
		AutoOfferStatus:   s.Offer.Status,
		DesiredPrice:      s.Offer.DesiredPrice,

		CallbackNumber: s.Callback.Number,
	}
	if s.Callback.UseSameNumber != nil {
		rec.CallbackBestNumber = "No"
		if *s.Callback.UseSameNumber {
			rec.CallbackBestNumber = "Yes"
		}
	}
	return rec
}

func priceGiven(s *Session) string {
	if s.Offer.Final != nil {
		return fmt.Sprintf("$%d", *s.Offer.Final)
	}
	return s.PriceText
}

func notes(s *Session) string {
	parts := []string{"CallSid=" + s.CallID}
	if s.CalleeNumber != "" {
		parts = append(parts, "To="+s.CalleeNumber)
	}
	if s.Condition != "" {
		parts = append(parts, "Condition="+s.Condition)
	}
	if len(s.ConditionFlags) > 0 {
		parts = append(parts, "Flags="+strings.Join(s.ConditionFlags, ","))
	}
	if s.Make.Raw != "" && s.Make.Raw != s.Make.Normalized {
		parts = append(parts, "MakeRaw="+s.Make.Raw)
	}
	return strings.Join(parts, " | ")
}
