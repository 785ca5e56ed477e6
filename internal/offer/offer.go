// Package offer implements the fixed-price program for old, non-drivable
// vehicles: eligibility, the initial offer, the per-make cap and counter-offer
// evaluation.
package offer

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// InitialOffer is what every eligible caller hears first.
	InitialOffer = 300
	// StandardCap is the most the program pays for most makes.
	StandardCap = 300
	// PremiumCap applies to the reliability brands in premiumMakes.
	PremiumCap = 350
	// MaxEligibleYear is the newest model year the program buys.
	MaxEligibleYear = 2001
)

var premiumMakes = []string{"toyota", "honda"}

// Status values recorded on the session's offer.
const (
	StatusAcceptedInitial  = "ACCEPTED_300"
	StatusAcceptedCounter  = "ACCEPTED_COUNTER"
	StatusCounteredAtMax   = "COUNTERED_AT_MAX"
	StatusAcceptedMax      = "ACCEPTED_MAX"
	StatusManagerReview    = "MANAGER_REVIEW"
	StatusAcceptedBelow300 = "ACCEPTED_BELOW_300"
	StatusOffered350       = "OFFERED_350"
	StatusAccepted350      = "ACCEPTED_350"
)

// IsAccepted reports whether status is a terminal acceptance.
func IsAccepted(status string) bool {
	switch status {
	case StatusAcceptedInitial, StatusAcceptedCounter, StatusAcceptedMax,
		StatusAcceptedBelow300, StatusAccepted350:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether status may no longer change.
func IsTerminal(status string) bool {
	return IsAccepted(status) || status == StatusManagerReview
}

// Eligible reports whether a vehicle qualifies for the fixed-price program.
// drivable is nil when the caller has not answered yet.
func Eligible(drivable *bool, year string) bool {
	if drivable == nil || *drivable {
		return false
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return false
	}
	return y <= MaxEligibleYear
}

// IsPremiumMake reports whether vehicleMake names one of the higher-cap brands as
// a whole word.
func IsPremiumMake(vehicleMake string) bool {
	m := strings.ToLower(vehicleMake)
	for _, brand := range premiumMakes {
		if premiumWord[brand].MatchString(m) {
			return true
		}
	}
	return false
}

var premiumWord = map[string]*regexp.Regexp{
	"toyota": regexp.MustCompile(`\btoyota\b`),
	"honda":  regexp.MustCompile(`\bhonda\b`),
}

// Initial returns the opening offer. The year is accepted so the rule can
// vary by age later; today it is flat.
func Initial(_ string) int {
	return InitialOffer
}

// Cap returns the highest amount the program concedes for vehicleMake.
func Cap(vehicleMake string) int {
	m := strings.ToLower(vehicleMake)
	for _, brand := range premiumMakes {
		if strings.Contains(m, brand) {
			return PremiumCap
		}
	}
	return StandardCap
}

var desiredDigits = regexp.MustCompile(`\d{2,7}`)

// ParseDesiredPrice reads a dollar amount from keypad digits or speech.
// Thousands separators are ignored; the first run of 2-7 digits wins.
func ParseDesiredPrice(raw string) (int, bool) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	match := desiredDigits.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	v, err := strconv.Atoi(match)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Kind names a counter-offer decision.
type Kind string

const (
	KindAcceptDesired  Kind = "ACCEPT_DESIRED"
	KindCapAtMax       Kind = "CAP_AT_MAX"
	KindInvalidDesired Kind = "INVALID_DESIRED"
)

// Decision is the result of EvaluateCounter. It is one of Accepted, Capped or
// Invalid.
type Decision interface {
	Kind() Kind
}

// Accepted means the caller's price is within the cap and is taken as is.
type Accepted struct {
	Cap   int
	Price int
}

func (a Accepted) Kind() Kind { return KindAcceptDesired }

// Capped means the caller asked for more than the cap. The cap is proposed as
// a final offer that still needs an explicit yes or no.
type Capped struct {
	Cap     int
	Desired int
}

func (c Capped) Kind() Kind { return KindCapAtMax }

// Invalid means no usable amount was found in the caller's input.
type Invalid struct {
	Cap int
	Raw string
}

func (i Invalid) Kind() Kind { return KindInvalidDesired }

// EvaluateCounter decides what to do with a caller's counter-offer.
func EvaluateCounter(vehicleMake, desiredRaw string) Decision {
	limit := Cap(vehicleMake)
	desired, ok := ParseDesiredPrice(desiredRaw)
	if !ok {
		return Invalid{Cap: limit, Raw: desiredRaw}
	}
	if desired <= limit {
		return Accepted{Cap: limit, Price: desired}
	}
	return Capped{Cap: limit, Desired: desired}
}
