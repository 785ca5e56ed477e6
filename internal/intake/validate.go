package intake

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cashcarbc/voice-intake/internal/offer"
)

// ValidationError means the caller's input did not fit the current step.
// Reprompt is what the caller hears next.
type ValidationError struct {
	Field    string
	Reprompt string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("intake: invalid %s", e.Field)
}

func invalid(field, reprompt string) *ValidationError {
	return &ValidationError{Field: field, Reprompt: reprompt}
}

var (
	yearPattern        = regexp.MustCompile(`^\d{4}$`)
	mileagePattern     = regexp.MustCompile(`^\d{1,6}$`)
	askingPricePattern = regexp.MustCompile(`^\d{2,7}$`)
	nonDigit           = regexp.MustCompile(`\D`)

	saidYes = regexp.MustCompile(`\b(yes|yeah|yep|correct|right|that'?s right|sure|ok|okay)\b`)
	saidNo  = regexp.MustCompile(`\b(no|nope|nah|incorrect|wrong|not correct)\b`)
)

const (
	minYear    = 1900
	maxMileage = 800000
)

func parseDrives(digits string) (bool, error) {
	switch digits {
	case "1":
		return true, nil
	case "2":
		return false, nil
	default:
		return false, invalid("drives", promptDrivesRetry)
	}
}

func parseYear(digits string, currentYear int) (string, error) {
	if !yearPattern.MatchString(digits) {
		return "", invalid("year", promptYearFormat)
	}
	y, err := strconv.Atoi(digits)
	if err != nil || y < minYear || y > currentYear {
		return "", invalid("year", fmt.Sprintf(promptYearRange, minYear, currentYear))
	}
	return digits, nil
}

func parsePhrase(field, speech, reprompt string) (string, error) {
	phrase := strings.TrimSpace(speech)
	if phrase == "" {
		return "", invalid(field, reprompt)
	}
	return phrase, nil
}

func parseMileage(digits string) (int, error) {
	if !mileagePattern.MatchString(digits) {
		return 0, invalid("mileage", promptMileageFormat)
	}
	km, err := strconv.Atoi(digits)
	if err != nil || km < 0 || km > maxMileage {
		return 0, invalid("mileage", promptMileageRange)
	}
	return km, nil
}

func parseAskingPrice(digits string) (int, error) {
	if !askingPricePattern.MatchString(digits) {
		return 0, invalid("asking_price", promptAskingPriceRetry)
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, invalid("asking_price", promptAskingPriceRetry)
	}
	return v, nil
}

func parseDesiredPrice(raw, reprompt string) (int, error) {
	v, ok := offer.ParseDesiredPrice(raw)
	if !ok {
		return 0, invalid("desired_price", reprompt)
	}
	return v, nil
}

func parseCallbackNumber(digits string) (string, error) {
	n := nonDigit.ReplaceAllString(digits, "")
	if len(n) < 10 || len(n) > 15 {
		return "", invalid("callback_number", promptCallbackNumberRetry)
	}
	return n, nil
}

// parseChoice reads a 1/2 answer. When allowSpeech is set a spoken yes or no
// is accepted too; keys take precedence.
func parseChoice(field string, in Input, allowSpeech bool, reprompt string) (bool, error) {
	switch in.Digits {
	case "1":
		return true, nil
	case "2":
		return false, nil
	}
	if allowSpeech && in.Digits == "" {
		speech := strings.ToLower(in.Speech)
		switch {
		case saidNo.MatchString(speech):
			return false, nil
		case saidYes.MatchString(speech):
			return true, nil
		}
	}
	return false, invalid(field, reprompt)
}

var conditionKeywords = []string{"accident", "engine", "transmission", "fire", "flood", "rust", "wear", "tow"}

// conditionFlags returns the known damage keywords mentioned in a condition
// description, in keyword order.
func conditionFlags(condition string) []string {
	lower := strings.ToLower(condition)
	var flags []string
	for _, kw := range conditionKeywords {
		if strings.Contains(lower, kw) {
			flags = append(flags, kw)
		}
	}
	return flags
}
