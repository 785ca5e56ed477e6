package voice

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/cashcarbc/voice-intake/internal/intake"
)

var nonDigit = regexp.MustCompile(`\D`)

// ParseCallForm reads one Twilio voice webhook into an intake turn. A missing
// CallSid gets a generated id so the call can still be served.
func ParseCallForm(r *http.Request) (intake.Input, error) {
	if err := r.ParseForm(); err != nil {
		return intake.Input{}, fmt.Errorf("voice: parse form: %w", err)
	}
	callID := strings.TrimSpace(r.FormValue("CallSid"))
	if callID == "" {
		callID = "no-callsid-" + uuid.NewString()
	}
	return intake.Input{
		CallID:       callID,
		CalleeNumber: NormalizeE164(r.FormValue("To")),
		CallerNumber: NormalizeE164(r.FormValue("From")),
		Speech:       strings.TrimSpace(r.FormValue("SpeechResult")),
		Digits:       nonDigit.ReplaceAllString(r.FormValue("Digits"), ""),
	}, nil
}

// NormalizeE164 keeps the digits of a phone number and prefixes "+".
// Non-numeric caller ids such as "anonymous" come back unchanged.
func NormalizeE164(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	digits := nonDigit.ReplaceAllString(value, "")
	if digits == "" {
		return value
	}
	return "+" + digits
}
