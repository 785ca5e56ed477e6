package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/cashcarbc/voice-intake/internal/leads"
	"github.com/cashcarbc/voice-intake/internal/offer"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

const retryLimitRulePrefix = "RetryLimit:"

// ReviewNotifier is a lead sink that emails the manager when a call needs a
// human: the caller rejected the final offer or the script gave up.
type ReviewNotifier struct {
	email   EmailSender
	manager string
	logger  *logging.Logger
}

// NewReviewNotifier creates the notifier. An empty manager address disables it.
func NewReviewNotifier(email EmailSender, managerEmail string, logger *logging.Logger) *ReviewNotifier {
	if email == nil {
		panic("notify: email sender required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReviewNotifier{
		email:   email,
		manager: strings.TrimSpace(managerEmail),
		logger:  logger,
	}
}

// NeedsReview reports whether rec should be escalated.
func NeedsReview(rec *leads.Record) bool {
	return rec.AutoOfferStatus == offer.StatusManagerReview ||
		strings.HasPrefix(rec.RuleApplied, retryLimitRulePrefix)
}

// Save sends the review email when rec needs one. Other records are ignored.
func (n *ReviewNotifier) Save(ctx context.Context, rec *leads.Record) error {
	if n.manager == "" || !NeedsReview(rec) {
		return nil
	}
	msg := EmailMessage{
		To:      n.manager,
		Subject: reviewSubject(rec),
		Body:    reviewBody(rec),
	}
	if err := n.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: review email: %w", err)
	}
	n.logger.Info("manager review requested", "call_id", rec.CallID, "status", rec.AutoOfferStatus, "rule", rec.RuleApplied)
	return nil
}

func reviewSubject(rec *leads.Record) string {
	vehicle := strings.TrimSpace(strings.Join([]string{rec.Year, rec.Make, rec.Model}, " "))
	if vehicle == "" {
		vehicle = "vehicle"
	}
	return fmt.Sprintf("Callback needed: %s (%s)", vehicle, rec.Phone)
}

func reviewBody(rec *leads.Record) string {
	var b strings.Builder
	b.WriteString("A caller needs a manager callback.\n\n")
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	line("Phone", rec.Phone)
	callback := rec.Phone
	if rec.CallbackNumber != "" {
		callback = rec.CallbackNumber
	}
	line("Call back on", callback)
	line("Year", rec.Year)
	line("Make", rec.Make)
	line("Model", rec.Model)
	line("City", rec.City)
	line("Postal", rec.PickupPostal)
	if rec.DesiredPrice != nil {
		line("Caller wants", fmt.Sprintf("$%d", *rec.DesiredPrice))
	}
	if rec.AskingPrice != nil {
		line("Asking price", fmt.Sprintf("$%d", *rec.AskingPrice))
	}
	line("Offer status", rec.AutoOfferStatus)
	line("Rule", rec.RuleApplied)
	line("Notes", rec.Notes)
	return b.String()
}
