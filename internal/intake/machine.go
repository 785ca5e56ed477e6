package intake

import (
	"errors"
	"fmt"
	"time"

	"github.com/cashcarbc/voice-intake/internal/offer"
	"github.com/cashcarbc/voice-intake/internal/postal"
	"github.com/cashcarbc/voice-intake/internal/pricing"
	"github.com/cashcarbc/voice-intake/internal/textmatch"
)

// Pricing rule markers written to Session.PricingRuleApplied.
const (
	RuleEarlyPremiumOldNonDrive  = "EarlyToyotaHondaOldNonDrive"
	RuleEarlyAcceptedBelow300    = "EarlyAcceptedBelow300"
	RuleEarlyOffer350            = "EarlyOffer350"
	RuleEarlyAccepted350         = "EarlyAccepted350"
	RuleEarlyRejected350         = "EarlyRejected350"
	RuleAutoOfferAccepted        = "AutoOfferAccepted"
	RuleAutoOfferCappedToMax     = "AutoOfferCappedToMax"
	RuleAutoOfferCounterAccepted = "AutoOfferCounterAccepted"
	RuleAutoOfferMaxAccepted     = "AutoOfferMaxAccepted"
	RuleAutoOfferRejectedFinal   = "AutoOfferRejectedFinal"
	RulePostalDistanceUsed       = "PostalDistanceUsed"
	RulePostalSkipped            = "PostalSkipped"
	RuleDistanceFailedPrefix     = "DistanceFailed:"
	RuleRetryLimitPrefix         = "RetryLimit:"
)

// MachineConfig holds the call script policy.
type MachineConfig struct {
	BusinessName string
	// MaxRetries caps consecutive re-prompts of one step. 0 means unlimited.
	MaxRetries int
	// PostalFallbackAfter skips the postal code after that many failed
	// attempts. 0 keeps asking.
	PostalFallbackAfter int
	Now                 func() time.Time
}

// Machine is the intake state machine. It is pure: it never performs I/O and
// only mutates the session it is given.
type Machine struct {
	cfg    MachineConfig
	cities *textmatch.Matcher
	makes  *textmatch.Matcher
}

// NewMachine builds a machine with the built-in city and make vocabularies.
func NewMachine(cfg MachineConfig) *Machine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.BusinessName == "" {
		cfg.BusinessName = "Cash Car B C"
	}
	return &Machine{
		cfg:    cfg,
		cities: textmatch.NewCityMatcher(),
		makes:  textmatch.NewMakeMatcher(),
	}
}

type stepHandler func(m *Machine, s *Session, in Input) (Outcome, error)

var handlers = map[Step]stepHandler{
	StepDrives:              (*Machine).handleDrives,
	StepYear:                (*Machine).handleYear,
	StepMake:                (*Machine).handleMake,
	StepEarlyAskPrice:       (*Machine).handleEarlyAskPrice,
	StepEarlyOfferConfirm:   (*Machine).handleEarlyOfferConfirm,
	StepModel:               (*Machine).handleModel,
	StepMileage:             (*Machine).handleMileage,
	StepAskingPrice:         (*Machine).handleAskingPrice,
	StepCity:                (*Machine).handleCity,
	StepCityConfirm:         (*Machine).handleCityConfirm,
	StepPostal:              (*Machine).handlePostal,
	StepPostalConfirm:       (*Machine).handlePostalConfirm,
	StepCondition:           (*Machine).handleCondition,
	StepAutoOfferPresent:    (*Machine).handleAutoOfferPresent,
	StepAutoOfferCounter:    (*Machine).handleAutoOfferCounter,
	StepAutoOfferCapConfirm: (*Machine).handleAutoOfferCapConfirm,
	StepCallbackBestNumber:  (*Machine).handleCallbackBestNumber,
	StepCallbackNumber:      (*Machine).handleCallbackNumber,
}

// Greeting is the first turn of a call.
func (m *Machine) Greeting() Turn {
	t := m.ask(StepDrives, promptDrives)
	t.Preamble = []string{fmt.Sprintf(promptGreeting, m.cfg.BusinessName)}
	return t
}

// Advance applies one caller turn to s. Validation failures come back as a
// re-prompt outcome; a non-nil error is an internal fault.
func (m *Machine) Advance(s *Session, in Input) (Outcome, error) {
	h, ok := handlers[s.Step]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownStep, s.Step)
	}
	s.LastActivityAt = m.cfg.Now().UTC()

	out, err := h(m, s, in)
	var verr *ValidationError
	if errors.As(err, &verr) {
		return m.reprompt(s, verr), nil
	}
	return out, err
}

func (m *Machine) handleDrives(s *Session, in Input) (Outcome, error) {
	drives, err := parseDrives(in.Digits)
	if err != nil {
		return Outcome{}, err
	}
	s.Drivable = boolPtr(drives)
	return m.next(s, StepYear, promptYear), nil
}

func (m *Machine) handleYear(s *Session, in Input) (Outcome, error) {
	year, err := parseYear(in.Digits, m.cfg.Now().Year())
	if err != nil {
		return Outcome{}, err
	}
	s.Year = year
	return m.next(s, StepMake, promptMake), nil
}

func (m *Machine) handleMake(s *Session, in Input) (Outcome, error) {
	phrase, err := parsePhrase("make", in.Speech, promptMakeRetry)
	if err != nil {
		return Outcome{}, err
	}
	s.Make = toMatch(m.makes.Normalize(phrase))

	if offer.Eligible(s.Drivable, s.Year) && offer.IsPremiumMake(s.Make.Value()) {
		s.Offer.Eligible = true
		s.PricingRuleApplied = RuleEarlyPremiumOldNonDrive
		return m.next(s, StepEarlyAskPrice, promptEarlyAskPrice), nil
	}
	return m.next(s, StepModel, promptModel), nil
}

func (m *Machine) handleEarlyAskPrice(s *Session, in Input) (Outcome, error) {
	raw := in.Digits
	if raw == "" {
		raw = in.Speech
	}
	desired, err := parseDesiredPrice(raw, promptEarlyAskPriceRetry)
	if err != nil {
		return Outcome{}, err
	}
	s.Offer.DesiredPrice = intPtr(desired)

	if desired < offer.InitialOffer {
		s.Offer.accept(offer.StatusAcceptedBelow300, desired)
		s.PricingRuleApplied = RuleEarlyAcceptedBelow300
		return m.finish(s, DispositionOfferAccepted, fmt.Sprintf(promptAcceptedCounterOkay, desired)), nil
	}

	limit := offer.Cap(s.Make.Value())
	s.Offer.Proposed = intPtr(limit)
	s.Offer.setStatus(offer.StatusOffered350)
	s.PricingRuleApplied = RuleEarlyOffer350
	return m.next(s, StepEarlyOfferConfirm, fmt.Sprintf(promptEarlyOffer, limit)), nil
}

func (m *Machine) handleEarlyOfferConfirm(s *Session, in Input) (Outcome, error) {
	accepted, err := parseChoice("early_offer", in, false, promptAcceptRejectRetry)
	if err != nil {
		return Outcome{}, err
	}
	if !accepted {
		s.Offer.setStatus(offer.StatusManagerReview)
		s.PricingRuleApplied = RuleEarlyRejected350
		return m.next(s, StepCallbackBestNumber, promptManagerReview), nil
	}
	if s.Offer.Proposed == nil {
		return Outcome{}, ErrNoProposedOffer
	}
	amount := *s.Offer.Proposed
	s.Offer.accept(offer.StatusAccepted350, amount)
	s.PricingRuleApplied = RuleEarlyAccepted350
	return m.finish(s, DispositionOfferAccepted, fmt.Sprintf(promptAcceptedEarly, amount)), nil
}

func (m *Machine) handleModel(s *Session, in Input) (Outcome, error) {
	phrase, err := parsePhrase("model", in.Speech, promptModelRetry)
	if err != nil {
		return Outcome{}, err
	}
	s.Model = ModelName{Raw: phrase, Normalized: textmatch.TitleCase(textmatch.Clean(phrase))}
	return m.next(s, StepMileage, promptMileage), nil
}

func (m *Machine) handleMileage(s *Session, in Input) (Outcome, error) {
	km, err := parseMileage(in.Digits)
	if err != nil {
		return Outcome{}, err
	}
	s.MileageKm = intPtr(km)
	return m.next(s, StepAskingPrice, promptAskingPrice), nil
}

func (m *Machine) handleAskingPrice(s *Session, in Input) (Outcome, error) {
	price, err := parseAskingPrice(in.Digits)
	if err != nil {
		return Outcome{}, err
	}
	s.AskingPrice = intPtr(price)
	return m.next(s, StepCity, promptCity), nil
}

func (m *Machine) handleCity(s *Session, in Input) (Outcome, error) {
	phrase, err := parsePhrase("city", in.Speech, promptCityRetry)
	if err != nil {
		return Outcome{}, err
	}
	s.City = toMatch(m.cities.Normalize(phrase))
	return m.next(s, StepCityConfirm, fmt.Sprintf(promptCityConfirm, s.City.Value())), nil
}

func (m *Machine) handleCityConfirm(s *Session, in Input) (Outcome, error) {
	confirmed, err := parseChoice("city_confirm", in, true, promptCityConfirmRetry)
	if err != nil {
		return Outcome{}, err
	}
	if !confirmed {
		s.City = Match{}
		return m.next(s, StepCity, promptCityAgain), nil
	}
	return m.next(s, StepPostal, promptPostal), nil
}

func (m *Machine) handlePostal(s *Session, in Input) (Outcome, error) {
	res := postal.Extract(in.Speech)
	if !res.OK || !res.Confidence.AtLeast(postal.ConfidenceMedium) {
		s.PostalRetries++
		if m.cfg.PostalFallbackAfter > 0 && s.PostalRetries >= m.cfg.PostalFallbackAfter {
			s.PricingRuleApplied = RulePostalSkipped
			out := m.next(s, StepCondition, promptCondition)
			out.Turn.Preamble = []string{promptPostalSkipped}
			return out, nil
		}
		return Outcome{}, invalid("postal", promptPostalRetry)
	}
	s.PickupPostal = res.Code()
	s.PostalConfidence = res.Confidence
	return m.next(s, StepPostalConfirm, fmt.Sprintf(promptPostalConfirm, s.PickupPostal)), nil
}

func (m *Machine) handlePostalConfirm(s *Session, in Input) (Outcome, error) {
	confirmed, err := parseChoice("postal_confirm", in, true, promptPostalConfirmRetry)
	if err != nil {
		return Outcome{}, err
	}
	if !confirmed {
		s.PickupPostal = ""
		s.PostalConfidence = ""
		s.PostalRetries = 0
		return m.next(s, StepPostal, promptPostalAgain), nil
	}
	out := m.next(s, StepCondition, promptCondition)
	out.LookupPostal = s.PickupPostal
	return out, nil
}

func (m *Machine) handleCondition(s *Session, in Input) (Outcome, error) {
	condition, err := parsePhrase("condition", in.Speech, promptConditionRetry)
	if err != nil {
		return Outcome{}, err
	}
	s.Condition = condition
	s.ConditionFlags = conditionFlags(condition)

	if offer.Eligible(s.Drivable, s.Year) {
		initial := offer.Initial(s.Year)
		s.Offer.Eligible = true
		s.Offer.Initial = intPtr(initial)
		return m.next(s, StepAutoOfferPresent, fmt.Sprintf(promptAutoOffer, initial)), nil
	}

	estimate := pricing.Estimate(pricing.Inputs{
		Drivable:   s.Drivable != nil && *s.Drivable,
		Year:       s.Year,
		Location:   s.City.Value(),
		DistanceKm: s.DistanceKm,
	})
	s.PriceText = estimate.String()
	return m.finish(s, DispositionQuote, quoteLines(s)...), nil
}

func (m *Machine) handleAutoOfferPresent(s *Session, in Input) (Outcome, error) {
	accepted, err := parseChoice("auto_offer", in, false, promptAutoOfferRetry)
	if err != nil {
		return Outcome{}, err
	}
	if !accepted {
		return m.next(s, StepAutoOfferCounter, promptCounter), nil
	}
	if s.Offer.Initial == nil {
		return Outcome{}, ErrNoProposedOffer
	}
	amount := *s.Offer.Initial
	s.Offer.accept(offer.StatusAcceptedInitial, amount)
	s.PricingRuleApplied = RuleAutoOfferAccepted
	return m.finish(s, DispositionOfferAccepted, fmt.Sprintf(promptAcceptedAmount, amount)), nil
}

func (m *Machine) handleAutoOfferCounter(s *Session, in Input) (Outcome, error) {
	raw := in.Digits
	if raw == "" {
		raw = in.Speech
	}
	decision := offer.EvaluateCounter(s.Make.Value(), raw)
	switch d := decision.(type) {
	case offer.Invalid:
		return Outcome{}, invalid("desired_price", promptCounterRetry)
	case offer.Accepted:
		s.Offer.DesiredPrice = intPtr(d.Price)
		s.Offer.accept(offer.StatusAcceptedCounter, d.Price)
		s.PricingRuleApplied = RuleAutoOfferCounterAccepted
		return m.finish(s, DispositionOfferAccepted, fmt.Sprintf(promptAcceptedCounterOkay, d.Price)), nil
	case offer.Capped:
		s.Offer.DesiredPrice = intPtr(d.Desired)
		s.Offer.Proposed = intPtr(d.Cap)
		s.Offer.setStatus(offer.StatusCounteredAtMax)
		s.PricingRuleApplied = RuleAutoOfferCappedToMax
		return m.next(s, StepAutoOfferCapConfirm, fmt.Sprintf(promptCapOffer, d.Cap)), nil
	default:
		return Outcome{}, fmt.Errorf("intake: unexpected offer decision %s", decision.Kind())
	}
}

func (m *Machine) handleAutoOfferCapConfirm(s *Session, in Input) (Outcome, error) {
	accepted, err := parseChoice("cap_confirm", in, false, promptAcceptRejectRetry)
	if err != nil {
		return Outcome{}, err
	}
	if !accepted {
		s.Offer.setStatus(offer.StatusManagerReview)
		s.PricingRuleApplied = RuleAutoOfferRejectedFinal
		return m.next(s, StepCallbackBestNumber, promptManagerReview), nil
	}
	if s.Offer.Proposed == nil {
		return Outcome{}, ErrNoProposedOffer
	}
	amount := *s.Offer.Proposed
	s.Offer.accept(offer.StatusAcceptedMax, amount)
	s.PricingRuleApplied = RuleAutoOfferMaxAccepted
	return m.finish(s, DispositionOfferAccepted, fmt.Sprintf(promptAcceptedAmount, amount)), nil
}

func (m *Machine) handleCallbackBestNumber(s *Session, in Input) (Outcome, error) {
	same, err := parseChoice("callback_best_number", in, false, promptCallbackBestRetry)
	if err != nil {
		return Outcome{}, err
	}
	s.Callback.UseSameNumber = boolPtr(same)
	if same {
		s.Callback.Number = ""
		return m.finish(s, DispositionCallback, promptCallbackSame), nil
	}
	return m.next(s, StepCallbackNumber, promptCallbackNumber), nil
}

func (m *Machine) handleCallbackNumber(s *Session, in Input) (Outcome, error) {
	number, err := parseCallbackNumber(in.Digits)
	if err != nil {
		return Outcome{}, err
	}
	s.Callback.Number = number
	return m.finish(s, DispositionCallback, promptCallbackOther), nil
}

// next commits the move to step and asks its question.
func (m *Machine) next(s *Session, step Step, text string) Outcome {
	s.Step = step
	s.Retries = 0
	return Outcome{Turn: m.ask(step, text)}
}

func (m *Machine) finish(s *Session, disposition Disposition, lines ...string) Outcome {
	s.Step = StepDone
	s.Retries = 0
	return Outcome{Turn: terminal(lines...), Disposition: disposition}
}

// reprompt repeats the current step, escalating once the retry ceiling is
// passed.
func (m *Machine) reprompt(s *Session, verr *ValidationError) Outcome {
	s.Retries++
	if m.cfg.MaxRetries > 0 && s.Retries > m.cfg.MaxRetries {
		return m.retryLimit(s)
	}
	return Outcome{Turn: m.ask(s.Step, verr.Reprompt), Reprompted: true}
}

func (m *Machine) retryLimit(s *Session) Outcome {
	if s.Step.isCallback() {
		return m.finish(s, DispositionRetryLimit, promptCallbackGiveUp)
	}
	s.PricingRuleApplied = RuleRetryLimitPrefix + string(s.Step)
	return m.next(s, StepCallbackBestNumber, promptRetryLimit)
}

// ask builds a collect turn with the input settings of step.
func (m *Machine) ask(step Step, text string) Turn {
	t := collect(ModeDigits, text)
	switch step {
	case StepYear:
		t.NumDigits = 4
	case StepMake:
		t.Mode = ModeSpeech
		t.Hints = m.makes.Vocabulary()
	case StepCity:
		t.Mode = ModeSpeech
		t.Hints = m.cities.Vocabulary()
	case StepModel, StepPostal, StepCondition:
		t.Mode = ModeSpeech
	case StepEarlyAskPrice:
		t.Mode = ModeEither
		t.FinishOnKey = "#"
	case StepCityConfirm, StepPostalConfirm:
		t.Mode = ModeEither
	}
	return t
}

func toMatch(r textmatch.Result) Match {
	return Match{Raw: r.Raw, Normalized: r.Normalized, Score: r.Score}
}
