package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashcarbc/voice-intake/internal/offer"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestMachine(cfg MachineConfig) *Machine {
	cfg.Now = func() time.Time { return fixedNow }
	return NewMachine(cfg)
}

func digits(d string) Input { return Input{CallID: "CA1", Digits: d} }

func speech(s string) Input { return Input{CallID: "CA1", Speech: s} }

func newTestSession() *Session {
	return NewSession(Input{CallID: "CA1", CallerNumber: "+16045550101", CalleeNumber: "+16045550000"}, fixedNow)
}

// play feeds inputs in order and returns the last outcome. Every input but
// the last must keep the call going.
func play(t *testing.T, m *Machine, s *Session, inputs ...Input) Outcome {
	t.Helper()
	var out Outcome
	for i, in := range inputs {
		var err error
		out, err = m.Advance(s, in)
		require.NoError(t, err, "input %d at step %s", i, s.Step)
		if i < len(inputs)-1 {
			require.False(t, out.Terminal(), "call ended early at input %d", i)
		}
	}
	return out
}

func TestHandlersCoverEveryStep(t *testing.T) {
	for _, step := range Steps() {
		if step == StepDone {
			_, ok := handlers[step]
			assert.False(t, ok)
			continue
		}
		_, ok := handlers[step]
		assert.True(t, ok, "no handler for %s", step)
	}
	assert.Len(t, handlers, len(Steps())-1)
}

func TestGreeting(t *testing.T) {
	m := newTestMachine(MachineConfig{BusinessName: "Cash Car"})
	turn := m.Greeting()
	require.Len(t, turn.Preamble, 1)
	assert.Contains(t, turn.Preamble[0], "Cash Car")
	assert.Equal(t, promptDrives, turn.Text)
	assert.Equal(t, ModeDigits, turn.Mode)
	assert.Equal(t, ActionCollect, turn.Action)
}

func TestScenarioQuote(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	out := play(t, m, s,
		digits("1"),
		digits("2012"),
		speech("Ford"),
		speech("civic"),
		digits("150000"),
		digits("1200"),
		speech("surrey"),
		digits("1"),
		speech("V3S 1A1"),
	)
	assert.Equal(t, StepPostalConfirm, s.Step)
	assert.Equal(t, "V3S 1A1", s.PickupPostal)

	out = play(t, m, s, digits("1"))
	assert.Equal(t, "V3S 1A1", out.LookupPostal)
	assert.Equal(t, StepCondition, s.Step)

	km := 12.3
	s.DistanceKm = &km
	out = play(t, m, s, speech("some rust and normal wear"))

	require.True(t, out.Terminal())
	assert.Equal(t, DispositionQuote, out.Disposition)
	assert.Equal(t, StepDone, s.Step)
	assert.Equal(t, "$375 to $775", s.PriceText)
	assert.Equal(t, []string{"rust", "wear"}, s.ConditionFlags)
	assert.Equal(t, "Civic", s.Model.Normalized)
	assert.Equal(t, "Surrey", s.City.Normalized)
	require.Len(t, out.Turn.Preamble, 1)
	assert.Equal(t, "Thanks. For your 2012 Ford Civic in Surrey about 12.3 kilometers away, our rough estimate is $375 to $775.", out.Turn.Preamble[0])
	assert.Equal(t, promptQuoteClosing, out.Turn.Text)
	assert.False(t, s.Offer.Eligible)
	assert.Nil(t, s.Offer.Final)
}

func TestScenarioEarlyBelowInitial(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	out := play(t, m, s, digits("2"), digits("1998"), speech("Honda"))
	assert.Equal(t, StepEarlyAskPrice, s.Step)
	assert.Equal(t, ModeEither, out.Turn.Mode)
	assert.Equal(t, "#", out.Turn.FinishOnKey)
	assert.Equal(t, RuleEarlyPremiumOldNonDrive, s.PricingRuleApplied)

	out = play(t, m, s, digits("250"))
	require.True(t, out.Terminal())
	assert.Equal(t, DispositionOfferAccepted, out.Disposition)
	assert.Equal(t, offer.StatusAcceptedBelow300, s.Offer.Status)
	require.NotNil(t, s.Offer.Final)
	assert.Equal(t, 250, *s.Offer.Final)
	assert.Equal(t, 250, *s.Offer.DesiredPrice)
	assert.Equal(t, RuleEarlyAcceptedBelow300, s.PricingRuleApplied)
}

func TestScenarioEarlyPremiumAccepted(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	out := play(t, m, s, digits("2"), digits("1995"), speech("toyota"), speech("five hundred dollars"))
	assert.Equal(t, promptEarlyAskPriceRetry, out.Turn.Text)
	assert.True(t, out.Reprompted)

	out = play(t, m, s, speech("500"))
	assert.Equal(t, StepEarlyOfferConfirm, s.Step)
	assert.Equal(t, offer.StatusOffered350, s.Offer.Status)
	require.NotNil(t, s.Offer.Proposed)
	assert.Equal(t, 350, *s.Offer.Proposed)
	assert.Nil(t, s.Offer.Final)
	assert.Contains(t, out.Turn.Text, "350 dollars")

	out = play(t, m, s, digits("1"))
	require.True(t, out.Terminal())
	assert.Equal(t, offer.StatusAccepted350, s.Offer.Status)
	assert.Equal(t, 350, *s.Offer.Final)
	assert.Nil(t, s.Offer.Proposed)
	assert.Equal(t, RuleEarlyAccepted350, s.PricingRuleApplied)
}

func TestScenarioEarlyRejectedGoesToCallback(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	play(t, m, s, digits("2"), digits("2000"), speech("Honda"), digits("900"), digits("2"))
	assert.Equal(t, StepCallbackBestNumber, s.Step)
	assert.Equal(t, offer.StatusManagerReview, s.Offer.Status)
	assert.Equal(t, RuleEarlyRejected350, s.PricingRuleApplied)

	out := play(t, m, s, digits("1"))
	require.True(t, out.Terminal())
	assert.Equal(t, DispositionCallback, out.Disposition)
	require.NotNil(t, s.Callback.UseSameNumber)
	assert.True(t, *s.Callback.UseSameNumber)
}

// oldNonDrivable plays a non-premium, eligible vehicle up to the auto offer.
func oldNonDrivable(t *testing.T, m *Machine, s *Session) Outcome {
	t.Helper()
	return play(t, m, s,
		digits("2"),
		digits("1999"),
		speech("Ford"),
		speech("taurus"),
		digits("240000"),
		digits("800"),
		speech("langley"),
		speech("yes"),
		speech("V two Y one A one"),
		speech("that's right"),
		speech("engine does not start"),
	)
}

func TestScenarioAutoOfferAccepted(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	out := oldNonDrivable(t, m, s)
	assert.Equal(t, StepAutoOfferPresent, s.Step)
	assert.Equal(t, "Based on the details, we can offer $300. Press 1 to accept. Press 2 to make a counter offer.", out.Turn.Text)
	assert.True(t, s.Offer.Eligible)
	assert.Equal(t, 300, *s.Offer.Initial)

	out = play(t, m, s, digits("1"))
	require.True(t, out.Terminal())
	assert.Equal(t, offer.StatusAcceptedInitial, s.Offer.Status)
	assert.Equal(t, 300, *s.Offer.Final)
	assert.Equal(t, RuleAutoOfferAccepted, s.PricingRuleApplied)
}

func TestScenarioCounterAccepted(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	oldNonDrivable(t, m, s)
	out := play(t, m, s, digits("2"), digits("275"))
	require.True(t, out.Terminal())
	assert.Equal(t, offer.StatusAcceptedCounter, s.Offer.Status)
	assert.Equal(t, 275, *s.Offer.Final)
	assert.Equal(t, RuleAutoOfferCounterAccepted, s.PricingRuleApplied)
}

func TestScenarioCounterCappedThenRejected(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	oldNonDrivable(t, m, s)
	out := play(t, m, s, digits("2"), digits("400"))
	assert.Equal(t, StepAutoOfferCapConfirm, s.Step)
	assert.Equal(t, offer.StatusCounteredAtMax, s.Offer.Status)
	assert.Equal(t, 300, *s.Offer.Proposed)
	assert.Nil(t, s.Offer.Final)
	assert.Equal(t, "The best we can do is $300. Press 1 to accept. Press 2 to reject.", out.Turn.Text)

	out = play(t, m, s, digits("2"))
	assert.Equal(t, StepCallbackBestNumber, s.Step)
	assert.Equal(t, offer.StatusManagerReview, s.Offer.Status)
	assert.Equal(t, promptManagerReview, out.Turn.Text)

	out = play(t, m, s, digits("2"), digits("604555123"))
	assert.True(t, out.Reprompted)
	assert.Equal(t, promptCallbackNumberRetry, out.Turn.Text)

	out = play(t, m, s, digits("6045551234"))
	require.True(t, out.Terminal())
	assert.Equal(t, DispositionCallback, out.Disposition)
	assert.Equal(t, "6045551234", s.Callback.Number)
	assert.Equal(t, offer.StatusManagerReview, s.Offer.Status)
	assert.Nil(t, s.Offer.Final)
}

// Old non-drivable Toyota and Honda callers take the early path at the make
// step, so the premium counter is driven from a session placed at the step.
func TestPremiumCounterCappedThenRejected(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()
	s.Drivable = boolPtr(false)
	s.Year = "1999"
	s.Make = Match{Raw: "toyota", Normalized: "Toyota", Score: 1}
	s.Offer.Eligible = true
	s.Offer.Initial = intPtr(300)
	s.Step = StepAutoOfferCounter

	out := play(t, m, s, digits("400"))
	assert.Equal(t, StepAutoOfferCapConfirm, s.Step)
	assert.Equal(t, offer.StatusCounteredAtMax, s.Offer.Status)
	require.NotNil(t, s.Offer.Proposed)
	assert.Equal(t, 350, *s.Offer.Proposed)
	assert.Equal(t, 400, *s.Offer.DesiredPrice)
	assert.Equal(t, "The best we can do is $350. Press 1 to accept. Press 2 to reject.", out.Turn.Text)

	out = play(t, m, s, digits("2"))
	assert.Equal(t, StepCallbackBestNumber, s.Step)
	assert.Equal(t, offer.StatusManagerReview, s.Offer.Status)
	assert.Equal(t, RuleAutoOfferRejectedFinal, s.PricingRuleApplied)
	assert.Equal(t, promptManagerReview, out.Turn.Text)
	assert.Nil(t, s.Offer.Final)
}

func TestScenarioCapAccepted(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	oldNonDrivable(t, m, s)
	out := play(t, m, s, digits("2"), digits("1,000"), digits("1"))
	require.True(t, out.Terminal())
	assert.Equal(t, offer.StatusAcceptedMax, s.Offer.Status)
	assert.Equal(t, 300, *s.Offer.Final)
	assert.Equal(t, 1000, *s.Offer.DesiredPrice)
}

func TestCounterInvalidReprompts(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	oldNonDrivable(t, m, s)
	out := play(t, m, s, digits("2"), speech("whatever you think"))
	assert.True(t, out.Reprompted)
	assert.Equal(t, StepAutoOfferCounter, s.Step)
	assert.Equal(t, promptCounterRetry, out.Turn.Text)
	assert.Equal(t, 1, s.Retries)
}

func TestValidationReprompts(t *testing.T) {
	tests := []struct {
		name   string
		before []Input
		input  Input
		step   Step
		prompt string
	}{
		{"drives", nil, digits("3"), StepDrives, promptDrivesRetry},
		{"year format", []Input{digits("1")}, digits("99"), StepYear, promptYearFormat},
		{"year range", []Input{digits("1")}, digits("2031"), StepYear, "That year is not valid. Please enter a year between 1900 and 2026."},
		{"make empty", []Input{digits("1"), digits("2010")}, speech("  "), StepMake, promptMakeRetry},
		{"mileage format", []Input{digits("1"), digits("2010"), speech("Ford"), speech("Focus")}, digits("1234567"), StepMileage, promptMileageFormat},
		{"mileage range", []Input{digits("1"), digits("2010"), speech("Ford"), speech("Focus")}, digits("900000"), StepMileage, promptMileageRange},
		{"asking price", []Input{digits("1"), digits("2010"), speech("Ford"), speech("Focus"), digits("100")}, digits("5"), StepAskingPrice, promptAskingPriceRetry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(MachineConfig{})
			s := newTestSession()
			if len(tt.before) > 0 {
				play(t, m, s, tt.before...)
			}
			out, err := m.Advance(s, tt.input)
			require.NoError(t, err)
			assert.True(t, out.Reprompted)
			assert.Equal(t, tt.step, s.Step)
			assert.Equal(t, tt.prompt, out.Turn.Text)
		})
	}
}

func TestCityConfirmRejectAsksAgain(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	play(t, m, s, digits("1"), digits("2010"), speech("Ford"), speech("Focus"), digits("100"), digits("900"), speech("surree"))
	assert.Equal(t, "Surrey", s.City.Normalized)

	out := play(t, m, s, speech("no, that is wrong"))
	assert.Equal(t, StepCity, s.Step)
	assert.Equal(t, promptCityAgain, out.Turn.Text)
	assert.Equal(t, Match{}, s.City)
}

func TestConfirmDigitsWinOverSpeech(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	play(t, m, s, digits("1"), digits("2010"), speech("Ford"), speech("Focus"), digits("100"), digits("900"), speech("Burnaby"))
	play(t, m, s, Input{CallID: "CA1", Digits: "2", Speech: "yes"})
	assert.Equal(t, StepCity, s.Step)
}

func TestPostalLowConfidenceReprompts(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()

	play(t, m, s, digits("1"), digits("2010"), speech("Ford"), speech("Focus"), digits("100"), digits("900"), speech("Burnaby"), digits("1"))
	out := play(t, m, s, speech("I don't know it"))
	assert.True(t, out.Reprompted)
	assert.Equal(t, StepPostal, s.Step)
	assert.Equal(t, 1, s.PostalRetries)
}

func TestPostalFallback(t *testing.T) {
	m := newTestMachine(MachineConfig{PostalFallbackAfter: 2})
	s := newTestSession()

	play(t, m, s, digits("1"), digits("2010"), speech("Ford"), speech("Focus"), digits("100"), digits("900"), speech("Burnaby"), digits("1"))
	out := play(t, m, s, speech("no idea"))
	assert.True(t, out.Reprompted)

	out = play(t, m, s, speech("still no idea"))
	assert.False(t, out.Reprompted)
	assert.Equal(t, StepCondition, s.Step)
	assert.Equal(t, RulePostalSkipped, s.PricingRuleApplied)
	assert.Equal(t, []string{promptPostalSkipped}, out.Turn.Preamble)
	assert.Empty(t, out.LookupPostal)

	out = play(t, m, s, speech("fine"))
	require.True(t, out.Terminal())
	assert.Equal(t, "$340 to $740", s.PriceText)
}

func TestPostalConfirmRejectResetsRetries(t *testing.T) {
	m := newTestMachine(MachineConfig{PostalFallbackAfter: 2})
	s := newTestSession()

	play(t, m, s, digits("1"), digits("2010"), speech("Ford"), speech("Focus"), digits("100"), digits("900"), speech("Burnaby"), digits("1"))
	play(t, m, s, speech("no idea"))
	require.Equal(t, 1, s.PostalRetries)

	play(t, m, s, speech("V3S 1A1"))
	out := play(t, m, s, digits("2"))
	assert.Equal(t, StepPostal, s.Step)
	assert.Equal(t, promptPostalAgain, out.Turn.Text)
	assert.Equal(t, 0, s.PostalRetries)

	out = play(t, m, s, speech("hmm"))
	assert.True(t, out.Reprompted)
	assert.Equal(t, StepPostal, s.Step)
	assert.Equal(t, 1, s.PostalRetries)
}

func TestRetryLimitEscalatesToCallback(t *testing.T) {
	m := newTestMachine(MachineConfig{MaxRetries: 2})
	s := newTestSession()

	play(t, m, s, digits("1"))
	play(t, m, s, digits("12"), digits("12"))
	assert.Equal(t, StepYear, s.Step)
	assert.Equal(t, 2, s.Retries)

	out := play(t, m, s, digits("12"))
	assert.Equal(t, StepCallbackBestNumber, s.Step)
	assert.Equal(t, "RetryLimit:year", s.PricingRuleApplied)
	assert.Equal(t, promptRetryLimit, out.Turn.Text)
	assert.Equal(t, 0, s.Retries)
}

func TestRetryLimitInCallbackEndsCall(t *testing.T) {
	m := newTestMachine(MachineConfig{MaxRetries: 1})
	s := newTestSession()
	s.Step = StepCallbackBestNumber

	out := play(t, m, s, digits("9"))
	assert.True(t, out.Reprompted)

	out = play(t, m, s, digits("9"))
	require.True(t, out.Terminal())
	assert.Equal(t, DispositionRetryLimit, out.Disposition)
	assert.Equal(t, promptCallbackGiveUp, out.Turn.Text)
}

func TestUnlimitedRetriesByDefault(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()
	for i := 0; i < 20; i++ {
		out, err := m.Advance(s, digits("7"))
		require.NoError(t, err)
		require.True(t, out.Reprompted)
	}
	assert.Equal(t, StepDrives, s.Step)
}

func TestAdvanceUnknownStep(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()
	s.Step = Step("bogus")

	_, err := m.Advance(s, digits("1"))
	assert.ErrorIs(t, err, ErrUnknownStep)

	s.Step = StepDone
	_, err = m.Advance(s, digits("1"))
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestConfirmWithoutProposedOffer(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	s := newTestSession()
	s.Step = StepAutoOfferCapConfirm

	_, err := m.Advance(s, digits("1"))
	assert.ErrorIs(t, err, ErrNoProposedOffer)
}

func TestTerminalStatusIsMonotone(t *testing.T) {
	var o OfferState
	o.accept(offer.StatusAcceptedInitial, 300)
	o.setStatus(offer.StatusManagerReview)
	o.accept(offer.StatusAcceptedMax, 350)
	assert.Equal(t, offer.StatusAcceptedInitial, o.Status)
	assert.Equal(t, 300, *o.Final)
}

func TestAskInputSettings(t *testing.T) {
	m := newTestMachine(MachineConfig{})
	assert.Equal(t, 4, m.ask(StepYear, "").NumDigits)
	assert.Equal(t, ModeSpeech, m.ask(StepMake, "").Mode)
	assert.Contains(t, m.ask(StepMake, "").Hints, "Toyota")
	assert.Contains(t, m.ask(StepCity, "").Hints, "Surrey")
	assert.Equal(t, ModeEither, m.ask(StepPostalConfirm, "").Mode)
	assert.Equal(t, ModeDigits, m.ask(StepCallbackNumber, "").Mode)
}
