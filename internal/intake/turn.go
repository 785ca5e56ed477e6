package intake

// Input is one inbound caller turn.
type Input struct {
	CallID       string
	CalleeNumber string
	CallerNumber string
	Speech       string
	// Digits holds pressed keys with everything but 0-9 removed.
	Digits string
}

// Action tells the transport whether to keep collecting or hang up.
type Action string

const (
	ActionCollect  Action = "collect"
	ActionTerminal Action = "terminal"
)

// Mode is the kind of caller input the next step expects.
type Mode string

const (
	ModeDigits Mode = "digits"
	ModeSpeech Mode = "speech"
	ModeEither Mode = "either"
)

// Turn is what the caller hears next. It carries no markup.
type Turn struct {
	// Preamble is spoken before the prompt and outside the input window.
	Preamble    []string
	Text        string
	Action      Action
	Mode        Mode
	NumDigits   int
	FinishOnKey string
	Hints       []string
}

// Terminal reports whether the call ends after this turn.
func (t Turn) Terminal() bool {
	return t.Action == ActionTerminal
}

// Disposition is how a finished call ended.
type Disposition string

const (
	DispositionQuote         Disposition = "quote"
	DispositionOfferAccepted Disposition = "offer_accepted"
	DispositionCallback      Disposition = "callback"
	DispositionRetryLimit    Disposition = "retry_limit"
	DispositionError         Disposition = "error"
)

// Outcome is the result of advancing a session by one turn. Disposition is
// empty while the call continues. Reprompted is set when the input was
// rejected and nothing was committed. LookupPostal asks the caller of Advance
// to fetch the driving distance to that postal code before saving.
type Outcome struct {
	Turn         Turn
	Disposition  Disposition
	Reprompted   bool
	LookupPostal string
}

// Terminal reports whether the call has reached a disposition.
func (o Outcome) Terminal() bool {
	return o.Disposition != ""
}

func collect(mode Mode, text string) Turn {
	return Turn{Text: text, Action: ActionCollect, Mode: mode}
}

func terminal(lines ...string) Turn {
	if len(lines) == 0 {
		return Turn{Action: ActionTerminal}
	}
	return Turn{
		Preamble: lines[:len(lines)-1],
		Text:     lines[len(lines)-1],
		Action:   ActionTerminal,
	}
}
