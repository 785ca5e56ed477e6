package voice

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/cashcarbc/voice-intake/internal/intake"
)

const (
	DefaultVoice         = "Polly-Matthew-Neural"
	DefaultLanguage      = "en-CA"
	DefaultCollectPath   = "/twilio/collect"
	DefaultGatherTimeout = 12
	noInputPrompt        = "Sorry, I did not get that."
)

type response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type say struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	Timeout       int      `xml:"timeout,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	Language      string   `xml:"language,attr,omitempty"`
	Hints         string   `xml:"hints,attr,omitempty"`
	NumDigits     int      `xml:"numDigits,attr,omitempty"`
	FinishOnKey   string   `xml:"finishOnKey,attr,omitempty"`
	Say           say
}

type redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr"`
	URL     string   `xml:",chardata"`
}

type hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Renderer turns intake turns into TwiML documents.
type Renderer struct {
	Voice         string
	Language      string
	ActionURL     string
	GatherTimeout int
}

// NewRenderer fills unset fields with the defaults.
func NewRenderer(voiceName, language, actionURL string) *Renderer {
	if voiceName == "" {
		voiceName = DefaultVoice
	}
	if language == "" {
		language = DefaultLanguage
	}
	if actionURL == "" {
		actionURL = DefaultCollectPath
	}
	return &Renderer{
		Voice:         voiceName,
		Language:      language,
		ActionURL:     actionURL,
		GatherTimeout: DefaultGatherTimeout,
	}
}

func (r *Renderer) say(text string) say {
	return say{Voice: r.Voice, Language: r.Language, Text: text}
}

// Render builds the TwiML for t. Collect turns gather input and fall back to
// a redirect when the caller says nothing; terminal turns hang up.
func (r *Renderer) Render(t intake.Turn) ([]byte, error) {
	doc := response{}
	for _, line := range t.Preamble {
		doc.Verbs = append(doc.Verbs, r.say(line))
	}

	if t.Terminal() {
		if t.Text != "" {
			doc.Verbs = append(doc.Verbs, r.say(t.Text))
		}
		doc.Verbs = append(doc.Verbs, hangup{})
	} else {
		g := gather{
			Input:         gatherInput(t.Mode),
			Action:        r.ActionURL,
			Method:        "POST",
			Timeout:       r.GatherTimeout,
			SpeechTimeout: "auto",
			Language:      r.Language,
			Hints:         strings.Join(t.Hints, ", "),
			NumDigits:     t.NumDigits,
			FinishOnKey:   t.FinishOnKey,
			Say:           r.say(t.Text),
		}
		doc.Verbs = append(doc.Verbs,
			g,
			r.say(noInputPrompt),
			redirect{Method: "POST", URL: r.ActionURL},
		)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("voice: encode twiml: %w", err)
	}
	return buf.Bytes(), nil
}

func gatherInput(mode intake.Mode) string {
	switch mode {
	case intake.ModeDigits:
		return "dtmf"
	case intake.ModeSpeech:
		return "speech"
	default:
		return "dtmf speech"
	}
}
