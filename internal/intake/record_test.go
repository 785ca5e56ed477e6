package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRecord_Callback(t *testing.T) {
	s := newTestSession()
	s.Drivable = boolPtr(false)
	s.Make = Match{Raw: "toyoda", Normalized: "Toyota", Score: 1}
	s.Offer.Status = "MANAGER_REVIEW"
	s.PriceText = ""
	s.Callback = Callback{UseSameNumber: boolPtr(false), Number: "6045551234"}

	rec := BuildRecord(s, DispositionCallback, fixedNow)
	assert.Equal(t, "callback", rec.Disposition)
	assert.Equal(t, "No", rec.CallbackBestNumber)
	assert.Equal(t, "6045551234", rec.CallbackNumber)
	assert.Equal(t, "Toyota", rec.Make)
	assert.Equal(t, "", rec.PriceGiven)
	assert.Equal(t, "CallSid=CA1 | To=+16045550000 | MakeRaw=toyoda", rec.Notes)
	assert.Equal(t, fixedNow, rec.Timestamp)
}

func TestBuildRecord_SameNumber(t *testing.T) {
	s := newTestSession()
	s.Callback.UseSameNumber = boolPtr(true)
	s.Offer.Final = intPtr(300)
	s.PriceText = "$120 to $350"

	rec := BuildRecord(s, DispositionCallback, fixedNow)
	assert.Equal(t, "Yes", rec.CallbackBestNumber)
	assert.Equal(t, "$300", rec.PriceGiven)
}

func TestConditionFlags(t *testing.T) {
	assert.Equal(t, []string{"accident", "engine"}, conditionFlags("Accident damage, ENGINE knocks"))
	assert.Nil(t, conditionFlags("runs fine"))
}

func TestParseChoiceSpeech(t *testing.T) {
	tests := []struct {
		speech string
		want   bool
		ok     bool
	}{
		{"yes", true, true},
		{"Yeah that's right", true, true},
		{"okay", true, true},
		{"nope", false, true},
		{"that is not correct", false, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		got, err := parseChoice("confirm", Input{Speech: tt.speech}, true, "again")
		if !tt.ok {
			assert.Error(t, err, tt.speech)
			continue
		}
		assert.NoError(t, err, tt.speech)
		assert.Equal(t, tt.want, got, tt.speech)
	}

	_, err := parseChoice("confirm", Input{Speech: "yes"}, false, "again")
	assert.Error(t, err)
}

func TestParseCallbackNumber(t *testing.T) {
	n, err := parseCallbackNumber("16045551234")
	assert.NoError(t, err)
	assert.Equal(t, "16045551234", n)

	_, err = parseCallbackNumber("123")
	assert.Error(t, err)
	_, err = parseCallbackNumber("1234567890123456")
	assert.Error(t, err)
}
