package offer

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestEligible(t *testing.T) {
	tests := []struct {
		name     string
		drivable *bool
		year     string
		want     bool
	}{
		{"old non drivable", boolPtr(false), "1999", true},
		{"boundary year", boolPtr(false), "2001", true},
		{"too new", boolPtr(false), "2002", false},
		{"drivable", boolPtr(true), "1990", false},
		{"unanswered", nil, "1990", false},
		{"non numeric year", boolPtr(false), "nineteen ninety", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eligible(tt.drivable, tt.year))
		})
	}
}

func TestCap(t *testing.T) {
	assert.Equal(t, 350, Cap("Toyota"))
	assert.Equal(t, 350, Cap("HONDA"))
	assert.Equal(t, 350, Cap("toyota corolla"))
	assert.Equal(t, 300, Cap("Ford"))
	assert.Equal(t, 300, Cap(""))
}

func TestIsPremiumMake(t *testing.T) {
	assert.True(t, IsPremiumMake("Toyota"))
	assert.True(t, IsPremiumMake("honda civic"))
	assert.False(t, IsPremiumMake("Hondaish"))
	assert.False(t, IsPremiumMake("Nissan"))
}

func TestInitialIgnoresYear(t *testing.T) {
	assert.Equal(t, 300, Initial("1980"))
	assert.Equal(t, 300, Initial("2001"))
}

func TestParseDesiredPrice(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"400", 400, true},
		{"1,200", 1200, true},
		{"about 350 dollars", 350, true},
		{"5", 0, false},
		{"", 0, false},
		{"no idea", 0, false},
		{"00", 0, false},
		{"12345678", 1234567, true},
	}
	for _, tt := range tests {
		got, ok := ParseDesiredPrice(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}

func TestEvaluateCounter_StandardMake(t *testing.T) {
	d := EvaluateCounter("Ford", "301")
	capped, ok := d.(Capped)
	require.True(t, ok, "expected Capped, got %T", d)
	assert.Equal(t, KindCapAtMax, capped.Kind())
	assert.Equal(t, 300, capped.Cap)
	assert.Equal(t, 301, capped.Desired)
}

func TestEvaluateCounter_PremiumMake(t *testing.T) {
	d := EvaluateCounter("Toyota", "350")
	accepted, ok := d.(Accepted)
	require.True(t, ok, "expected Accepted, got %T", d)
	assert.Equal(t, 350, accepted.Price)
	assert.Equal(t, 350, accepted.Cap)

	d = EvaluateCounter("Toyota", "351")
	capped, ok := d.(Capped)
	require.True(t, ok, "expected Capped, got %T", d)
	assert.Equal(t, 350, capped.Cap)
	assert.Equal(t, 351, capped.Desired)
}

func TestEvaluateCounter_CapIsInclusive(t *testing.T) {
	for _, vehicleMake := range []string{"Ford", "Toyota", "Honda", "Kia", "Land Rover"} {
		limit := Cap(vehicleMake)
		d := EvaluateCounter(vehicleMake, strconv.Itoa(limit))
		require.Equal(t, KindAcceptDesired, d.Kind(), vehicleMake)
		assert.Equal(t, limit, d.(Accepted).Price, vehicleMake)
	}
}

func TestEvaluateCounter_Invalid(t *testing.T) {
	d := EvaluateCounter("Ford", "whatever")
	inv, ok := d.(Invalid)
	require.True(t, ok)
	assert.Equal(t, KindInvalidDesired, inv.Kind())
	assert.Equal(t, 300, inv.Cap)
	assert.Equal(t, "whatever", inv.Raw)
}

func TestStatuses(t *testing.T) {
	for _, s := range []string{StatusAcceptedInitial, StatusAcceptedCounter, StatusAcceptedMax, StatusAcceptedBelow300, StatusAccepted350} {
		assert.True(t, IsAccepted(s), s)
		assert.True(t, IsTerminal(s), s)
	}
	assert.False(t, IsAccepted(StatusManagerReview))
	assert.True(t, IsTerminal(StatusManagerReview))
	assert.False(t, IsTerminal(StatusCounteredAtMax))
	assert.False(t, IsTerminal(StatusOffered350))
}
