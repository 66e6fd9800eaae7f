package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestNumber(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		currency bool
		decimals int
		want     string
	}{
		{"billions", 1.5e9, true, 2, "$1.50B"},
		{"negative billions", -1.5e9, true, 2, "-$1.50B"},
		{"millions", 2_346_000, true, 2, "$2.35M"},
		{"thousands", 12_500, true, 1, "$12.5K"},
		{"small", 999, true, 2, "$999.00"},
		{"no currency", 3.2e6, false, 2, "3.20M"},
		{"zero", 0, true, 2, "$0.00"},
		{"nan", math.NaN(), true, 2, "N/A"},
		{"inf", math.Inf(1), true, 2, "N/A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.v, tt.currency, tt.decimals))
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "15.32%", Percent(0.1532))
	assert.Equal(t, "-4.00%", Percent(-0.04))
	assert.Equal(t, "N/A", PercentPtr(nil))
	assert.Equal(t, "25.00%", PercentPtr(ptr(0.25)))
	assert.Equal(t, "N/A", Percent(math.NaN()))
}

func TestFixedAndPrice(t *testing.T) {
	assert.Equal(t, "1.23", Fixed(1.2345))
	assert.Equal(t, "N/A", FixedPtr(nil))
	assert.Equal(t, "$189.25", Price(189.25))
	assert.Equal(t, "-$1.50", Price(-1.5))
}

func TestShares(t *testing.T) {
	assert.Equal(t, "15552.8M", Shares(15_552_752_000))
}

func TestCount(t *testing.T) {
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "999", Count(999))
	assert.Equal(t, "164,000", Count(164000))
	assert.Equal(t, "1,234,567", Count(1234567))
	assert.Equal(t, "-12,000", Count(-12000))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "2023", Year("2023-09-30"))
	assert.Equal(t, "N/A", Text(""))
	assert.Equal(t, 1.5, Millions(1.5e6))
	assert.Equal(t, "positive", SignClass(ptr(0.1)))
	assert.Equal(t, "negative", SignClass(ptr(-0.1)))
	assert.Equal(t, "positive", SignClass(ptr(0)))
	assert.Equal(t, "", SignClass(nil))
}
