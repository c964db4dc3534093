package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/distiviz/internal/types"
)

func day(y int, m time.Month, d int) types.Value {
	return types.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestCoerceDate(t *testing.T) {
	native := day(2023, time.June, 1)

	cases := []struct {
		name string
		in   types.Value
		want types.Value
	}{
		{"native", native, native},
		{"serial number", types.Number(45366), day(2024, time.March, 15)},
		{"serial text", types.String("45366"), day(2024, time.March, 15)},
		{"serial epoch", types.Number(0), day(1899, time.December, 30)},
		{"iso", types.String("2024-03-15"), day(2024, time.March, 15)},
		{"iso datetime", types.String("2024-03-15T00:00:00Z"), day(2024, time.March, 15)},
		{"day first slash", types.String("15/03/2024"), day(2024, time.March, 15)},
		{"day first dash", types.String("5-3-24"), day(2024, time.March, 5)},
		{"two digit year", types.String("01/12/09"), day(2009, time.December, 1)},
		{"three digit year", types.String("1/2/123"), types.Null()},
		{"five digit year", types.String("1/2/20245"), types.Null()},
		{"impossible day", types.String("31/02/2024"), types.Null()},
		{"month out of range", types.String("01/13/2024"), types.Null()},
		{"garbage", types.String("soon"), types.Null()},
		{"empty", types.String("  "), types.Null()},
		{"null", types.Null(), types.Null()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.want.Equal(CoerceDate(tc.in)), "got %v want %v", CoerceDate(tc.in), tc.want)
		})
	}
}

func TestCoerceDateFractionalSerial(t *testing.T) {
	got := CoerceDate(types.Number(45366.5))
	assert.Equal(t, time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC), got.Time())
}

func TestCoerceRevenue(t *testing.T) {
	assert.Equal(t, 1234567.5, CoerceRevenue(types.String(" 1,234,567.5 ")).Num())
	assert.Equal(t, 1500.0, CoerceRevenue(types.String("1 500")).Num())
	assert.Equal(t, 42.0, CoerceRevenue(types.Number(42)).Num())

	for _, in := range []types.Value{types.String("n/a"), types.String(""), types.Null(), types.String("NaN")} {
		got := CoerceRevenue(in)
		assert.Equal(t, types.KindNumber, got.Kind())
		assert.Zero(t, got.Num())
	}
}

func TestCoerceConfidence(t *testing.T) {
	assert.Equal(t, 80.0, CoerceConfidence(types.String("80%")).Num())
	assert.Equal(t, 75.5, CoerceConfidence(types.String(" 75.5 % ")).Num())
	assert.Equal(t, 0.8, CoerceConfidence(types.Number(0.8)).Num())

	for _, in := range []types.Value{types.String("high"), types.String(""), types.String("%"), types.Null()} {
		got := CoerceConfidence(in)
		assert.Equal(t, types.KindString, got.Kind())
		assert.Equal(t, "", got.Str())
	}
}
