package coerce_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AliEdi10/artinbooking-sub001/pkg/coerce"
)

func TestFloat(t *testing.T) {
	cases := []struct {
		raw  string
		want *float64
	}{
		{"", nil},
		{"   ", nil},
		{"abc", nil},
		{"NaN", nil},
		{"+Inf", nil},
		{"-Inf", nil},
		{"12.5", fp(12.5)},
		{" 7 ", fp(7)},
		{"-3", fp(-3)},
		{"0", fp(0)},
	}
	for _, tc := range cases {
		got := coerce.Float(tc.raw)
		if tc.want == nil {
			require.Nil(t, got, "raw=%q", tc.raw)
			continue
		}
		require.NotNil(t, got, "raw=%q", tc.raw)
		require.Equal(t, *tc.want, *got, "raw=%q", tc.raw)
	}
}

func TestMinutesTruncatesFractions(t *testing.T) {
	require.Nil(t, coerce.Minutes(""))
	require.Nil(t, coerce.Minutes("x"))

	got := coerce.Minutes("45.9")
	require.NotNil(t, got)
	require.Equal(t, 45, *got)
}

func TestFirstFloatPrecedence(t *testing.T) {
	require.Nil(t, coerce.FirstFloat(nil, nil))
	require.Equal(t, 5.0, *coerce.FirstFloat(fp(5), fp(9)))
	require.Equal(t, 9.0, *coerce.FirstFloat(nil, fp(9)))
}

func TestFirstMinutesFallback(t *testing.T) {
	require.Equal(t, 60, coerce.FirstMinutes(60, nil, nil))
	require.Equal(t, 30, coerce.FirstMinutes(60, ip(30), ip(45)))
	require.Equal(t, 45, coerce.FirstMinutes(60, nil, ip(45)))
	// an explicit zero is a value, not an absence
	require.Equal(t, 0, coerce.FirstMinutes(60, ip(0)))
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }
