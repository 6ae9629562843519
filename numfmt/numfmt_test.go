package numfmt_test

import (
	"testing"

	"github.com/calcmesh/calcmesh/locale"
	"github.com/calcmesh/calcmesh/numfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateToSerialKnownValues(t *testing.T) {
	s, err := numfmt.DateToSerial(1, 1, 1900)
	require.NoError(t, err)
	assert.Equal(t, 2, s)

	s, err = numfmt.DateToSerial(1, 3, 1900)
	require.NoError(t, err)
	assert.Equal(t, 61, s)

	s, err = numfmt.DateToSerial(1, 1, 2020)
	require.NoError(t, err)
	assert.Equal(t, 43831, s)
}

func TestSerialToDateRoundTrips(t *testing.T) {
	for _, serial := range []int{1, 59, 61, 100, 43831} {
		d, m, y := numfmt.SerialToDate(serial)
		back, err := numfmt.DateToSerial(d, m, y)
		require.NoError(t, err)
		assert.Equal(t, serial, back)
	}
}

func TestDateToSerialRejectsInvalidDates(t *testing.T) {
	_, err := numfmt.DateToSerial(31, 2, 2021)
	assert.Error(t, err)
	_, err = numfmt.DateToSerial(1, 13, 2021)
	assert.Error(t, err)
}

func TestParseInputPlainNumber(t *testing.T) {
	p, ok := numfmt.ParseInput("1234", locale.EnUS)
	require.True(t, ok)
	assert.True(t, p.IsNumber)
	assert.Equal(t, 1234.0, p.Value)
}

func TestParseInputGroupedNumber(t *testing.T) {
	p, ok := numfmt.ParseInput("1,234.50", locale.EnUS)
	require.True(t, ok)
	assert.True(t, p.IsNumber)
	assert.InDelta(t, 1234.5, p.Value, 1e-9)
	assert.Equal(t, "#,##0.00", p.Format)
}

func TestParseInputPercentage(t *testing.T) {
	p, ok := numfmt.ParseInput("12%", locale.EnUS)
	require.True(t, ok)
	assert.True(t, p.IsNumber)
	assert.InDelta(t, 0.12, p.Value, 1e-9)
}

func TestParseInputCurrencyPrefix(t *testing.T) {
	p, ok := numfmt.ParseInput("$1,200", locale.EnUS)
	require.True(t, ok)
	assert.True(t, p.IsNumber)
	assert.InDelta(t, 1200, p.Value, 1e-9)
}

func TestParseInputDateSlash(t *testing.T) {
	p, ok := numfmt.ParseInput("3/15/2024", locale.EnUS)
	require.True(t, ok)
	assert.True(t, p.IsDate)
	d, m, y := numfmt.SerialToDate(int(p.Value))
	assert.Equal(t, 15, d)
	assert.Equal(t, 3, m)
	assert.Equal(t, 2024, y)
}

func TestParseInputISODate(t *testing.T) {
	p, ok := numfmt.ParseInput("2024-03-15", locale.EnUS)
	require.True(t, ok)
	assert.True(t, p.IsDate)
	d, m, y := numfmt.SerialToDate(int(p.Value))
	assert.Equal(t, 15, d)
	assert.Equal(t, 3, m)
	assert.Equal(t, 2024, y)
}

func TestParseInputPlainTextFails(t *testing.T) {
	_, ok := numfmt.ParseInput("hello world", locale.EnUS)
	assert.False(t, ok)
}

func TestRenderGeneralInteger(t *testing.T) {
	code := numfmt.Parse("General")
	assert.Equal(t, "42", numfmt.Render(code, 42, locale.EnUS))
}

func TestRenderThousandsSeparator(t *testing.T) {
	code := numfmt.Parse("#,##0.00")
	assert.Equal(t, "1,234.50", numfmt.Render(code, 1234.5, locale.EnUS))
}

func TestRenderPercent(t *testing.T) {
	code := numfmt.Parse("0.00%")
	assert.Equal(t, "12.00%", numfmt.Render(code, 0.12, locale.EnUS))
}

func TestRenderNegativeSection(t *testing.T) {
	code := numfmt.Parse("#,##0;(#,##0)")
	assert.Equal(t, "(1,234)", numfmt.Render(code, -1234, locale.EnUS))
}

func TestRenderDatePattern(t *testing.T) {
	code := numfmt.Parse("yyyy-mm-dd")
	serial, err := numfmt.DateToSerial(15, 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", numfmt.Render(code, float64(serial), locale.EnUS))
}

func TestRenderEsESUsesCommaDecimal(t *testing.T) {
	code := numfmt.Parse("#,##0.00")
	assert.Equal(t, "1.234,50", numfmt.Render(code, 1234.5, locale.EsES))
}
