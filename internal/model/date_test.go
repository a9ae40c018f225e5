package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", d.String())

	_, err = ParseDate("10/03/2025")
	assert.Error(t, err)

	_, err = ParseDate("2025-13-01")
	assert.Error(t, err)
}

func TestDateDayOfWeek(t *testing.T) {
	// 2025-03-09 is a Sunday.
	sunday := NewDate(2025, time.March, 9)
	assert.Equal(t, 0, sunday.DayOfWeek())
	assert.Equal(t, 1, sunday.AddDays(1).DayOfWeek())
	assert.Equal(t, 6, sunday.AddDays(6).DayOfWeek())
	assert.Equal(t, 0, sunday.AddDays(7).DayOfWeek())
}

func TestDateComparisons(t *testing.T) {
	d := NewDate(2025, time.March, 10)
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
	assert.True(t, d.Equal(DateOf(time.Date(2025, time.March, 10, 18, 30, 0, 0, time.UTC))))
}

func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(NewDate(2025, time.March, 10))
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-10"`, string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-12-31"`), &parsed))
	assert.Equal(t, NewDate(2025, time.December, 31), parsed)
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-10", d.String())

	require.NoError(t, d.Scan("2025-06-01"))
	assert.Equal(t, "2025-06-01", d.String())

	assert.Error(t, d.Scan(3.14))
}
