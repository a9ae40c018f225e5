package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:00", want: "09:00"},
		{in: "9:05", want: "09:05"},
		{in: "23:59", want: "23:59"},
		{in: "14:30:00", want: "14:30"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTimeOfDayAdd(t *testing.T) {
	start := MustTimeOfDay(23, 30)

	end, err := start.Add(29)
	require.NoError(t, err)
	assert.Equal(t, "23:59", end.String())

	_, err = start.Add(30)
	require.ErrorIs(t, err, ErrTimeOverflow)

	_, err = start.Add(45)
	require.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeOfDayJSON(t *testing.T) {
	data, err := json.Marshal(MustTimeOfDay(9, 5))
	require.NoError(t, err)
	assert.Equal(t, `"09:05"`, string(data))

	var parsed TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"17:45"`), &parsed))
	assert.Equal(t, MustTimeOfDay(17, 45), parsed)

	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &parsed))
}

func TestTimeOfDayScan(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan("10:30:00"))
	assert.Equal(t, MustTimeOfDay(10, 30), tod)

	require.NoError(t, tod.Scan([]byte("08:15:00")))
	assert.Equal(t, MustTimeOfDay(8, 15), tod)

	assert.Error(t, tod.Scan(42))
}

func TestOverlaps(t *testing.T) {
	tenAM := MustTimeOfDay(10, 0)
	tenThirty := MustTimeOfDay(10, 30)
	elevenAM := MustTimeOfDay(11, 0)
	tenFifteen := MustTimeOfDay(10, 15)

	// Identical intervals.
	assert.True(t, Overlaps(tenAM, tenThirty, tenAM, tenThirty))
	// Partial overlap, both directions.
	assert.True(t, Overlaps(tenAM, tenThirty, tenFifteen, elevenAM))
	assert.True(t, Overlaps(tenFifteen, elevenAM, tenAM, tenThirty))
	// Containment.
	assert.True(t, Overlaps(tenAM, elevenAM, tenFifteen, tenThirty))
	// Back-to-back intervals do not overlap.
	assert.False(t, Overlaps(tenAM, tenThirty, tenThirty, elevenAM))
	assert.False(t, Overlaps(tenThirty, elevenAM, tenAM, tenThirty))
}
