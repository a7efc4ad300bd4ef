package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "plain date", input: "2024-02-29", want: NewDate(2024, time.February, 29)},
		{name: "legacy client datetime", input: "2024-03-01 23:15:00", want: NewDate(2024, time.March, 1)},
		{name: "rfc3339", input: "2024-03-01T10:00:00Z", want: NewDate(2024, time.March, 1)},
		{name: "not a date", input: "01/03/2024", wantErr: true},
		{name: "impossible day", input: "2023-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time))
		})
	}
}

func TestDate_JSON(t *testing.T) {
	task := Task{Title: "Buy milk", Deadline: &Date{NewDate(2024, time.May, 7).Time}}

	data, err := json.Marshal(task)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"deadline":"2024-05-07"`)

	var decoded Task
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","deadline":"2024-05-07 00:00:00"}`), &decoded))
	require.NotNil(t, decoded.Deadline)
	assert.Equal(t, "2024-05-07", decoded.Deadline.String())

	var empty Task
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","deadline":null}`), &empty))
	assert.Nil(t, empty.Deadline)
}

func TestPriority_Rank(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, 0, Priority("Urgente").Rank())
	assert.True(t, Priority("").Valid())
	assert.False(t, Priority("High").Valid())
}

func TestNotesTooLong(t *testing.T) {
	assert.False(t, NotesTooLong("ñññññññññññññññññññññññññññññ!"))
	assert.True(t, NotesTooLong("0123456789012345678901234567890"))
}
