package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskcentral/internal/model"
)

func TestValidator_CreateTask(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	tests := []struct {
		name     string
		body     string
		wantErr  bool
		wantPath string
	}{
		{name: "minimal", body: `{"user_id":1,"title":"Buy milk"}`},
		{name: "legacy client payload", body: `{"user_id":1,"title":"Buy milk","deadline":null,"category":"","priority":"Alta","notes":"","attachment":null}`},
		{name: "missing title", body: `{"user_id":1}`, wantErr: true},
		{name: "unknown priority", body: `{"user_id":1,"title":"x","priority":"High"}`, wantErr: true, wantPath: "priority"},
		{name: "notes too long", body: `{"user_id":1,"title":"x","notes":"0123456789012345678901234567890"}`, wantErr: true, wantPath: "notes"},
		{name: "owner is a string", body: `{"user_id":"1","title":"x"}`, wantErr: true, wantPath: "user_id"},
		{name: "not json", body: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task model.Task
			err := v.Decode(CreateTask, []byte(tt.body), &task)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, int64(1), task.UserID)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			if tt.wantPath != "" {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.wantPath, ve.Path)
			}
		})
	}
}

func TestValidator_ShareAndToggle(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	var shared model.SharedTask
	require.NoError(t, v.Decode(ShareTask, []byte(`{"todo_id":3,"user_id":1,"shared_with_id":2,"notes":"hi"}`), &shared))
	assert.Equal(t, int64(3), shared.TaskID)
	assert.Equal(t, int64(2), shared.SharedWithID)

	assert.ErrorIs(t, v.Decode(ShareTask, []byte(`{"todo_id":3,"user_id":1}`), &shared), ErrInvalid)

	var toggle model.ToggleRequest
	require.NoError(t, v.Decode(ToggleTask, []byte(`{"value":true}`), &toggle))
	assert.True(t, toggle.Value)
	assert.ErrorIs(t, v.Decode(ToggleTask, []byte(`{"value":"yes"}`), &toggle), ErrInvalid)
}

func TestValidator_UnknownSchema(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	err = v.Decode("nope", []byte(`{}`), &struct{}{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}
