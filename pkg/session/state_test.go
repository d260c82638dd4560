package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMarshal(t *testing.T) {
	s := State{Card: "card1", Port: "DP-2", Previous: []string{"DP-1", "HDMI-A-1"}}
	assert.Equal(t, "card1\nDP-2\nDP-1,HDMI-A-1", string(s.Marshal()))
	assert.Equal(t, "card1-DP-2", s.Connector())

	empty := State{Card: "card0", Port: "HDMI-A-1"}
	assert.Equal(t, "card0\nHDMI-A-1\n", string(empty.Marshal()))
}

func TestParseState(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    State
		wantErr error
	}{
		{
			name: "previous displays",
			in:   "card1\nDP-2\nDP-1,HDMI-A-1",
			want: State{Card: "card1", Port: "DP-2", Previous: []string{"DP-1", "HDMI-A-1"}},
		},
		{
			name: "no previous displays",
			in:   "card1\nDP-2\n",
			want: State{Card: "card1", Port: "DP-2", Previous: []string{}},
		},
		{
			name: "trailing newline",
			in:   "card1\nDP-2\nDP-1\n",
			want: State{Card: "card1", Port: "DP-2", Previous: []string{"DP-1"}},
		},
		{name: "two lines", in: "card1\nDP-2", wantErr: ErrInvalidState},
		{name: "empty", in: "", wantErr: ErrInvalidState},
		{name: "blank card", in: "\n\nDP-1", wantErr: ErrInvalidState},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseState([]byte(tc.in))
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work", "virt_display.state")

	_, err := LoadState(path)
	assert.True(t, errors.Is(err, ErrNoState))
	require.NoError(t, RemoveState(path))

	s := State{Card: "card1", Port: "DP-2", Previous: []string{"DP-1"}}
	require.NoError(t, SaveState(path, s))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "card1\nDP-2\nDP-1", string(raw))

	got, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	require.NoError(t, RemoveState(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
