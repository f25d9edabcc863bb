package eventconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
teams:
  - name: Team Alpha
    members: [Alice, Bob, Charlie]
    color: "#FF6B6B"
    secret_code: alpha2024
  - name: Team Beta
    members: [David, Eve]
    secret_code: beta2024
challenges:
  - name: Speed Demon
    description: Complete a 10-mile ride in under 45 minutes.
    latitude: 40.7128
    longitude: -74.0060
  - name: Babyshark
    description: Sing the whole song.
    pause_distance: false
    latitude: 34.0522
    longitude: -118.2437
`

func TestParse(t *testing.T) {
	ev, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	require.Len(t, ev.Teams, 2)
	assert.Equal(t, "Team Alpha", ev.Teams[0].Name)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, ev.Teams[0].Members)
	assert.Equal(t, "gray", ev.Teams[1].Color)

	require.Len(t, ev.Challenges, 2)
	assert.True(t, ev.Challenges[0].PausesDistance())
	assert.False(t, ev.Challenges[1].PausesDistance())
	assert.Equal(t, -118.2437, ev.Challenges[1].Longitude)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty"},
		{"unknown field", "teams: []\nprizes: []\n", "prizes"},
		{"missing code", "teams:\n  - name: A\n", "secret_code is required"},
		{"duplicate name", "teams:\n  - {name: A, secret_code: x}\n  - {name: a, secret_code: y}\n", "duplicate name"},
		{"duplicate code", "teams:\n  - {name: A, secret_code: x}\n  - {name: B, secret_code: x}\n", "duplicate secret_code"},
		{"bad latitude", "challenges:\n  - {name: C, latitude: 91}\n", "latitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
