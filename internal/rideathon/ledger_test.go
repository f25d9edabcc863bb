package rideathon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(min int) time.Time { return t0.Add(time.Duration(min) * time.Minute) }

func atPtr(min int) *time.Time {
	t := at(min)
	return &t
}

func TestModifierActiveAt(t *testing.T) {
	tests := []struct {
		name string
		mod  Modifier
		at   time.Time
		want bool
	}{
		{"before start", Modifier{CreatedAt: at(0), StartsAt: atPtr(10)}, at(5), false},
		{"at start", Modifier{CreatedAt: at(0), StartsAt: atPtr(10)}, at(10), true},
		{"open ended", Modifier{CreatedAt: at(0), StartsAt: atPtr(10)}, at(1000), true},
		{"at end", Modifier{CreatedAt: at(0), StartsAt: atPtr(10), EndsAt: atPtr(20)}, at(20), false},
		{"inside window", Modifier{CreatedAt: at(0), StartsAt: atPtr(10), EndsAt: atPtr(20)}, at(15), true},
		{"no start uses creation", Modifier{CreatedAt: at(5)}, at(4), false},
		{"no start after creation", Modifier{CreatedAt: at(5)}, at(6), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mod.ActiveAt(tt.at))
		})
	}
}

func TestMultiplierComposes(t *testing.T) {
	mods := []Modifier{
		{Multiplier: 2, ReceiverID: "t1", CreatedAt: at(0)},
		{Multiplier: 1.5, ReceiverID: "t1", CreatedAt: at(0), EndsAt: atPtr(30)},
		{Multiplier: 0, ReceiverID: "t1", CreatedAt: at(0), StartsAt: atPtr(10), EndsAt: atPtr(20)},
		{Multiplier: 10, ReceiverID: "t2", CreatedAt: at(0)},
	}

	assert.Equal(t, 3.0, Multiplier(mods, "t1", at(5)))
	assert.Equal(t, 3.0, Multiplier(mods, "t1", at(15)))
	assert.Equal(t, 2.0, Multiplier(mods, "t1", at(40)))
	assert.Equal(t, 1.0, Multiplier(nil, "t1", at(40)))

	assert.False(t, Paused(mods, "t1", at(5)))
	assert.True(t, Paused(mods, "t1", at(15)))
	assert.False(t, Paused(mods, "t2", at(15)))
	assert.Len(t, ActiveModifiers(mods, "t1", at(15)), 3)
}

func TestOffsetTotal(t *testing.T) {
	offsets := []Offset{
		{Distance: 5, CreatorID: "t1", ReceiverID: "t1", CreatedAt: at(0)},
		{Distance: 2, CreatorID: "t2", ReceiverID: "t1", CreatedAt: at(1)},
		{Distance: 3, CreatorID: "t1", ReceiverID: "t2", CreatedAt: at(2)},
		{Distance: 100, CreatorID: "t1", ReceiverID: "t1", CreatedAt: at(60)},
	}

	assert.Equal(t, 4.0, OffsetTotal(offsets, "t1", at(10)))
	assert.Equal(t, 104.0, OffsetTotal(offsets, "t1", at(60)))
	assert.Equal(t, 1.0, OffsetTotal(offsets, "t2", at(10)))
}
