package arbiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual_AdvanceFiresDueTimersInOrder(t *testing.T) {
	m := NewManual(t0)

	var order []string
	m.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	m.AfterFunc(time.Second, func() { order = append(order, "a") })
	m.AfterFunc(time.Minute, func() { order = append(order, "late") })

	m.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, t0.Add(5*time.Second), m.Now())

	m.Advance(time.Minute)
	assert.Equal(t, []string{"a", "b", "late"}, order)
}

func TestManual_StoppedTimerNeverFires(t *testing.T) {
	m := NewManual(t0)

	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())

	m.Advance(time.Hour)
	assert.False(t, fired)
	assert.False(t, timer.Stop(), "second Stop reports the timer was already dead")
}

func TestManual_TimerFiresOnlyOnce(t *testing.T) {
	m := NewManual(t0)

	count := 0
	m.AfterFunc(time.Second, func() { count++ })

	m.Advance(2 * time.Second)
	m.Advance(2 * time.Second)
	assert.Equal(t, 1, count)
}
