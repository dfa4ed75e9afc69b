package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual_AdvanceAndSet(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	c := NewManual(start)

	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestSystem_UsesLocation(t *testing.T) {
	loc := time.FixedZone("test", 3*60*60)
	assert.Equal(t, loc, NewSystem(loc).Now().Location())
	assert.Equal(t, time.UTC, NewSystem(nil).Now().Location())
	assert.Equal(t, time.UTC, System{}.Now().Location())
}
