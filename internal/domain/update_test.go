package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionalZeroValueIsUnset(t *testing.T) {
	var o Optional[string]
	assert.False(t, o.IsSet())

	v, ok := o.Get()
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestOptionalSet(t *testing.T) {
	o := Set("photo-ref")
	assert.True(t, o.IsSet())

	v, ok := o.Get()
	assert.True(t, ok)
	assert.Equal(t, "photo-ref", v)

	// An explicitly supplied empty string is still "set": it clears the
	// field rather than leaving it untouched.
	cleared := Set("")
	assert.True(t, cleared.IsSet())
}

func TestJobUpdateEmpty(t *testing.T) {
	assert.True(t, JobUpdate{}.Empty())
	assert.False(t, JobUpdate{Status: Set(JobStatusAccepted)}.Empty())
	assert.False(t, JobUpdate{WorkStartedNotes: Set("arrived")}.Empty())
}
