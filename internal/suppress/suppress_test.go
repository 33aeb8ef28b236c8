package suppress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlags_AcquireRelease(t *testing.T) {
	var f Flags

	assert.False(t, f.Suppressed(SetCursor))

	tok := f.Acquire(SetCursor)
	assert.True(t, f.Suppressed(SetCursor))
	assert.False(t, f.Suppressed(ShowCursor), "points are independent")

	tok.Release()
	assert.False(t, f.Suppressed(SetCursor))
}

func TestFlags_NestedAcquisition(t *testing.T) {
	var f Flags

	outer := f.Acquire(ClipCursor)
	inner := f.Acquire(ClipCursor)

	inner.Release()
	assert.True(t, f.Suppressed(ClipCursor), "still held by outer token")

	outer.Release()
	assert.False(t, f.Suppressed(ClipCursor))
}

func TestToken_DoubleReleaseIsNoop(t *testing.T) {
	var f Flags

	tok := f.Acquire(ShowCursor)
	tok.Release()
	tok.Release()

	assert.False(t, f.Suppressed(ShowCursor))

	// A fresh acquire still works after the double release.
	tok2 := f.Acquire(ShowCursor)
	assert.True(t, f.Suppressed(ShowCursor))
	tok2.Release()
	assert.False(t, f.Suppressed(ShowCursor))
}

func TestPoint_String(t *testing.T) {
	assert.Equal(t, "SetCursor", SetCursor.String())
	assert.Equal(t, "RegisterRawInputDevices", RegisterRawInputDevices.String())
	assert.Equal(t, "Unknown", Point(99).String())
}
