package record

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"yproj/internal/history"
)

func TestRecordDefinedVersusNil(t *testing.T) {
	r := New()
	assert.False(t, r.Defined("name"))

	r.Set("name", nil)
	assert.True(t, r.Defined("name"))

	v, ok := r.Get("name")
	assert.True(t, ok)
	assert.Nil(t, v)

	r.Unset("name")
	assert.False(t, r.Defined("name"))
	assert.Empty(t, r.Names())
}

func TestRecordProvenance(t *testing.T) {
	r := New()
	r.Load("version", "1.0", history.Loaded("/a/sub.yproj", 1))

	origin, ok := r.Origin("version")
	assert.True(t, ok)
	assert.False(t, origin.Writable())

	r.Set("version", "1.1")
	origin, _ = r.Origin("version")
	assert.True(t, origin.Edited)
	assert.Equal(t, "/a/sub.yproj", origin.Source)

	r.Stamp("version", history.Loaded("/a/top.yproj", 0))
	origin, _ = r.Origin("version")
	assert.False(t, origin.Edited)
	assert.Equal(t, 0, origin.Depth)

	r.Stamp("missing", history.Loaded("x", 0))
	assert.False(t, r.Defined("missing"))
}

func TestRecordOrder(t *testing.T) {
	var r Record
	r.Set("b", 1)
	r.Set("a", 2)
	r.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, r.Names())
	assert.Equal(t, 2, r.Len())
	assert.Same(t, &r, r.Record())
}
