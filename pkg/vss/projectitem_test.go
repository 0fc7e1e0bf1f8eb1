package vss

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func physicalName(s string) PhysicalName {
	var p PhysicalName
	copy(p[:], s)
	return p
}

func TestDirectoryStateStaysSortedByIndexKeyThenPhysical(t *testing.T) {
	assert := assert.New(t)
	d := &directoryState{}

	d.insert(&FullName{Name: "Widget.c", IndexKey: "widget.c", Physical: physicalName("BBBBBBBB")})
	d.insert(&FullName{Name: "alpha.txt", IndexKey: "alpha.txt", Physical: physicalName("AAAAAAAA")})
	d.insert(&FullName{Name: "zeta.txt", IndexKey: "zeta.txt", Physical: physicalName("CCCCCCCC")})

	var keys []string
	for _, e := range d.entries {
		keys = append(keys, e.IndexKey)
	}
	assert.Equal([]string{"alpha.txt", "widget.c", "zeta.txt"}, keys)
}

func TestDirectoryStateTieBreaksOnPhysicalName(t *testing.T) {
	assert := assert.New(t)
	d := &directoryState{}

	d.insert(&FullName{Name: "dup", IndexKey: "dup", Physical: physicalName("ZZZZZZZZ")})
	d.insert(&FullName{Name: "dup", IndexKey: "dup", Physical: physicalName("AAAAAAAA")})

	assert.Len(d.entries, 2)
	assert.Equal(physicalName("AAAAAAAA"), d.entries[0].Physical)
	assert.Equal(physicalName("ZZZZZZZZ"), d.entries[1].Physical)
}

func TestDirectoryStateInsertReplacesSameKeyAndPhysical(t *testing.T) {
	assert := assert.New(t)
	d := &directoryState{}

	d.insert(&FullName{Name: "old-case-display", IndexKey: "same", Physical: physicalName("AAAAAAAA")})
	d.insert(&FullName{Name: "new-case-display", IndexKey: "same", Physical: physicalName("AAAAAAAA")})

	assert.Len(d.entries, 1)
	assert.Equal("new-case-display", d.entries[0].Name)
}

func TestDirectoryStateRemove(t *testing.T) {
	assert := assert.New(t)
	d := &directoryState{}
	d.insert(&FullName{Name: "one", IndexKey: "one", Physical: physicalName("AAAAAAAA")})
	d.insert(&FullName{Name: "two", IndexKey: "two", Physical: physicalName("BBBBBBBB")})

	assert.True(d.remove("one", physicalName("AAAAAAAA")))
	assert.False(d.remove("one", physicalName("AAAAAAAA")), "removing twice should report not-found")
	assert.Len(d.entries, 1)
	assert.Equal("two", d.entries[0].Name)
}
