package vss

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCommentCollapsesCRLF(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("line one\nline two", normalizeComment("line one\r\nline two\r\n"))
	assert.Equal("line one\nline two", normalizeComment("line one\rline two"))
}

func TestAppendCommentDedupsIdenticalText(t *testing.T) {
	assert := assert.New(t)
	c := &Change{}

	appendComment(c, "Fixed the build\r\n")
	appendComment(c, "Fixed the build")
	assert.Equal("Fixed the build", c.Comment, "identical comment text should not be duplicated")
}

func TestAppendCommentKeepsDistinctComments(t *testing.T) {
	assert := assert.New(t)
	c := &Change{}

	appendComment(c, "first file's comment")
	appendComment(c, "second file's comment")
	assert.Equal("first file's comment\n\nsecond file's comment", c.Comment)
}

func TestAppendCommentIgnoresBlank(t *testing.T) {
	assert := assert.New(t)
	c := &Change{}

	appendComment(c, "   \r\n  ")
	assert.Equal("", c.Comment)
}
