package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIdeograph(t *testing.T) {
	assert.True(t, IsIdeograph('一'))
	assert.True(t, IsIdeograph('龥'))
	assert.False(t, IsIdeograph('a'))
	assert.False(t, IsIdeograph('，'))
	assert.False(t, IsIdeograph('龦'))
}

func TestContainsChinese(t *testing.T) {
	assert.True(t, ContainsChinese("hello 世界"))
	assert.False(t, ContainsChinese("hello world"))
	assert.False(t, ContainsChinese(""))
}

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 5, UTF16Len("hello"))
	assert.Equal(t, 2, UTF16Len("世界"))
	assert.Equal(t, 2, UTF16Len("😀"))
	assert.Equal(t, 0, UTF16Len(""))
}

func TestByteOffset(t *testing.T) {
	s := "ab世界c"
	assert.Equal(t, 0, ByteOffset(s, 0))
	assert.Equal(t, 2, ByteOffset(s, 2))
	assert.Equal(t, 5, ByteOffset(s, 3))
	assert.Equal(t, 8, ByteOffset(s, 4))
	assert.Equal(t, len(s), ByteOffset(s, 5))
	assert.Equal(t, -1, ByteOffset(s, 6))
	assert.Equal(t, -1, ByteOffset("😀", 1))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "世界...", Truncate("世界你好", 2))
}

func TestHash(t *testing.T) {
	assert.Equal(t, Hash("账单"), Hash("账单"))
	assert.NotEqual(t, Hash("账单"), Hash("标题"))
	assert.Len(t, Hash(""), 64)
}
