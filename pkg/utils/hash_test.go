package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashString(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", HashString(""))
	assert.Equal(t, "9e107d9d372bb6826bd81d3542a419d6", HashString("The quick brown fox jumps over the lazy dog"))
	assert.Equal(t, HashString("ds1|query"), HashString("ds1|query"))
	assert.NotEqual(t, HashString("ds1|query"), HashString("ds2|query"))
}
