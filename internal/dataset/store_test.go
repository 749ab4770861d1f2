package dataset

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddAndGet(t *testing.T) {
	d, err := Parse("a.csv", strings.NewReader("x\n1\n"))
	require.NoError(t, err)

	store := NewStore(nil)
	id := store.Add(d)
	require.NotEmpty(t, id)

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.Equal(t, 1, store.Len())
}

func TestStoreGetUnknownID(t *testing.T) {
	store := NewStore(nil)
	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestStoreInjectableIDGenerator(t *testing.T) {
	n := 0
	store := NewStore(func() string {
		n++
		return fmt.Sprintf("ds-%d", n)
	})

	d, err := Parse("a.csv", strings.NewReader("x\n1\n"))
	require.NoError(t, err)

	assert.Equal(t, "ds-1", store.Add(d))
	assert.Equal(t, "ds-2", store.Add(d))
}
