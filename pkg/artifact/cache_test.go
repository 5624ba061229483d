package artifact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_LoadsOnce(t *testing.T) {
	calls := 0
	c := &Cache{loader: func(context.Context, Config) (*Bundle, error) {
		calls++
		return &Bundle{}, nil
	}}

	b1, err := c.Get(context.Background())
	require.NoError(t, err)
	b2, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.Same(t, b1, b2)
	assert.Equal(t, 1, calls)
}

func TestCache_DoesNotCacheFailure(t *testing.T) {
	calls := 0
	c := &Cache{loader: func(context.Context, Config) (*Bundle, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return &Bundle{}, nil
	}}

	_, err := c.Get(context.Background())
	assert.Error(t, err)

	b, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Equal(t, 2, calls)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
