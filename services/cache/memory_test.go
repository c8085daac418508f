package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryService(t *testing.T) {
	mc := NewMemoryService(time.Minute)

	_, err := mc.Get("missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, mc.Set("key", []byte("value"), time.Minute))
	value, err := mc.Get("key")
	assert.NoError(t, err)
	assert.Equal(t, "value", string(value))

	assert.NoError(t, mc.Delete("key"))
	_, err = mc.Get("key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryServiceExpiration(t *testing.T) {
	mc := NewMemoryService(time.Minute)

	assert.NoError(t, mc.Set("short", []byte("v"), 20*time.Millisecond))
	assert.NoError(t, mc.Set("forever", []byte("v"), 0))

	time.Sleep(50 * time.Millisecond)

	_, err := mc.Get("short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.Get("forever")
	assert.NoError(t, err)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &MemoryService{}, New(""))
	assert.IsType(t, &MemcacheService{}, New("localhost:11211"))
}
