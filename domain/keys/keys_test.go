package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "nonce:0xabc", RedisKey(PfxNonce, "0xabc"))
	assert.Equal(t, "a", RedisKey("a"))
}

func TestGetPrefix(t *testing.T) {
	cases := []struct {
		key string
		res string
	}{
		{"", ""},
		{"single", ""},
		{"nonce:0xabc", "nonce"},
		{"a:b:c", "a:b"},
		{"a:b:c:d", "a:b"},
	}
	for _, c := range cases {
		assert.Equal(t, c.res, GetPrefix(c.key), c.key)
	}
}
