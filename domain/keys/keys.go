package keys

import (
	"strings"
)

const (
	// PfxNonce is used for prefixing sign-in nonce keys
	PfxNonce = "nonce"
	// PfxHealthCheck is used for the key written by health checks
	PfxHealthCheck = "healthcheck"
	// ChannelEvents is the pub/sub channel committed listing events go to
	ChannelEvents = "escrow:events"
)

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}

// GetPrefix extracts at most the first two components of a key, it is only
// used to tag metrics so the cardinality stays low.
func GetPrefix(key string) string {
	s := strings.Split(key, ":")
	if len(s) > 2 {
		return strings.Join(s[:2], ":")
	} else if len(s) > 1 {
		return s[0]
	}
	return ""
}
