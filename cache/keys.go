package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// KeySeparator delimits the type-key namespace from the item identifier.
const KeySeparator = ":"

// KeyDeriver builds stable cache keys for resource types, individual items
// and collection request signatures. Implementations must be pure: the same
// inputs always produce the same key, across processes.
type KeyDeriver interface {
	// ResourceTypeKey fingerprints a logical resource type name. It is the
	// namespace prefix for every item key of that type.
	ResourceTypeKey(resourceType string) string

	// RequestSignatureKey fingerprints a full request path including the raw
	// query string. A non-empty callerID is folded into the key so that
	// identity-scoped collections never share entries across callers.
	RequestSignatureKey(fullPath, callerID string) string

	// ItemKey addresses a single serialized resource body within a type
	// namespace.
	ItemKey(typeKey, id string) string
}

// digestKeyDeriver derives keys from md5 hex digests. Collision resistance at
// cryptographic strength is not required here, only a stable fingerprint that
// every cache backend accepts as a key.
type digestKeyDeriver struct{}

// NewKeyDeriver returns the default digest-based key deriver.
func NewKeyDeriver() KeyDeriver {
	return digestKeyDeriver{}
}

func (digestKeyDeriver) ResourceTypeKey(resourceType string) string {
	return digest(strings.ToLower(resourceType))
}

func (digestKeyDeriver) RequestSignatureKey(fullPath, callerID string) string {
	key := digest(fullPath)
	if callerID != "" {
		key = key + KeySeparator + digest(callerID)
	}
	return key
}

func (digestKeyDeriver) ItemKey(typeKey, id string) string {
	return typeKey + KeySeparator + id
}

func digest(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
