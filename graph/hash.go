package graph

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/syssam/modelgraph"
)

// Hasher derives a stable identifier from a string key. Implementations
// must be deterministic and safe for concurrent use.
type Hasher interface {
	Hash(key string) string
}

// HasherFunc is an adapter to allow the use of ordinary functions as Hasher.
type HasherFunc func(key string) string

// Hash calls f(key).
func (f HasherFunc) Hash(key string) string { return f(key) }

// SHA1Hasher returns the lowercase hex SHA-1 digest of the key.
type SHA1Hasher struct{}

// Hash implements Hasher.
func (SHA1Hasher) Hash(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// DefaultNamespace is the UUID namespace used by a zero UUIDHasher.
var DefaultNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/syssam/modelgraph"))

// UUIDHasher returns name-based (version 5) UUIDs.
type UUIDHasher struct {
	// Namespace of the generated ids. Zero means DefaultNamespace.
	Namespace uuid.UUID
}

// Hash implements Hasher.
func (h UUIDHasher) Hash(key string) string {
	ns := h.Namespace
	if ns == uuid.Nil {
		ns = DefaultNamespace
	}
	return uuid.NewSHA1(ns, []byte(key)).String()
}

// CachedHasher memoizes the results of another Hasher in a bounded LRU.
type CachedHasher struct {
	next  Hasher
	cache *lru.Cache[string, string]
}

// NewCachedHasher wraps next with an LRU cache holding up to size keys.
func NewCachedHasher(next Hasher, size int) (*CachedHasher, error) {
	if next == nil {
		return nil, modelgraph.NewConfigError("Hasher", nil, "hasher cannot be nil")
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, modelgraph.NewConfigError("CacheSize", size, err.Error())
	}
	return &CachedHasher{next: next, cache: cache}, nil
}

// Hash implements Hasher.
func (h *CachedHasher) Hash(key string) string {
	if id, ok := h.cache.Get(key); ok {
		return id
	}
	id := h.next.Hash(key)
	h.cache.Add(key, id)
	return id
}

// Len returns the number of cached keys.
func (h *CachedHasher) Len() int { return h.cache.Len() }

// ParseHasher returns the hasher registered under name: "sha1" or "uuid".
func ParseHasher(name string) (Hasher, error) {
	switch name {
	case "", "sha1":
		return SHA1Hasher{}, nil
	case "uuid":
		return UUIDHasher{}, nil
	default:
		return nil, modelgraph.NewConfigError("Hasher", name, "unsupported hasher; use sha1 or uuid")
	}
}

// EdgeKey composes the hashing input of an edge.
func EdgeKey(typ, source, dest string) string {
	return fmt.Sprintf("%s(%s,%s)", typ, source, dest)
}
