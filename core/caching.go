package core

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/huangsam/witdiff/core/normalize"
	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// CachedNormalizer looks up normalized XML in a cache store before normalizing.
// Cache failures fall back to direct normalization.
type CachedNormalizer struct {
	normalizer *normalize.Normalizer
	store      contract.CacheStore
}

// NewCachedNormalizer wraps n with store. A nil store disables caching.
func NewCachedNormalizer(n *normalize.Normalizer, store contract.CacheStore) *CachedNormalizer {
	if n == nil {
		n = normalize.New()
	}
	return &CachedNormalizer{normalizer: n, store: store}
}

// Normalize has the same contract as normalize.Normalizer.Normalize.
func (c *CachedNormalizer) Normalize(item schema.ConfigurationItem, version schema.TfsMajorVersion) (*etree.Document, error) {
	if c.store == nil || item.XMLDefinition == nil {
		// Fallback to direct computation
		return c.normalizer.Normalize(item, version)
	}

	raw, err := item.XMLDefinition.WriteToString()
	if err != nil {
		return c.normalizer.Normalize(item, version)
	}
	key := generateCacheKey(item.Type(), version, c.normalizer.TablesRevision(), raw)

	// Check for cache hit
	if doc := checkCacheHit(c.store, key); doc != nil {
		return doc, nil
	}

	// Cache miss: compute and store
	return computeAndStore(c.normalizer, item, version, c.store, key)
}

// checkCacheHit attempts to retrieve and parse a cached document
func checkCacheHit(store contract.CacheStore, key string) *etree.Document {
	data, version, _, err := store.Get(key)
	if err != nil || version != currentCacheVersion {
		return nil // Cache miss or version mismatch
	}
	doc, err := normalize.Parse(string(data))
	if err != nil || doc.Root() == nil {
		return nil
	}
	return doc
}

// computeAndStore normalizes the item and stores the serialized result
func computeAndStore(n *normalize.Normalizer, item schema.ConfigurationItem, version schema.TfsMajorVersion, store contract.CacheStore, key string) (*etree.Document, error) {
	doc, err := n.Normalize(item, version)
	if err != nil {
		return nil, err
	}

	if xml, err := normalize.Serialize(doc); err == nil {
		_ = store.Set(key, []byte(xml), currentCacheVersion, time.Now().Unix())
	}
	return doc, nil
}

// generateCacheKey creates a content-addressed key. Normalized output only
// depends on these inputs, so entries never go stale.
func generateCacheKey(itemType schema.ConfigurationItemType, version schema.TfsMajorVersion, tablesRevision, raw string) string {
	key := fmt.Sprintf("%s|%d|%s|%s", itemType, version, tablesRevision, raw)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
