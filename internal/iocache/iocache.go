// Package iocache persists normalized XML and comparison history in SQL backends.
package iocache

import (
	"sync"

	"github.com/huangsam/witdiff/internal/contract"
)

// CacheStoreManager manages the normalized cache and the history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	normalized   contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetNormalizedStore returns the normalized XML CacheStore.
func (mgr *CacheStoreManager) GetNormalizedStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.normalized
}

// GetHistoryStore returns the comparison HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
