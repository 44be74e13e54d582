// Package iocache persists branch results and analysis history in SQL databases.
package iocache

import (
	"sync"

	"github.com/huangsam/branchspot/internal/contract"
)

// CacheStoreManager manages the branch result cache and the analysis history store.
// A store that was never configured is returned as an untyped nil.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	branch       contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetBranchStore returns the branch result CacheStore.
func (mgr *CacheStoreManager) GetBranchStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.branch
}

// GetAnalysisStore returns the analysis AnalysisStore.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
