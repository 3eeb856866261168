package preview

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/notebinder/internal/pipeline"
)

// buildStatus tracks the latest rebuild for the page and status endpoint.
// The last good document survives later failures.
type buildStatus struct {
	mu         sync.RWMutex
	generation uint64
	updatedAt  time.Time
	lastError  error
	lastGood   *pipeline.Result
	goodAt     time.Time
}

// statusSnapshot is an immutable copy of buildStatus.
type statusSnapshot struct {
	Generation uint64
	UpdatedAt  time.Time
	Err        error
	Good       *pipeline.Result
	GoodAt     time.Time
}

func (bs *buildStatus) setError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.generation++
	bs.updatedAt = time.Now()
	bs.lastError = err
}

func (bs *buildStatus) setSuccess(res *pipeline.Result) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.generation++
	bs.updatedAt = time.Now()
	bs.lastError = nil
	bs.lastGood = res
	bs.goodAt = bs.updatedAt
}

func (bs *buildStatus) snapshot() statusSnapshot {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return statusSnapshot{
		Generation: bs.generation,
		UpdatedAt:  bs.updatedAt,
		Err:        bs.lastError,
		Good:       bs.lastGood,
		GoodAt:     bs.goodAt,
	}
}
