package caravel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// ParallelConfig controls parallelization behavior
type ParallelConfig struct {
	// MinRowsForParallel is the minimum rows to justify parallel overhead
	MinRowsForParallel int

	// MorselSize is the number of rows per work unit
	MorselSize int

	// MaxWorkers limits the number of worker goroutines (0 = GOMAXPROCS)
	MaxWorkers int

	// Enabled controls whether parallelism is used at all
	Enabled bool
}

// DefaultParallelConfig returns sensible defaults
func DefaultParallelConfig() *ParallelConfig {
	return &ParallelConfig{
		MinRowsForParallel: 8192,
		MorselSize:         4096,
		MaxWorkers:         0,
		Enabled:            true,
	}
}

var globalConfig = DefaultParallelConfig()

// SetParallelConfig sets the global parallelization configuration
func SetParallelConfig(cfg *ParallelConfig) {
	if cfg != nil {
		globalConfig = cfg
	}
}

// GetParallelConfig returns the current configuration
func GetParallelConfig() *ParallelConfig {
	return globalConfig
}

func (cfg *ParallelConfig) numWorkers() int {
	if cfg.MaxWorkers > 0 {
		return cfg.MaxWorkers
	}
	return runtime.GOMAXPROCS(0)
}

func (cfg *ParallelConfig) shouldParallelize(rows int) bool {
	return cfg.Enabled && rows >= cfg.MinRowsForParallel
}

// Morsel represents a range of rows to process
type Morsel struct {
	Start int
	End   int
}

// MorselIterator provides work-stealing morsel distribution.
// Safe for concurrent use.
type MorselIterator struct {
	totalRows  int
	morselSize int
	nextStart  int64
}

// NewMorselIterator creates a new morsel iterator
func NewMorselIterator(totalRows, morselSize int) *MorselIterator {
	if morselSize <= 0 {
		morselSize = globalConfig.MorselSize
	}
	return &MorselIterator{
		totalRows:  totalRows,
		morselSize: morselSize,
	}
}

// Next returns the next morsel, or nil if exhausted
func (mi *MorselIterator) Next() *Morsel {
	for {
		start := atomic.LoadInt64(&mi.nextStart)
		if int(start) >= mi.totalRows {
			return nil
		}

		end := int(start) + mi.morselSize
		if end > mi.totalRows {
			end = mi.totalRows
		}

		if atomic.CompareAndSwapInt64(&mi.nextStart, start, int64(end)) {
			return &Morsel{Start: int(start), End: end}
		}
		// Another worker claimed it, try again
	}
}

// ParallelFor executes fn for each morsel in parallel using work-stealing.
// Falls back to a single sequential call for small inputs.
func ParallelFor(totalRows int, fn func(start, end int)) {
	cfg := globalConfig
	if !cfg.shouldParallelize(totalRows) {
		fn(0, totalRows)
		return
	}

	numWorkers := cfg.numWorkers()
	morselIter := NewMorselIterator(totalRows, cfg.MorselSize)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				morsel := morselIter.Next()
				if morsel == nil {
					return
				}
				fn(morsel.Start, morsel.End)
			}
		}()
	}
	wg.Wait()
}

// ParallelBuildColumns builds n columns concurrently, one goroutine per
// column. Used by readers and join materialization where each column is
// independent.
func ParallelBuildColumns(n int, builder func(colIdx int) *Series) []*Series {
	cfg := globalConfig
	cols := make([]*Series, n)

	if !cfg.Enabled || n <= 1 {
		for i := 0; i < n; i++ {
			cols[i] = builder(i)
		}
		return cols
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			cols[idx] = builder(idx)
		}(i)
	}
	wg.Wait()
	return cols
}

// PartitionedHashIndex is a lock-free partitioned hash table mapping row
// hashes to row indices. Each partition handles keys where
// hash % numPartitions == partitionID.
type PartitionedHashIndex struct {
	partitions []map[uint64][]int
	numParts   int
}

// NewPartitionedHashIndex creates a new partitioned hash index
func NewPartitionedHashIndex(numPartitions int) *PartitionedHashIndex {
	if numPartitions <= 0 {
		numPartitions = globalConfig.numWorkers()
	}
	numPartitions = nextPowerOf2(numPartitions)

	partitions := make([]map[uint64][]int, numPartitions)
	for i := range partitions {
		partitions[i] = make(map[uint64][]int)
	}
	return &PartitionedHashIndex{
		partitions: partitions,
		numParts:   numPartitions,
	}
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

func (phi *PartitionedHashIndex) partition(hash uint64) int {
	return int(hash) & (phi.numParts - 1)
}

// BuildParallel builds the hash index from hashes in parallel.
// Each partition is built by a separate goroutine, so no locks are needed.
func (phi *PartitionedHashIndex) BuildParallel(hashes []uint64) {
	var wg sync.WaitGroup
	for p := 0; p < phi.numParts; p++ {
		wg.Add(1)
		go func(partID int) {
			defer wg.Done()
			table := phi.partitions[partID]
			for rowIdx, hash := range hashes {
				if phi.partition(hash) == partID {
					table[hash] = append(table[hash], rowIdx)
				}
			}
		}(p)
	}
	wg.Wait()
}

// Lookup returns all row indices matching the hash
func (phi *PartitionedHashIndex) Lookup(hash uint64) []int {
	return phi.partitions[phi.partition(hash)][hash]
}
