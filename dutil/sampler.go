package dutil

import (
	"fmt"
	"math/rand"
)

// Sampler generates an ordering of dataset indexes.
type Sampler interface {
	Sample() []int
	BatchSize() int
}

// BatchSampler samples batches of indexes, optionally shuffled,
// optionally dropping the last incomplete batch.
type BatchSampler struct {
	n         int
	batchSize int
	dropLast  bool
	shuffle   bool
}

// NewBatchSampler creates a new BatchSampler.
func NewBatchSampler(n, batchSize int, dropLast bool, shuffleOpt ...bool) (*BatchSampler, error) {
	var shuffle bool
	if len(shuffleOpt) > 0 {
		shuffle = shuffleOpt[0]
	}

	if n <= 0 {
		return nil, fmt.Errorf("Invalid dataset size: %v\n", n)
	}
	if batchSize <= 0 || batchSize > n {
		return nil, fmt.Errorf("Invalid batch size: %v (dataset size %v)\n", batchSize, n)
	}

	return &BatchSampler{
		n:         n,
		batchSize: batchSize,
		dropLast:  dropLast,
		shuffle:   shuffle,
	}, nil
}

// Sample implements Sampler for BatchSampler.
func (s *BatchSampler) Sample() []int {
	indexes := make([]int, s.n)
	for i := 0; i < s.n; i++ {
		indexes[i] = i
	}

	if s.shuffle {
		rand.Shuffle(s.n, func(i, j int) {
			indexes[i], indexes[j] = indexes[j], indexes[i]
		})
	}

	if s.dropLast {
		indexes = indexes[:s.n-s.n%s.batchSize]
	}

	return indexes
}

// BatchSize implements Sampler for BatchSampler.
func (s *BatchSampler) BatchSize() int {
	return s.batchSize
}
