package dutil

import (
	"fmt"
	"reflect"
)

// DataLoader iterates a Dataset in batches following a Sampler order.
type DataLoader struct {
	dataset Dataset
	sampler Sampler
	indexes []int
	curr    int
}

// NewDataLoader creates a new DataLoader.
func NewDataLoader(ds Dataset, s Sampler) (*DataLoader, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("Empty or nil dataset.\n")
	}
	if s == nil {
		return nil, fmt.Errorf("Nil sampler.\n")
	}

	return &DataLoader{
		dataset: ds,
		sampler: s,
		indexes: s.Sample(),
		curr:    0,
	}, nil
}

// HasNext reports whether a full or trailing batch remains.
func (dl *DataLoader) HasNext() bool {
	return dl.curr < len(dl.indexes)
}

// Next returns the next batch as a slice of the dataset's sample type.
func (dl *DataLoader) Next() (interface{}, error) {
	if !dl.HasNext() {
		return nil, fmt.Errorf("No more batches.\n")
	}

	end := dl.curr + dl.sampler.BatchSize()
	if end > len(dl.indexes) {
		end = len(dl.indexes)
	}

	elems := reflect.MakeSlice(reflect.SliceOf(dl.dataset.DType()), 0, end-dl.curr)
	for _, idx := range dl.indexes[dl.curr:end] {
		item, err := dl.dataset.Item(idx)
		if err != nil {
			return nil, err
		}
		elems = reflect.Append(elems, reflect.ValueOf(item))
	}
	dl.curr = end

	return elems.Interface(), nil
}

// Reset rewinds the loader and resamples the index order.
func (dl *DataLoader) Reset() {
	dl.indexes = dl.sampler.Sample()
	dl.curr = 0
}

// Len returns the number of batches per epoch.
func (dl *DataLoader) Len() int {
	n := len(dl.indexes)
	bs := dl.sampler.BatchSize()

	if n%bs == 0 {
		return n / bs
	}
	return n/bs + 1
}
