// Package dutil provides data loading utilities for training loops:
// a Dataset abstraction, index samplers and a batching DataLoader.
package dutil

import "reflect"

// Dataset represents a map-style dataset addressable by index.
type Dataset interface {
	// Item returns the sample at idx.
	Item(idx int) (interface{}, error)

	// DType returns the reflect type of one sample.
	DType() reflect.Type

	// Len returns the number of samples.
	Len() int
}
