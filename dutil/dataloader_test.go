package dutil_test

import (
	"reflect"
	"testing"

	"github.com/sugarme/deblur/dutil"
)

type intDataset struct {
	data []int
}

func (ds *intDataset) Item(idx int) (interface{}, error) {
	return ds.data[idx], nil
}

func (ds *intDataset) DType() reflect.Type {
	return reflect.TypeOf(ds.data[0])
}

func (ds *intDataset) Len() int {
	return len(ds.data)
}

func newIntDataset(n int) *intDataset {
	data := make([]int, n)
	for i := 0; i < n; i++ {
		data[i] = i
	}
	return &intDataset{data}
}

func TestBatchSamplerDropLast(t *testing.T) {
	s, err := dutil.NewBatchSampler(10, 3, true)
	if err != nil {
		t.Fatal(err)
	}

	indexes := s.Sample()
	if len(indexes) != 9 {
		t.Errorf("Expected 9 indexes after drop-last. Got %v\n", len(indexes))
	}
}

func TestBatchSamplerInvalid(t *testing.T) {
	if _, err := dutil.NewBatchSampler(0, 3, true); err == nil {
		t.Error("Expected error for empty dataset.")
	}
	if _, err := dutil.NewBatchSampler(10, 0, true); err == nil {
		t.Error("Expected error for zero batch size.")
	}
	if _, err := dutil.NewBatchSampler(10, 11, true); err == nil {
		t.Error("Expected error for batch size larger than dataset.")
	}
}

func TestDataLoader(t *testing.T) {
	ds := newIntDataset(10)
	s, err := dutil.NewBatchSampler(ds.Len(), 4, false)
	if err != nil {
		t.Fatal(err)
	}
	dl, err := dutil.NewDataLoader(ds, s)
	if err != nil {
		t.Fatal(err)
	}

	if dl.Len() != 3 {
		t.Errorf("Expected 3 batches. Got %v\n", dl.Len())
	}

	var seen []int
	var sizes []int
	for dl.HasNext() {
		b, err := dl.Next()
		if err != nil {
			t.Fatal(err)
		}
		batch := b.([]int)
		sizes = append(sizes, len(batch))
		seen = append(seen, batch...)
	}

	if !reflect.DeepEqual(sizes, []int{4, 4, 2}) {
		t.Errorf("Batch sizes: want [4 4 2], got %v\n", sizes)
	}
	if !reflect.DeepEqual(seen, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}) {
		t.Errorf("Unexpected batch contents: %v\n", seen)
	}

	dl.Reset()
	if !dl.HasNext() {
		t.Error("Expected loader to restart after Reset.")
	}
}

func TestDataLoaderShuffle(t *testing.T) {
	ds := newIntDataset(32)
	s, err := dutil.NewBatchSampler(ds.Len(), 8, true, true)
	if err != nil {
		t.Fatal(err)
	}
	dl, err := dutil.NewDataLoader(ds, s)
	if err != nil {
		t.Fatal(err)
	}

	var seen []int
	for dl.HasNext() {
		b, err := dl.Next()
		if err != nil {
			t.Fatal(err)
		}
		seen = append(seen, b.([]int)...)
	}

	if len(seen) != 32 {
		t.Errorf("Expected 32 samples. Got %v\n", len(seen))
	}
	counts := make(map[int]int)
	for _, v := range seen {
		counts[v]++
	}
	for i := 0; i < 32; i++ {
		if counts[i] != 1 {
			t.Errorf("Sample %v drawn %v times.\n", i, counts[i])
		}
	}
}
