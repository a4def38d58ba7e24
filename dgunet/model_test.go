package dgunet_test

import (
	"reflect"
	"testing"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/deblur/dgunet"
)

func TestDGUNetForwardAll(t *testing.T) {
	device := gotch.CPU
	vs := nn.NewVarStore(device)
	net := dgunet.DefaultDGUNet(vs.Root())

	batchSize := int64(2)
	imageSize := int64(64)
	image := ts.MustRand([]int64{batchSize, 3, imageSize, imageSize}, gotch.Float, gotch.CPU)

	outputs := net.ForwardAll(image, false)
	if len(outputs) != 7 {
		t.Fatalf("Expected 7 stage outputs. Got %v\n", len(outputs))
	}

	want := []int64{batchSize, 3, imageSize, imageSize}
	for i, out := range outputs {
		got := out.MustSize()
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Stage %v output shape: want %v, got %v\n", i, want, got)
		}
	}

	for _, out := range outputs {
		out.MustDrop()
	}
	image.MustDrop()
}

func TestDGUNetForwardT(t *testing.T) {
	device := gotch.CPU
	vs := nn.NewVarStore(device)
	net := dgunet.DefaultDGUNet(vs.Root())

	image := ts.MustRand([]int64{1, 3, 32, 32}, gotch.Float, gotch.CPU)
	out := net.ForwardT(image, false)

	want := []int64{1, 3, 32, 32}
	got := out.MustSize()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Output shape: want %v, got %v\n", want, got)
	}

	out.MustDrop()
	image.MustDrop()
}
