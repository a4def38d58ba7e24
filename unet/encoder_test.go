package unet_test

import (
	"reflect"
	"testing"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/deblur/unet"
)

func TestEncoderDecoder(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	enc := unet.NewEncoder(vs.Root().Sub("encoder"), 40, 20, 3, false)
	dec := unet.NewDecoder(vs.Root().Sub("decoder"), 40, 20, 3)

	x := ts.MustRand([]int64{2, 40, 32, 32}, gotch.Float, gotch.CPU)
	encFeats := enc.ForwardAll(x, nil, nil, false)

	wantEnc := [][]int64{
		{2, 40, 32, 32},
		{2, 60, 16, 16},
		{2, 80, 8, 8},
	}
	for i, f := range encFeats {
		if got := f.MustSize(); !reflect.DeepEqual(got, wantEnc[i]) {
			t.Errorf("Encoder level %v shape: want %v, got %v\n", i+1, wantEnc[i], got)
		}
	}

	decFeats := dec.ForwardFeatures(encFeats, false)
	for i, f := range decFeats {
		if got := f.MustSize(); !reflect.DeepEqual(got, wantEnc[i]) {
			t.Errorf("Decoder level %v shape: want %v, got %v\n", i+1, wantEnc[i], got)
		}
	}

	for _, f := range encFeats {
		f.MustDrop()
	}
	for _, f := range decFeats {
		f.MustDrop()
	}
	x.MustDrop()
}

func TestEncoderCrossStage(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	enc1 := unet.NewEncoder(vs.Root().Sub("encoder1"), 40, 20, 3, false)
	dec1 := unet.NewDecoder(vs.Root().Sub("decoder1"), 40, 20, 3)
	enc2 := unet.NewEncoder(vs.Root().Sub("encoder2"), 40, 20, 3, true)

	x := ts.MustRand([]int64{1, 40, 16, 16}, gotch.Float, gotch.CPU)
	encFeats := enc1.ForwardAll(x, nil, nil, false)
	decFeats := dec1.ForwardFeatures(encFeats, false)

	fused := enc2.ForwardAll(x, encFeats, decFeats, false)

	want := [][]int64{
		{1, 40, 16, 16},
		{1, 60, 8, 8},
		{1, 80, 4, 4},
	}
	for i, f := range fused {
		if got := f.MustSize(); !reflect.DeepEqual(got, want[i]) {
			t.Errorf("Fused level %v shape: want %v, got %v\n", i+1, want[i], got)
		}
	}

	for _, f := range encFeats {
		f.MustDrop()
	}
	for _, f := range decFeats {
		f.MustDrop()
	}
	for _, f := range fused {
		f.MustDrop()
	}
	x.MustDrop()
}
