package base_test

import (
	"reflect"
	"testing"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/deblur/base"
)

func TestCAB(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	cab := base.NewCAB(vs.Root().Sub("cab"), 40, 3)

	x := ts.MustRand([]int64{2, 40, 16, 16}, gotch.Float, gotch.CPU)
	out := cab.ForwardT(x, false)

	want := []int64{2, 40, 16, 16}
	if got := out.MustSize(); !reflect.DeepEqual(got, want) {
		t.Errorf("CAB output shape: want %v, got %v\n", want, got)
	}

	out.MustDrop()
	x.MustDrop()
}

func TestSAM(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	sam := base.NewSAM(vs.Root().Sub("sam"), 40, 1)

	x := ts.MustRand([]int64{2, 40, 16, 16}, gotch.Float, gotch.CPU)
	img := ts.MustRand([]int64{2, 3, 16, 16}, gotch.Float, gotch.CPU)

	feat, stageImg := sam.ForwardT(x, img, false)

	wantFeat := []int64{2, 40, 16, 16}
	if got := feat.MustSize(); !reflect.DeepEqual(got, wantFeat) {
		t.Errorf("SAM feature shape: want %v, got %v\n", wantFeat, got)
	}
	wantImg := []int64{2, 3, 16, 16}
	if got := stageImg.MustSize(); !reflect.DeepEqual(got, wantImg) {
		t.Errorf("SAM image shape: want %v, got %v\n", wantImg, got)
	}

	feat.MustDrop()
	stageImg.MustDrop()
	x.MustDrop()
	img.MustDrop()
}

func TestMerge(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	merge := base.NewMerge(vs.Root().Sub("merge"), 40, 3, 16)

	x := ts.MustRand([]int64{2, 40, 16, 16}, gotch.Float, gotch.CPU)
	bridge := ts.MustRand([]int64{2, 40, 16, 16}, gotch.Float, gotch.CPU)

	out := merge.ForwardT(x, bridge, false)

	want := []int64{2, 40, 16, 16}
	if got := out.MustSize(); !reflect.DeepEqual(got, want) {
		t.Errorf("Merge output shape: want %v, got %v\n", want, got)
	}

	out.MustDrop()
	x.MustDrop()
	bridge.MustDrop()
}
