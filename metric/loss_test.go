package metric_test

import (
	"math"
	"testing"

	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/deblur/metric"
)

func TestCharbonnierLoss(t *testing.T) {
	x := ts.MustZeros([]int64{1, 3, 8, 8}, gotch.Float, gotch.CPU)
	y := ts.MustZeros([]int64{1, 3, 8, 8}, gotch.Float, gotch.CPU)

	loss := metric.CharbonnierLoss(x, y)
	got := loss.Float64Values()[0]
	loss.MustDrop()
	x.MustDrop()
	y.MustDrop()

	// zero difference leaves only the eps term
	if math.Abs(got-1e-3) > 1e-6 {
		t.Errorf("Charbonnier loss of equal tensors: want ~1e-3, got %v\n", got)
	}
}

func TestPSNR(t *testing.T) {
	pred := ts.MustZeros([]int64{1, 3, 8, 8}, gotch.Float, gotch.CPU)
	target := ts.MustOnes([]int64{1, 3, 8, 8}, gotch.Float, gotch.CPU).MustMul1(ts.FloatScalar(0.5), true)

	got := metric.PSNR(pred, target)
	pred.MustDrop()
	target.MustDrop()

	// mse = 0.25 -> 10*log10(1/0.25) ~ 6.0206
	if math.Abs(got-6.0206) > 1e-3 {
		t.Errorf("PSNR: want ~6.0206, got %v\n", got)
	}
}

func TestEdgeLoss(t *testing.T) {
	x := ts.MustRand([]int64{1, 3, 16, 16}, gotch.Float, gotch.CPU)

	loss := metric.EdgeLoss(x, x)
	got := loss.Float64Values()[0]
	loss.MustDrop()
	x.MustDrop()

	if math.Abs(got-1e-3) > 1e-6 {
		t.Errorf("Edge loss of identical tensors: want ~1e-3, got %v\n", got)
	}
}

func TestEdgeLossHighFrequency(t *testing.T) {
	// checkerboard vs flat: the Laplacian band differs strongly, so the
	// loss must clear the eps floor by a wide margin.
	var vals []float32
	for c := 0; c < 3; c++ {
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				if (x+y)%2 == 0 {
					vals = append(vals, 1.0)
				} else {
					vals = append(vals, 0.0)
				}
			}
		}
	}
	check := ts.MustOfSlice(vals).MustView([]int64{1, 3, 16, 16}, true)
	flat := ts.MustZeros([]int64{1, 3, 16, 16}, gotch.Float, gotch.CPU)

	loss := metric.EdgeLoss(check, flat)
	got := loss.Float64Values()[0]
	loss.MustDrop()
	check.MustDrop()
	flat.MustDrop()

	if got < 0.1 {
		t.Errorf("Edge loss of checkerboard vs flat: want > 0.1, got %v\n", got)
	}
}

func TestDeblurLoss(t *testing.T) {
	target := ts.MustZeros([]int64{1, 3, 8, 8}, gotch.Float, gotch.CPU)
	var outputs []*ts.Tensor
	for i := 0; i < 7; i++ {
		outputs = append(outputs, ts.MustZeros([]int64{1, 3, 8, 8}, gotch.Float, gotch.CPU))
	}

	loss := metric.DeblurLoss(outputs, target)
	got := loss.Float64Values()[0]
	loss.MustDrop()
	target.MustDrop()
	for _, o := range outputs {
		o.MustDrop()
	}

	// 7 stages x (1e-3 + 0.05*1e-3)
	want := 7 * (1e-3 + 0.05*1e-3)
	if math.Abs(got-want) > 1e-5 {
		t.Errorf("Deblur loss: want ~%v, got %v\n", want, got)
	}
}
