package metric

import (
	"math"

	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"
)

// PSNR computes peak signal-to-noise ratio (dB) between a restored
// image batch and its ground truth. Pixel values are expected in [0 1].
func PSNR(pred, target *ts.Tensor) float64 {
	diff := pred.MustSub(target, false)
	sq := diff.MustMul(diff, true)
	mse := sq.MustMean(gotch.Double, true).Float64Values()[0]

	if mse == 0 {
		return math.Inf(1)
	}

	return -10 * math.Log10(mse)
}

// PSNRBatch averages per-sample PSNR over the batch dimension.
func PSNRBatch(pred, target *ts.Tensor) float64 {
	n := pred.MustSize()[0]

	var sum float64
	for i := int64(0); i < n; i++ {
		p := pred.MustNarrow(0, i, 1, false)
		t := target.MustNarrow(0, i, 1, false)
		sum += PSNR(p, t)
		p.MustDrop()
		t.MustDrop()
	}

	return sum / float64(n)
}
