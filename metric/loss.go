package metric

import (
	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"
)

// CharbonnierLoss is a differentiable variant of L1 loss.
// Ref. https://arxiv.org/abs/1704.03915
func CharbonnierLoss(x, y *ts.Tensor) *ts.Tensor {
	eps := 1e-3

	diff := x.MustSub(y, false)
	sq := diff.MustMul(diff, true)
	loss := sq.MustAdd1(ts.FloatScalar(eps*eps), true).MustSqrt(true).MustMean(gotch.Double, true)

	return loss
}

// gaussKernel builds a 5x5 separable Gaussian kernel shaped for a
// 3-channel grouped conv, on the same device as ref.
func gaussKernel(ref *ts.Tensor) *ts.Tensor {
	k := ts.MustOfSlice([]float32{0.05, 0.25, 0.4, 0.25, 0.05})
	row := k.MustView([]int64{1, 5}, false)
	col := k.MustView([]int64{5, 1}, true)
	k2d := col.MustMatmul(row, true)
	row.MustDrop()

	kernel := k2d.MustView([]int64{1, 1, 5, 5}, true).MustRepeat([]int64{3, 1, 1, 1}, true)

	return kernel.MustTo(ref.MustDevice(), true)
}

// convGauss blurs img with kernel using replicate padding.
func convGauss(img, kernel *ts.Tensor) *ts.Tensor {
	padded := img.MustReplicationPad2d([]int64{2, 2, 2, 2}, false)
	res := ts.MustConv2d(padded, kernel, ts.NewTensor(), []int64{1, 1}, []int64{0, 0}, []int64{1, 1}, 3)
	padded.MustDrop()

	return res
}

// laplacian extracts the high-frequency band of img.
func laplacian(img, kernel *ts.Tensor) *ts.Tensor {
	blurred := convGauss(img, kernel)
	res := img.MustSub(blurred, false)
	blurred.MustDrop()

	return res
}

// EdgeLoss penalizes high-frequency differences between x and y.
// Both are image batches [B 3 H W].
func EdgeLoss(x, y *ts.Tensor) *ts.Tensor {
	kernel := gaussKernel(x)

	lx := laplacian(x, kernel)
	ly := laplacian(y, kernel)
	kernel.MustDrop()

	loss := CharbonnierLoss(lx, ly)
	lx.MustDrop()
	ly.MustDrop()

	return loss
}

// DeblurLoss is the multi-stage training criterion: Charbonnier plus
// edge loss against the sharp target, summed over all stage outputs.
func DeblurLoss(outputs []*ts.Tensor, target *ts.Tensor) *ts.Tensor {
	edgeWeight := 0.05

	var total *ts.Tensor
	for _, out := range outputs {
		char := CharbonnierLoss(out, target)
		edge := EdgeLoss(out, target).MustMul1(ts.FloatScalar(edgeWeight), true)
		stage := char.MustAdd(edge, true)
		edge.MustDrop()

		if total == nil {
			total = stage
		} else {
			total = total.MustAdd(stage, true)
			stage.MustDrop()
		}
	}

	return total
}
