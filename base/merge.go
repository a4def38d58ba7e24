package base

import (
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"
)

// Merge fuses the features carried over from the previous stage with
// the current stage features by projecting the carried features onto a
// learned low-dimensional subspace before the merge conv.
type Merge struct {
	conv     *nn.Conv2D // fusing conv: 2*cIn -> cIn
	subnet   *nn.Conv2D // 2*cIn -> nSubspace basis maps
	subspace int64
}

// NewMerge creates a new Merge block.
func NewMerge(p *nn.Path, cIn, ksize int64, subspaceOpt ...int64) *Merge {
	var subspace int64 = 16
	if len(subspaceOpt) > 0 {
		subspace = subspaceOpt[0]
	}

	conv := Conv2dNoBias(p.Sub("conv"), cIn*2, cIn, ksize, ksize/2, 1)
	subnet := Conv2dNoBias(p.Sub("subnet"), cIn*2, subspace, ksize, ksize/2, 1)

	return &Merge{conv: conv, subnet: subnet, subspace: subspace}
}

// ForwardT merges current stage features x with bridge features from
// the previous stage. Both are [b c h w].
func (m *Merge) ForwardT(x, bridge *ts.Tensor, train bool) *ts.Tensor {
	size := bridge.MustSize()
	b, c, h, w := size[0], size[1], size[2], size[3]

	cat := ts.MustCat([]ts.Tensor{*x, *bridge}, 1)
	sub := m.subnet.ForwardT(cat, train)

	// Row-normalized basis V_t: [b s h*w]
	vtRaw := sub.MustView([]int64{b, m.subspace, h * w}, true)
	norm := vtRaw.MustAbs(false).MustSum1([]int64{2}, true, gotch.Float, true).MustAdd1(ts.FloatScalar(1e-6), true)
	vt := vtRaw.MustDiv(norm, true)
	norm.MustDrop()
	v := vt.MustPermute([]int64{0, 2, 1}, false) // [b h*w s]

	// Orthogonal projection matrix (V_t V)^-1 V_t: [b s h*w]
	mat := vt.MustMatmul(v, false)
	matInv := mat.MustInverse(true)
	projMat := matInv.MustMatmul(vt, true)

	bridgeFlat := bridge.MustView([]int64{b, c, h * w}, false).MustPermute([]int64{0, 2, 1}, true)
	projFeat := projMat.MustMatmul(bridgeFlat, true) // [b s c]
	bridgeFlat.MustDrop()

	bridgeProj := v.MustMatmul(projFeat, true).MustPermute([]int64{0, 2, 1}, true).MustReshape([]int64{b, c, h, w}, true)
	projFeat.MustDrop()
	vt.MustDrop()

	catProj := ts.MustCat([]ts.Tensor{*x, *bridgeProj}, 1)
	bridgeProj.MustDrop()
	res := m.conv.ForwardT(catProj, train)

	cat.MustDrop()
	catProj.MustDrop()

	return res
}
