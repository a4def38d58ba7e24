package base

import (
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"
)

// SAM is a supervised attention module.
// It produces an intermediate restored image from stage features and
// uses that image to gate the features handed to the next stage.
// Ref. https://arxiv.org/abs/2102.02808
type SAM struct {
	conv1 *nn.Conv2D // feature branch
	conv2 *nn.Conv2D // feature -> image
	conv3 *nn.Conv2D // image -> gate
}

// NewSAM creates a new SAM.
func NewSAM(p *nn.Path, cIn, ksize int64) *SAM {
	conv1 := Conv2dNoBias(p.Sub("conv1"), cIn, cIn, ksize, ksize/2, 1)
	conv2 := Conv2dNoBias(p.Sub("conv2"), cIn, 3, ksize, ksize/2, 1)
	conv3 := Conv2dNoBias(p.Sub("conv3"), 3, cIn, ksize, ksize/2, 1)

	return &SAM{conv1, conv2, conv3}
}

// ForwardT forwards stage features x and the stage input image.
// It returns gated features for the next stage and the intermediate
// restored image. Both belong to the caller.
func (m *SAM) ForwardT(x, img *ts.Tensor, train bool) (feat, stageImg *ts.Tensor) {
	x1 := m.conv1.ForwardT(x, train)

	res := m.conv2.ForwardT(x, train)
	stageImg = res.MustAdd(img, true)

	gate := m.conv3.ForwardT(stageImg, train).MustSigmoid(true)
	gated := x1.MustMul(gate, true)
	gate.MustDrop()
	feat = gated.MustAdd(x, true)

	return feat, stageImg
}
