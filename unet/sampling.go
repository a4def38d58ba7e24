package unet

import (
	"reflect"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/deblur/base"
)

// interpolation using `bilinear` algorithm
// x should be in shape [B C H W]
func resample(x *ts.Tensor, outSize []int64) *ts.Tensor {
	xSize := x.MustSize()
	if reflect.DeepEqual(xSize[2:], outSize) {
		return x.MustDetach(false)
	}

	return x.MustUpsampleBilinear2d(outSize, false, nil, nil, false)
}

// DownSample halves the spatial resolution and widens channels:
// bilinear 0.5x followed by a 1x1 conv.
type DownSample struct {
	conv *nn.Conv2D
}

// NewDownSample creates a new DownSample going from cIn to cIn+widen channels.
func NewDownSample(p *nn.Path, cIn, widen int64) *DownSample {
	conv := base.Conv2dNoBias(p.Sub("conv"), cIn, cIn+widen, 1, 0, 1)
	return &DownSample{conv}
}

// ForwardT implements ts.ModuleT for DownSample struct.
func (d *DownSample) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	size := x.MustSize()
	down := resample(x, []int64{size[2] / 2, size[3] / 2})
	res := d.conv.ForwardT(down, train)
	down.MustDrop()

	return res
}

// SkipUpSample upsamples decoder features to the encoder skip
// resolution, narrows channels with a 1x1 conv and adds the skip.
type SkipUpSample struct {
	conv *nn.Conv2D
}

// NewSkipUpSample creates a new SkipUpSample going from cIn+narrow to
// cIn channels.
func NewSkipUpSample(p *nn.Path, cIn, narrow int64) *SkipUpSample {
	conv := base.Conv2dNoBias(p.Sub("conv"), cIn+narrow, cIn, 1, 0, 1)
	return &SkipUpSample{conv}
}

// ForwardSkip upsamples x to the skip resolution and adds the skip.
func (s *SkipUpSample) ForwardSkip(x, skip *ts.Tensor, train bool) *ts.Tensor {
	skipSize := skip.MustSize()
	up := resample(x, skipSize[2:])
	narrowed := s.conv.ForwardT(up, train)
	up.MustDrop()
	res := narrowed.MustAdd(skip, true)

	return res
}
