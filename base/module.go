package base

import (
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"
)

// CALayer is a channel attention layer. Per-channel gates are computed
// from global average pooling of the feature map.
// Ref. https://arxiv.org/abs/1807.02758
type CALayer struct {
	gate *nn.SequentialT
}

// ForwardT implements ts.ModuleT for CALayer struct.
func (l *CALayer) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	g := l.gate.ForwardT(x, train)
	res := x.MustMul(g, false)
	g.MustDrop()

	return res
}

// NewCALayer creates a new CALayer.
func NewCALayer(p *nn.Path, cIn int64, reductionOpt ...int64) *CALayer {
	var reduction int64 = 4
	if len(reductionOpt) > 0 {
		reduction = reductionOpt[0]
	}

	gate := nn.SeqT()
	gate.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustAdaptiveAvgPool2d([]int64{1, 1}, false)
	}))
	gate.Add(Conv2dNoBias(p.Sub("convdown"), cIn, cIn/reduction, 1, 0, 1))
	gate.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustRelu(false)
	}))
	gate.Add(Conv2dNoBias(p.Sub("convup"), cIn/reduction, cIn, 1, 0, 1))
	gate.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustSigmoid(false)
	}))

	return &CALayer{gate}
}

// CAB is a residual channel attention block: two convs with a
// leaky-ReLU in between, gated by a CALayer and added back to the input.
type CAB struct {
	body *nn.SequentialT
	ca   *CALayer
}

// ForwardT implements ts.ModuleT for CAB struct.
func (b *CAB) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	body := b.body.ForwardT(x, train)
	gated := b.ca.ForwardT(body, train)
	body.MustDrop()
	res := gated.MustAdd(x, true)

	return res
}

// NewCAB creates a new CAB.
func NewCAB(p *nn.Path, cIn, ksize int64, reductionOpt ...int64) *CAB {
	body := nn.SeqT()
	body.Add(Conv2dNoBias(p.Sub("conv1"), cIn, cIn, ksize, ksize/2, 1))
	body.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustLeakyRelu(false)
	}))
	body.Add(Conv2dNoBias(p.Sub("conv2"), cIn, cIn, ksize, ksize/2, 1))

	ca := NewCALayer(p.Sub("ca"), cIn, reductionOpt...)

	return &CAB{body: body, ca: ca}
}

// ShallowFeat is the per-stage shallow feature extractor:
// a conv followed by one CAB.
type ShallowFeat struct {
	conv *nn.Conv2D
	cab  *CAB
}

// ForwardT implements ts.ModuleT for ShallowFeat struct.
func (s *ShallowFeat) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	c := s.conv.ForwardT(x, train)
	res := s.cab.ForwardT(c, train)
	c.MustDrop()

	return res
}

// NewShallowFeat creates a new ShallowFeat.
func NewShallowFeat(p *nn.Path, cIn, cOut, ksize int64) *ShallowFeat {
	conv := Conv2dNoBias(p.Sub("conv"), cIn, cOut, ksize, ksize/2, 1)
	cab := NewCAB(p.Sub("cab"), cOut, ksize)

	return &ShallowFeat{conv, cab}
}

// Conv2d creates Conv2D module.
func Conv2d(p *nn.Path, cIn, cOut, ksize, padding, stride int64) *nn.Conv2D {
	config := nn.DefaultConv2DConfig()
	config.Stride = []int64{stride, stride}
	config.Padding = []int64{padding, padding}

	return nn.NewConv2D(p, cIn, cOut, ksize, config)
}

// Conv2dNoBias creates Conv2D with no bias.
func Conv2dNoBias(p *nn.Path, cIn, cOut, ksize, padding, stride int64) *nn.Conv2D {
	config := nn.DefaultConv2DConfig()
	config.Bias = false
	config.Stride = []int64{stride, stride}
	config.Padding = []int64{padding, padding}

	return nn.NewConv2D(p, cIn, cOut, ksize, config)
}
