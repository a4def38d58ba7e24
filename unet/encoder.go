package unet

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/deblur/base"
)

// Encoder extracts features at three dyadic resolution levels.
// With cross-stage fusion enabled, the previous stage's encoder and
// decoder features are folded in at each level through 1x1 convs.
type Encoder struct {
	level1 *nn.SequentialT
	level2 *nn.SequentialT
	level3 *nn.SequentialT

	down12 *DownSample
	down23 *DownSample

	csffEnc1 *nn.Conv2D
	csffEnc2 *nn.Conv2D
	csffEnc3 *nn.Conv2D
	csffDec1 *nn.Conv2D
	csffDec2 *nn.Conv2D
	csffDec3 *nn.Conv2D
}

func cabLevel(p *nn.Path, c, ksize, cnt int64) *nn.SequentialT {
	seq := nn.SeqT()
	for i := int64(0); i < cnt; i++ {
		seq.Add(base.NewCAB(p.Sub(fmt.Sprint(i)), c, ksize))
	}

	return seq
}

// NewEncoder creates a new Encoder. When csff is true the encoder
// accepts previous-stage features in ForwardAll.
func NewEncoder(p *nn.Path, nFeat, scale, ksize int64, csff bool) *Encoder {
	enc := &Encoder{
		level1: cabLevel(p.Sub("level1"), nFeat, ksize, 2),
		level2: cabLevel(p.Sub("level2"), nFeat+scale, ksize, 2),
		level3: cabLevel(p.Sub("level3"), nFeat+2*scale, ksize, 2),
		down12: NewDownSample(p.Sub("down12"), nFeat, scale),
		down23: NewDownSample(p.Sub("down23"), nFeat+scale, scale),
	}

	if csff {
		enc.csffEnc1 = base.Conv2dNoBias(p.Sub("csffenc1"), nFeat, nFeat, 1, 0, 1)
		enc.csffEnc2 = base.Conv2dNoBias(p.Sub("csffenc2"), nFeat+scale, nFeat+scale, 1, 0, 1)
		enc.csffEnc3 = base.Conv2dNoBias(p.Sub("csffenc3"), nFeat+2*scale, nFeat+2*scale, 1, 0, 1)
		enc.csffDec1 = base.Conv2dNoBias(p.Sub("csffdec1"), nFeat, nFeat, 1, 0, 1)
		enc.csffDec2 = base.Conv2dNoBias(p.Sub("csffdec2"), nFeat+scale, nFeat+scale, 1, 0, 1)
		enc.csffDec3 = base.Conv2dNoBias(p.Sub("csffdec3"), nFeat+2*scale, nFeat+2*scale, 1, 0, 1)
	}

	return enc
}

func fuse(x *ts.Tensor, encConv, decConv *nn.Conv2D, encFeat, decFeat *ts.Tensor, train bool) *ts.Tensor {
	e := encConv.ForwardT(encFeat, train)
	d := decConv.ForwardT(decFeat, train)
	xe := x.MustAdd(e, true)
	e.MustDrop()
	res := xe.MustAdd(d, true)
	d.MustDrop()

	return res
}

// ForwardAll forwards input features through the three levels and
// returns one feature tensor per level, finest first. encPrev/decPrev
// are the previous stage's encoder/decoder features (nil without
// cross-stage fusion). Returned tensors belong to the caller.
func (e *Encoder) ForwardAll(x *ts.Tensor, encPrev, decPrev []*ts.Tensor, train bool) []*ts.Tensor {
	enc1 := e.level1.ForwardT(x, train)
	if e.csffEnc1 != nil && encPrev != nil && decPrev != nil {
		enc1 = fuse(enc1, e.csffEnc1, e.csffDec1, encPrev[0], decPrev[0], train)
	}

	x2 := e.down12.ForwardT(enc1, train)
	enc2 := e.level2.ForwardT(x2, train)
	x2.MustDrop()
	if e.csffEnc2 != nil && encPrev != nil && decPrev != nil {
		enc2 = fuse(enc2, e.csffEnc2, e.csffDec2, encPrev[1], decPrev[1], train)
	}

	x3 := e.down23.ForwardT(enc2, train)
	enc3 := e.level3.ForwardT(x3, train)
	x3.MustDrop()
	if e.csffEnc3 != nil && encPrev != nil && decPrev != nil {
		enc3 = fuse(enc3, e.csffEnc3, e.csffDec3, encPrev[2], decPrev[2], train)
	}

	return []*ts.Tensor{enc1, enc2, enc3}
}
