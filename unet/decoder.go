package unet

import (
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/deblur/base"
)

// Decoder mirrors the Encoder. Skip connections pass through a single
// CAB before being added to the upsampled coarser level.
type Decoder struct {
	level1 *nn.SequentialT
	level2 *nn.SequentialT
	level3 *nn.SequentialT

	skipAttn1 *base.CAB
	skipAttn2 *base.CAB

	up21 *SkipUpSample
	up32 *SkipUpSample
}

// NewDecoder creates a new Decoder.
func NewDecoder(p *nn.Path, nFeat, scale, ksize int64) *Decoder {
	return &Decoder{
		level1:    cabLevel(p.Sub("level1"), nFeat, ksize, 2),
		level2:    cabLevel(p.Sub("level2"), nFeat+scale, ksize, 2),
		level3:    cabLevel(p.Sub("level3"), nFeat+2*scale, ksize, 2),
		skipAttn1: base.NewCAB(p.Sub("skipattn1"), nFeat, ksize),
		skipAttn2: base.NewCAB(p.Sub("skipattn2"), nFeat+scale, ksize),
		up21:      NewSkipUpSample(p.Sub("up21"), nFeat, scale),
		up32:      NewSkipUpSample(p.Sub("up32"), nFeat+scale, scale),
	}
}

// ForwardFeatures forwards the encoder's per-level features and
// returns one decoded tensor per level, finest first. Returned tensors
// belong to the caller.
func (d *Decoder) ForwardFeatures(encFeats []*ts.Tensor, train bool) []*ts.Tensor {
	enc1, enc2, enc3 := encFeats[0], encFeats[1], encFeats[2]

	dec3 := d.level3.ForwardT(enc3, train)

	skip2 := d.skipAttn2.ForwardT(enc2, train)
	x2 := d.up32.ForwardSkip(dec3, skip2, train)
	skip2.MustDrop()
	dec2 := d.level2.ForwardT(x2, train)
	x2.MustDrop()

	skip1 := d.skipAttn1.ForwardT(enc1, train)
	x1 := d.up21.ForwardSkip(dec2, skip1, train)
	skip1.MustDrop()
	dec1 := d.level1.ForwardT(x1, train)
	x1.MustDrop()

	return []*ts.Tensor{dec1, dec2, dec3}
}
