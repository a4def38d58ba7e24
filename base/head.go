package base

import "github.com/sugarme/gotch/nn"

// NewRestorationHead creates the output head (nn.SequentialT) mapping
// feature maps back to an RGB residual image.
func NewRestorationHead(p *nn.Path, cIn, cOut, ksize int64) *nn.SequentialT {
	seq := nn.SeqT()
	seq.Add(Conv2dNoBias(p, cIn, cOut, ksize, ksize/2, 1))

	return seq
}
