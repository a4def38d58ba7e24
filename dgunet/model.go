package dgunet

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/deblur/base"
	"github.com/sugarme/deblur/unet"
)

const nStage = 7

// Config holds DGUNet hyperparameters.
type Config struct {
	NFeat      int64 // feature width at the finest level
	ScaleFeats int64 // channel widening per encoder level
	Ksize      int64 // conv kernel size of feature blocks
	Subspace   int64 // merge block subspace dimension
}

// DefaultConfig returns the published DGUNet configuration.
func DefaultConfig() *Config {
	return &Config{
		NFeat:      40,
		ScaleFeats: 20,
		Ksize:      3,
		Subspace:   16,
	}
}

// gradStep is the data-consistency step of one unfolding iteration:
// a gradient descent update under a learned linear degradation model
// phi and its adjoint phit, with a learned scalar step size.
type gradStep struct {
	phi  *nn.Conv2D
	phit *nn.Conv2D
	r    *ts.Tensor
}

func newGradStep(p *nn.Path) *gradStep {
	phi := base.Conv2dNoBias(p.Sub("phi"), 3, 3, 3, 1, 1)
	phit := base.Conv2dNoBias(p.Sub("phit"), 3, 3, 3, 1, 1)
	r := p.NewVar("r", []int64{1}, nn.NewConstInit(0.5))

	return &gradStep{phi, phit, r}
}

// ForwardT computes x - r * phit(phi(x) - y).
func (g *gradStep) ForwardT(x, y *ts.Tensor, train bool) *ts.Tensor {
	resid := g.phi.ForwardT(x, train).MustSub(y, true)
	grad := g.phit.ForwardT(resid, train)
	resid.MustDrop()
	step := grad.MustMul(g.r, true)
	res := x.MustSub(step, false)
	step.MustDrop()

	return res
}

// DGUNet is a 7-stage deep-unfolding network for single-image motion
// deblurring. Each stage runs a gradient descent step on the image
// followed by a UNet refinement; supervised attention carries features
// forward and a subspace projection merges them into the next stage.
// Ref. https://arxiv.org/abs/2204.13348
type DGUNet struct {
	shallow [nStage]*base.ShallowFeat
	grad    [nStage]*gradStep

	// stage 1 has its own encoder/decoder; stages 2-6 share one pair
	// with cross-stage feature fusion; stage 7 has none.
	enc1      *unet.Encoder
	dec1      *unet.Decoder
	encShared *unet.Encoder
	decShared *unet.Decoder

	sams   [nStage - 1]*base.SAM
	merges [nStage - 1]*base.Merge

	tail *nn.SequentialT
}

// NewDGUNet creates a DGUNet with the given config.
func NewDGUNet(p *nn.Path, cfg *Config) *DGUNet {
	n := &DGUNet{
		enc1:      unet.NewEncoder(p.Sub("stage1_encoder"), cfg.NFeat, cfg.ScaleFeats, cfg.Ksize, false),
		dec1:      unet.NewDecoder(p.Sub("stage1_decoder"), cfg.NFeat, cfg.ScaleFeats, cfg.Ksize),
		encShared: unet.NewEncoder(p.Sub("stage2_encoder"), cfg.NFeat, cfg.ScaleFeats, cfg.Ksize, true),
		decShared: unet.NewDecoder(p.Sub("stage2_decoder"), cfg.NFeat, cfg.ScaleFeats, cfg.Ksize),
		tail:      base.NewRestorationHead(p.Sub("tail"), cfg.NFeat, 3, cfg.Ksize),
	}

	for i := 0; i < nStage; i++ {
		n.shallow[i] = base.NewShallowFeat(p.Sub(fmt.Sprintf("shallow%d", i+1)), 3, cfg.NFeat, cfg.Ksize)
		n.grad[i] = newGradStep(p.Sub(fmt.Sprintf("grad%d", i+1)))
	}
	for i := 0; i < nStage-1; i++ {
		n.sams[i] = base.NewSAM(p.Sub(fmt.Sprintf("sam%d%d", i+1, i+2)), cfg.NFeat, 1)
		n.merges[i] = base.NewMerge(p.Sub(fmt.Sprintf("merge%d%d", i+1, i+2)), cfg.NFeat, cfg.Ksize, cfg.Subspace)
	}

	return n
}

// DefaultDGUNet creates a DGUNet with default values.
func DefaultDGUNet(p *nn.Path) *DGUNet {
	return NewDGUNet(p, DefaultConfig())
}

func dropAll(xs []*ts.Tensor) {
	for _, x := range xs {
		x.MustDrop()
	}
}

// ForwardAll forwards a degraded image y [B 3 H W] through all seven
// stages and returns the seven restored estimates, most refined first.
// H and W must be divisible by 8. Returned tensors belong to the caller.
func (n *DGUNet) ForwardAll(y *ts.Tensor, train bool) []*ts.Tensor {
	var outputs []*ts.Tensor

	// Stage 1
	xImg := n.grad[0].ForwardT(y, y, train)
	x1 := n.shallow[0].ForwardT(xImg, train)
	encFeats := n.enc1.ForwardAll(x1, nil, nil, train)
	x1.MustDrop()
	decFeats := n.dec1.ForwardFeatures(encFeats, train)
	samFeat, stageImg := n.sams[0].ForwardT(decFeats[0], xImg, train)
	xImg.MustDrop()
	outputs = append(outputs, stageImg)

	// Stages 2-6
	for i := 1; i < nStage-1; i++ {
		xImg := n.grad[i].ForwardT(outputs[i-1], y, train)
		s := n.shallow[i].ForwardT(xImg, train)
		merged := n.merges[i-1].ForwardT(s, samFeat, train)
		s.MustDrop()
		samFeat.MustDrop()

		encNew := n.encShared.ForwardAll(merged, encFeats, decFeats, train)
		merged.MustDrop()
		dropAll(encFeats)
		dropAll(decFeats)
		encFeats = encNew
		decFeats = n.decShared.ForwardFeatures(encFeats, train)

		samFeat, stageImg = n.sams[i].ForwardT(decFeats[0], xImg, train)
		xImg.MustDrop()
		outputs = append(outputs, stageImg)
	}

	// Stage 7
	xImg7 := n.grad[nStage-1].ForwardT(outputs[nStage-2], y, train)
	s7 := n.shallow[nStage-1].ForwardT(xImg7, train)
	merged7 := n.merges[nStage-2].ForwardT(s7, samFeat, train)
	s7.MustDrop()
	samFeat.MustDrop()
	xImg7.MustDrop()
	res := n.tail.ForwardT(merged7, train)
	merged7.MustDrop()
	final := res.MustAdd(y, true)
	dropAll(encFeats)
	dropAll(decFeats)
	outputs = append(outputs, final)

	// Most refined estimate first.
	for i, j := 0, len(outputs)-1; i < j; i, j = i+1, j-1 {
		outputs[i], outputs[j] = outputs[j], outputs[i]
	}

	return outputs
}

// ForwardT implements ts.ModuleT for DGUNet. It returns the final
// stage estimate only.
func (n *DGUNet) ForwardT(y *ts.Tensor, train bool) *ts.Tensor {
	outputs := n.ForwardAll(y, train)
	dropAll(outputs[1:])

	return outputs[0]
}
