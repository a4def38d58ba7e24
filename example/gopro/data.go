package main

import (
	"fmt"
	"math/rand"
	"reflect"

	ts "github.com/sugarme/gotch/tensor"
	"github.com/sugarme/gotch/vision"
)

// GoProDataset implements dutil.Dataset over prepared blur/sharp pairs.
type GoProDataset struct {
	fnames []string
	crop   int64 // random crop size; 0 keeps full frames
}

func NewGoProDataset(fnames []string, crop int64) *GoProDataset {
	return &GoProDataset{fnames: fnames, crop: crop}
}

func (ds *GoProDataset) Len() int {
	return len(ds.fnames)
}

// BlurSharp is one training sample: a blurred frame and its ground truth.
type BlurSharp struct {
	blur  ts.Tensor
	sharp ts.Tensor
}

// Item implements Dataset interface
func (ds *GoProDataset) Item(idx int) (interface{}, error) {
	fname := ds.fnames[idx]
	blurPath := fmt.Sprintf("%v/tile/blur/%v", DataPath, fname)
	sharpPath := fmt.Sprintf("%v/tile/sharp/%v", DataPath, fname)

	blurTs, err := vision.Load(blurPath)
	if err != nil {
		return nil, err
	}
	blur := blurTs.MustDiv1(ts.FloatScalar(255.0), true)

	sharpTs, err := vision.Load(sharpPath)
	if err != nil {
		return nil, err
	}
	sharp := sharpTs.MustDiv1(ts.FloatScalar(255.0), true)

	if ds.crop > 0 {
		blur, sharp = pairedCrop(blur, sharp, ds.crop)
	}

	return BlurSharp{
		blur:  *blur,
		sharp: *sharp,
	}, nil
}

func (ds *GoProDataset) DType() reflect.Type {
	return reflect.TypeOf(BlurSharp{})
}

// pairedCrop crops the same random window from both frames.
// Both tensors are [3 H W] and are consumed.
func pairedCrop(blur, sharp *ts.Tensor, crop int64) (*ts.Tensor, *ts.Tensor) {
	size := blur.MustSize()
	h, w := size[1], size[2]

	var y, x int64
	if h > crop {
		y = rand.Int63n(h - crop)
	}
	if w > crop {
		x = rand.Int63n(w - crop)
	}

	blurCrop := blur.MustNarrow(1, y, crop, true).MustNarrow(2, x, crop, true)
	sharpCrop := sharp.MustNarrow(1, y, crop, true).MustNarrow(2, x, crop, true)

	return blurCrop, sharpCrop
}

// stackBatch stacks a batch of samples into [B 3 H W] blur and sharp
// tensors. The per-sample tensors are dropped.
func stackBatch(samples []BlurSharp) (blur, sharp *ts.Tensor) {
	var blurs, sharps []ts.Tensor
	for _, s := range samples {
		blurs = append(blurs, s.blur)
		sharps = append(sharps, s.sharp)
	}

	blur = ts.MustStack(blurs, 0)
	for _, x := range blurs {
		x.MustDrop()
	}
	sharp = ts.MustStack(sharps, 0)
	for _, x := range sharps {
		x.MustDrop()
	}

	return blur, sharp
}
