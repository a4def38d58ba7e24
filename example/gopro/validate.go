package main

import (
	"fmt"
	"log"

	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/deblur/dgunet"
	"github.com/sugarme/deblur/dutil"
	"github.com/sugarme/deblur/metric"

	"github.com/sugarme/gotch/nn"
)

// doValidate runs the model over validation pairs and reports the mean
// loss and PSNR of the final stage output.
func doValidate(net *dgunet.DGUNet, validFiles []string, device gotch.Device) (loss, psnr float64) {
	validDS := NewGoProDataset(validFiles, int64(TileSize))
	s, err := dutil.NewBatchSampler(validDS.Len(), BatchSize, false, false) // no shuffle
	if err != nil {
		log.Fatal(err)
	}
	validDL, err := dutil.NewDataLoader(validDS, s)
	if err != nil {
		log.Fatal(err)
	}

	var (
		losses []float64
		psnrs  []float64
	)
	for validDL.HasNext() {
		s, err := validDL.Next()
		if err != nil {
			log.Fatal(err)
		}

		blur, sharp := stackBatch(s.([]BlurSharp))
		input := blur.MustTo(device, true)
		target := sharp.MustTo(device, true)

		ts.NoGrad(func() {
			outputs := net.ForwardAll(input, false)
			l := metric.DeblurLoss(outputs, target)
			losses = append(losses, l.Float64Values()[0])
			psnrs = append(psnrs, metric.PSNRBatch(outputs[0], target))

			l.MustDrop()
			for _, o := range outputs {
				o.MustDrop()
			}
		})

		input.MustDrop()
		target.MustDrop()
	}

	return avg(losses), avg(psnrs)
}

// runValidate loads a checkpoint and evaluates it on the validation split.
func runValidate() {
	vs := nn.NewVarStore(Device)
	net := dgunet.DefaultDGUNet(vs.Root())
	loadWeights(vs, ModelPath, "checkpoint")

	_, validFiles := listPairs()
	loss, psnr := doValidate(net, validFiles, Device)
	fmt.Printf("valid loss: %6.4f\t PSNR: %5.2f dB\n", loss, psnr)
}

func avg(input []float64) float64 {
	var sum float64
	for _, v := range input {
		sum += v
	}

	return sum / float64(len(input))
}
