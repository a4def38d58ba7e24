package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"
	"time"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/deblur/dgunet"
	"github.com/sugarme/deblur/dutil"
	"github.com/sugarme/deblur/metric"
)

func loadWeights(vs *nn.VarStore, fpath string, from string) {
	modelPath, err := filepath.Abs(fpath)
	if err != nil {
		log.Fatal(err)
	}

	switch from {
	case "checkpoint":
		err = vs.Load(modelPath)
		if err != nil {
			log.Fatal(err)
		}
	case "scratch":
		_, err = vs.LoadPartial(modelPath)
		if err != nil {
			log.Fatal(err)
		}
	case "":
		// train from random init
	default:
		err := fmt.Errorf("Invalid load option. Expected 'checkpoint', 'scratch' or empty. Got: %v\n", from)
		panic(err)
	}
}

// listPairs returns prepared pair file names, split into train and
// validation sets.
func listPairs() (trainFiles, validFiles []string) {
	blurPath := fmt.Sprintf("%v/tile/blur", DataPath)
	files, err := ioutil.ReadDir(blurPath)
	if err != nil {
		log.Fatal(err)
	}

	for i, f := range files {
		if i < 100 {
			validFiles = append(validFiles, f.Name())
			continue
		}
		trainFiles = append(trainFiles, f.Name())
	}

	return trainFiles, validFiles
}

func buildOptimizer(vs *nn.VarStore) *nn.Optimizer {
	var (
		opt *nn.Optimizer
		err error
	)
	switch OptStr {
	case "SGD":
		opt, err = nn.DefaultSGDConfig().Build(vs, LR)
		if err != nil {
			log.Fatal(err)
		}
	case "Adam":
		opt, err = nn.DefaultAdamConfig().Build(vs, LR)
		if err != nil {
			log.Fatal(err)
		}
	default:
		err = fmt.Errorf("Unspecified/Invalid Optimizer option: '%v'.\n", OptStr)
		log.Fatal(err)
	}

	return opt
}

func runTrain() {
	vs := nn.NewVarStore(Device)
	net := dgunet.DefaultDGUNet(vs.Root())
	loadWeights(vs, ModelPath, ModelFrom)
	opt := buildOptimizer(vs)

	trainFiles, validFiles := listPairs()
	trainDS := NewGoProDataset(trainFiles, int64(TileSize))
	s, err := dutil.NewBatchSampler(trainDS.Len(), BatchSize, true, true)
	if err != nil {
		log.Fatal(err)
	}
	trainDL, err := dutil.NewDataLoader(trainDS, s)
	if err != nil {
		log.Fatal(err)
	}

	for e := 0; e < Epochs; e++ {
		start := time.Now()
		trainDL.Reset()
		var losses []float64

		count := 0
		for trainDL.HasNext() {
			s, err := trainDL.Next()
			if err != nil {
				log.Fatal(err)
			}
			count++

			blur, sharp := stackBatch(s.([]BlurSharp))
			input := blur.MustTo(Device, true)
			target := sharp.MustTo(Device, true)

			outputs := net.ForwardAll(input, true)
			loss := metric.DeblurLoss(outputs, target)

			opt.BackwardStep(loss)
			losses = append(losses, loss.Float64Values()[0])

			loss.MustDrop()
			for _, o := range outputs {
				o.MustDrop()
			}
			input.MustDrop()
			target.MustDrop()

			if count%ValidateSize == 0 {
				vloss, psnr := doValidate(net, validFiles, Device)
				fmt.Printf("Batch %04d\t valid loss: %6.4f\t PSNR: %5.2f dB\n", count, vloss, psnr)
			}
		}

		var lossSum float64
		for _, l := range losses {
			lossSum += l
		}
		tloss := lossSum / float64(len(losses))

		vloss, psnr := doValidate(net, validFiles, Device)
		fmt.Printf("Epoch %02d\t train loss: %6.4f\t valid loss: %6.4f\t PSNR: %5.2f dB\t Taken time: %0.2fMin\n", e, tloss, vloss, psnr, time.Since(start).Minutes())
	}

	// save model checkpoint
	weightFile := fmt.Sprintf("./checkpoint/gopro-%v.gt", time.Now().Unix())
	err = vs.Save(weightFile)
	if err != nil {
		log.Fatal(err)
	}
}

func runCheckModel() {
	vs := nn.NewVarStore(gotch.CPU)
	net := dgunet.DefaultDGUNet(vs.Root())

	image := ts.MustRand([]int64{1, 3, int64(TileSize), int64(TileSize)}, gotch.Float, gotch.CPU)
	outputs := net.ForwardAll(image, false)

	for i, out := range outputs {
		fmt.Printf("stage output %v shape: %v\n", i, out.MustSize())
		out.MustDrop()
	}
	image.MustDrop()
}
