package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/sugarme/gotch"
)

// flag variables
var (
	DataPath  string
	ModelPath string
	ModelFrom string
	OptStr    string
	Cuda      bool
	task      string
	Device    gotch.Device
)

// hyperparameters
var (
	LR           float64 // learning rate
	BatchSize    int     // batch size
	Epochs       int     // training epochs
	TileSize     int     // training crop size
	MaxWidth     int     // frames wider than this get downscaled during prep
	ValidateSize int     // number of iterations that triggers running validation task
)

func init() {
	flag.StringVar(&DataPath, "input", "./input", "specify input data directory")
	flag.StringVar(&ModelPath, "model", "./checkpoint/dgunet.gt", "specify full path to model weight file.")
	flag.StringVar(&ModelFrom, "from", "", "specify weight loading mode: 'checkpoint', 'scratch' or empty")
	flag.BoolVar(&Cuda, "cuda", false, "specify whether using CUDA or not.")
	flag.StringVar(&task, "task", "train", "specify task to run")
	flag.Float64Var(&LR, "lr", 0.0001, "specify learning rate")
	flag.IntVar(&BatchSize, "batch", 4, "specify batch size")
	flag.IntVar(&Epochs, "epochs", 40, "specify number of epochs")
	flag.IntVar(&TileSize, "tile", 256, "specify training crop size")
	flag.IntVar(&MaxWidth, "maxwidth", 1280, "specify max frame width before downscaling")
	flag.IntVar(&ValidateSize, "validate", 200, "specify size of validation cycles.")
	flag.StringVar(&OptStr, "opt", "Adam", "specify optimizer type")
}

func main() {
	flag.Parse()

	DataPath = absPath(DataPath)
	ModelPath = absPath(ModelPath)

	Device = gotch.CPU
	if Cuda {
		Device = gotch.NewCuda().CudaIfAvailable()
	}

	switch task {
	case "model":
		runCheckModel()
	case "prep":
		runPrep()
	case "train":
		runTrain()
	case "validate":
		runValidate()
	case "eda":
		runEDA()
	default:
		err := fmt.Errorf("Unknown 'task' name. Please specify valid 'task' flag to run.\n")
		panic(err)
	}
}

// helper to get absolute file path
func absPath(p string) string {
	fullpath, err := filepath.Abs(p)
	if err != nil {
		log.Fatal(err)
	}
	return fullpath
}
