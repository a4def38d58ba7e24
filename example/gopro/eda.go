package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// runEDA reads the pairs.csv manifest written by the prep task and
// plots the frame width distribution.
func runEDA() {
	fname := fmt.Sprintf("%v/pairs.csv", DataPath)
	f, err := os.Open(fname)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.HasHeader(true))

	widths := df.Col("width").Float()

	p, err := plot.New()
	if err != nil {
		log.Fatal(err)
	}

	v := make(plotter.Values, len(widths))
	for i := 0; i < len(widths); i++ {
		v[i] = widths[i]
	}

	h, err := plotter.NewHist(v, 10)
	if err != nil {
		log.Fatal(err)
	}
	p.Title.Text = "Frame Width Histogram"
	p.Add(h)

	if err := p.Save(4*vg.Inch, 4*vg.Inch, "width-histo.png"); err != nil {
		log.Fatal(err)
	}

	scenes := df.Col("scene").Records()
	counts := make(map[string]int)
	for _, s := range scenes {
		counts[s]++
	}
	fmt.Printf("scenes: %v\t frames: %v\n", len(counts), df.Nrow())
}
