package main

import (
	"encoding/csv"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chai2010/tiff"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// readImage reads image from file.
func readImage(filename string) (image.Image, error) {
	ext := filepath.Ext(filename)
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext {
	case ".png", ".PNG":
		return png.Decode(f)
	case ".jpg", ".jpeg", ".JPG", ".JPEG":
		return jpeg.Decode(f)
	case ".tiff", ".tif", ".TIFF", ".TIF":
		return tiff.Decode(f)
	default:
		err = fmt.Errorf("Unsupported image format: %v\n", ext)
		return nil, err
	}
}

// toNRGBA copies img into a NRGBA buffer.
func toNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rectangle{image.ZP, bounds.Size()})
	draw.Copy(dst, image.ZP, img, bounds, draw.Src, nil)

	return dst
}

// prepPair normalizes one blur/sharp frame pair: decode, optionally
// downscale, save as png and add a horizontally flipped copy.
func prepPair(scene, name, blurFile, sharpFile, outBlur, outSharp string) (w, h int, err error) {
	blur, err := readImage(blurFile)
	if err != nil {
		return 0, 0, err
	}
	sharp, err := readImage(sharpFile)
	if err != nil {
		return 0, 0, err
	}

	if blur.Bounds().Dx() > MaxWidth {
		scale := float64(MaxWidth) / float64(blur.Bounds().Dx())
		newH := uint(float64(blur.Bounds().Dy()) * scale)
		blur = resize.Resize(uint(MaxWidth), newH, blur, resize.Lanczos3)
		sharp = resize.Resize(uint(MaxWidth), newH, sharp, resize.Lanczos3)
	}

	blurN := toNRGBA(blur)
	sharpN := toNRGBA(sharp)

	base := fmt.Sprintf("%v_%v", scene, name)
	if err := savePNG(blurN, fmt.Sprintf("%v/%v.png", outBlur, base)); err != nil {
		return 0, 0, err
	}
	if err := savePNG(sharpN, fmt.Sprintf("%v/%v.png", outSharp, base)); err != nil {
		return 0, 0, err
	}

	// offline flip augmentation
	if err := imaging.Save(imaging.FlipH(blurN), fmt.Sprintf("%v/%v_flip.png", outBlur, base)); err != nil {
		return 0, 0, err
	}
	if err := imaging.Save(imaging.FlipH(sharpN), fmt.Sprintf("%v/%v_flip.png", outSharp, base)); err != nil {
		return 0, 0, err
	}

	return blurN.Bounds().Dx(), blurN.Bounds().Dy(), nil
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

// runPrep converts the raw GoPro layout
// (train/<scene>/{blur,sharp}/*.png) into flat tile/{blur,sharp}
// folders plus a pairs.csv manifest.
func runPrep() {
	start := time.Now()

	outBlur := fmt.Sprintf("%v/tile/blur", DataPath)
	outSharp := fmt.Sprintf("%v/tile/sharp", DataPath)
	for _, dir := range []string{outBlur, outSharp} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Fatal(err)
			}
		}
	}

	trainPath := fmt.Sprintf("%v/train", DataPath)
	scenes, err := ioutil.ReadDir(trainPath)
	if err != nil {
		log.Fatal(err)
	}

	manifest, err := os.Create(fmt.Sprintf("%v/pairs.csv", DataPath))
	if err != nil {
		log.Fatal(err)
	}
	defer manifest.Close()
	wr := csv.NewWriter(manifest)
	wr.Write([]string{"scene", "name", "width", "height"})

	for _, scene := range scenes {
		if !scene.IsDir() {
			continue
		}

		blurDir := fmt.Sprintf("%v/%v/blur", trainPath, scene.Name())
		frames, err := ioutil.ReadDir(blurDir)
		if err != nil {
			log.Fatal(err)
		}

		for _, frame := range frames {
			name := frame.Name()
			ext := filepath.Ext(name)
			stem := name[:len(name)-len(ext)]

			blurFile := fmt.Sprintf("%v/%v", blurDir, name)
			sharpFile := fmt.Sprintf("%v/%v/sharp/%v", trainPath, scene.Name(), name)
			w, h, err := prepPair(scene.Name(), stem, blurFile, sharpFile, outBlur, outSharp)
			if err != nil {
				err := fmt.Errorf("Processing %v/%v error: %v\n", scene.Name(), name, err)
				log.Fatal(err)
			}

			wr.Write([]string{scene.Name(), stem, strconv.Itoa(w), strconv.Itoa(h)})
		}

		fmt.Printf("Processing %v... Completed\n", scene.Name())
	}

	wr.Flush()
	if err := wr.Error(); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Frame preparation: completed.")
	fmt.Printf("Duration: %.2f (min)\n", time.Since(start).Minutes())
}
