package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	_ "github.com/oov/psd"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// defaultOutputPath is the input path with its extension replaced by the
// "_transparent.png" suffix.
func defaultOutputPath(inputFile string) string {
	return strings.TrimSuffix(inputFile, filepath.Ext(inputFile)) + outputSuffix
}

func checkInput(inputFile string) error {
	stat, err := os.Stat(inputFile)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrInputNotFound, inputFile)
	}
	if err != nil {
		return err
	}
	if stat.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInputNotFound, inputFile)
	}
	return nil
}

// loadImage decodes inputFile with whichever registered decoder recognises it
// and returns it as a buffer the transforms can own.
func loadImage(ctx context.Context, inputFile string) (*image.NRGBA, error) {
	if err := checkInput(inputFile); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(inputFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, inputFile)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", inputFile, err)
	}

	return ToNRGBA(img), nil
}

func savePng(ctx context.Context, img image.Image, outFile string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(outFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := imgio.PNGEncoder()(f, img); err != nil {
		f.Close()
		os.Remove(outFile)
		return fmt.Errorf("encoding %s: %w", outFile, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(outFile)
		return err
	}
	return nil
}
