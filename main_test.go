package main

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntArg(t *testing.T) {
	testCases := []struct {
		raw  string
		want int
	}{
		{"", 50},
		{"80", 80},
		{"0", 0},
		{"765", 765},
		{"766", 50},
		{"-3", 50},
		{"eighty", 50},
		{"12.5", 50},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, intArg("threshold", tc.raw, 50, 0, 765), "%q", tc.raw)
	}
}

func TestFloatArg(t *testing.T) {
	testCases := []struct {
		raw  string
		want float64
	}{
		{"", 39},
		{"20", 20},
		{"20.5", 20.5},
		{"256", 39},
		{"dark", 39},
		{"NaN", 39},
		{"-Inf", 39},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, floatArg("min_threshold", tc.raw, 39, 0, 255), "%q", tc.raw)
	}
}

func writeFishPng(t *testing.T) string {
	t.Helper()
	input := filepath.Join(t.TempDir(), "fish.png")
	writeTestPng(t, input, newTestImage(4, 4, func(x, y int) color.NRGBA {
		switch {
		case x == 0:
			return color.NRGBA{10, 10, 20, 255}
		case x == 1:
			return color.NRGBA{0, 0, 255, 255}
		default:
			return color.NRGBA{220, 200, 180, 255}
		}
	}))
	return input
}

func TestSingleJob(t *testing.T) {
	input := writeFishPng(t)

	job, err := singleJob(false, input, "", [3]string{})
	require.NoError(t, err)
	require.Equal(t, defaultOutputPath(input), job.Output)
	require.Equal(t, HardEdgeParams{Threshold: defaultThreshold}, job.Transformer)

	job, err = singleJob(false, input, "out.png", [3]string{"1000"})
	require.NoError(t, err)
	require.Equal(t, "out.png", job.Output)
	require.Equal(t, HardEdgeParams{Threshold: defaultThreshold}, job.Transformer)

	job, err = singleJob(true, input, "", [3]string{})
	require.NoError(t, err)
	require.Equal(t, GradientParams{
		MinThreshold:   defaultMinThreshold,
		MaxThreshold:   defaultMaxThreshold,
		ColorThreshold: defaultColorThreshold,
	}, job.Transformer)

	job, err = singleJob(true, input, "", [3]string{"20", "150", "30"})
	require.NoError(t, err)
	require.Equal(t, GradientParams{MinThreshold: 20, MaxThreshold: 150, ColorThreshold: 30}, job.Transformer)

	// An out of range min falls back to 39, which is still below 95.
	_, err = singleJob(true, input, "", [3]string{"300"})
	require.NoError(t, err)

	job, err = singleJob(true, input, "", [3]string{"NaN"})
	require.NoError(t, err)
	require.Equal(t, defaultMinThreshold, job.Transformer.(GradientParams).MinThreshold)

	_, err = singleJob(true, input, "", [3]string{"60", "40"})
	require.ErrorIs(t, err, ErrInvalidThresholds)

	_, err = singleJob(false, filepath.Join(t.TempDir(), "missing.png"), "", [3]string{})
	require.ErrorIs(t, err, ErrInputNotFound)
}

func TestRunHardEdge(t *testing.T) {
	input := writeFishPng(t)

	var stdout bytes.Buffer
	require.Equal(t, 0, run([]string{"unblack", input}, &stdout))
	assert.Contains(t, stdout.String(), "Processed pixels: 4/16")
	assert.Contains(t, stdout.String(), "Size: 4x4")

	out, err := loadImage(context.Background(), defaultOutputPath(input))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{10, 10, 20, 0}, out.NRGBAAt(0, 2))
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, out.NRGBAAt(1, 2))
}

func TestRunBadThresholdUsesDefault(t *testing.T) {
	input := writeFishPng(t)
	output := filepath.Join(t.TempDir(), "out.png")

	var stdout bytes.Buffer
	require.Equal(t, 0, run([]string{"unblack", input, output, "lots"}, &stdout))
	assert.Contains(t, stdout.String(), "Black threshold: 50")

	out, err := loadImage(context.Background(), output)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
}

func TestRunGradient(t *testing.T) {
	input := writeFishPng(t)
	output := filepath.Join(t.TempDir(), "out.png")

	var stdout bytes.Buffer
	require.Equal(t, 0, run([]string{"unblack", "-g", input, output, "20", "150", "30"}, &stdout))
	assert.Contains(t, stdout.String(), "Color threshold: 30")

	out, err := loadImage(context.Background(), output)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(255), out.NRGBAAt(1, 0).A)
	assert.Equal(t, uint8(255), out.NRGBAAt(3, 0).A)
}

func TestRunGradientNaNUsesDefault(t *testing.T) {
	input := writeFishPng(t)
	output := filepath.Join(t.TempDir(), "out.png")

	var stdout bytes.Buffer
	require.Equal(t, 0, run([]string{"unblack", "-g", input, output, "NaN"}, &stdout))
	assert.Contains(t, stdout.String(), "Luminance range: 39 (transparent) ~ 95 (opaque)")

	out, err := loadImage(context.Background(), output)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
}

func TestRunFailures(t *testing.T) {
	input := writeFishPng(t)
	output := filepath.Join(t.TempDir(), "out.png")

	var stdout bytes.Buffer
	require.Equal(t, 1, run([]string{"unblack", "-g", input, output, "95", "39"}, &stdout))
	_, err := os.Stat(output)
	require.True(t, os.IsNotExist(err))

	require.Equal(t, 1, run([]string{"unblack", filepath.Join(t.TempDir(), "missing.png")}, &stdout))
	require.Equal(t, 1, run([]string{"unblack"}, &stdout))

	corrupt := filepath.Join(t.TempDir(), "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("\x89PNG\r\n\x1a\nbroken"), 0644))
	require.Equal(t, 1, run([]string{"unblack", corrupt}, &stdout))
}
