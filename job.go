package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
)

// Job turns the near-black pixels of one image transparent.
type Job struct {
	Name        string
	Input       string
	Output      string
	Transformer Transformer
}

type Result struct {
	Job      Job
	Width    int
	Height   int
	Report   Report
	Duration time.Duration
}

// Run decodes the input, applies the transform and writes the PNG output. The
// decoded buffer belongs to this call only.
func (j Job) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	log.Debug().Str("job", j.Name).Str("input", j.Input).Stringer("transform", j.Transformer).Msg("processing")

	img, err := loadImage(ctx, j.Input)
	if err != nil {
		return nil, err
	}

	report := j.Transformer.Apply(img)

	if err := savePng(ctx, img, j.Output); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &Result{
		Job:      j,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Report:   report,
		Duration: time.Since(start),
	}, nil
}

func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "Done %s (%s)\n  Input: %s\n  Output: %s\n  Size: %dx%d\n",
		r.Job.Name, r.Job.Transformer, r.Job.Input, r.Job.Output, r.Width, r.Height)
	if err != nil {
		return int64(n), err
	}
	m, err := r.Report.WriteTo(w)
	return int64(n) + m, err
}

func (r *Result) logDone() {
	log.Info().
		Str("job", r.Job.Name).
		Str("output", r.Job.Output).
		Int("width", r.Width).
		Int("height", r.Height).
		Dur("took", r.Duration).
		Object("stats", r.Report).
		Msg("image processed")
}
