package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// JobConfig is one [[Jobs]] table of a build file. Omitted fields fall back
// to the [Defaults] table and then to the built in defaults.
type JobConfig struct {
	Name           string
	Input          string
	Output         string
	Mode           string
	Threshold      *int
	MinThreshold   *float64
	MaxThreshold   *float64
	ColorThreshold *int
}

type BuildFile struct {
	Defaults JobConfig
	Jobs     []JobConfig

	dir string
}

func loadBuildFile(buildFilePath string) (*BuildFile, error) {
	var config BuildFile
	if _, err := toml.DecodeFile(buildFilePath, &config); err != nil {
		return nil, fmt.Errorf("reading build file %s: %w", buildFilePath, err)
	}
	config.dir = filepath.Dir(buildFilePath)
	return &config, nil
}

func (b *BuildFile) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(b.dir, p)
}

func pick[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func (b *BuildFile) transformer(cfg JobConfig) (Transformer, error) {
	modeName := cfg.Mode
	if modeName == "" {
		modeName = b.Defaults.Mode
	}
	if modeName == "" {
		modeName = string(ModeHardEdge)
	}
	mode, err := ParseMode(modeName)
	if err != nil {
		return nil, err
	}

	var t Transformer
	switch mode {
	case ModeHardEdge:
		threshold := defaultThreshold
		t = HardEdgeParams{
			Threshold: *pick(cfg.Threshold, b.Defaults.Threshold, &threshold),
		}
	case ModeGradient:
		minThreshold, maxThreshold, colorThreshold := defaultMinThreshold, defaultMaxThreshold, defaultColorThreshold
		t = GradientParams{
			MinThreshold:   *pick(cfg.MinThreshold, b.Defaults.MinThreshold, &minThreshold),
			MaxThreshold:   *pick(cfg.MaxThreshold, b.Defaults.MaxThreshold, &maxThreshold),
			ColorThreshold: *pick(cfg.ColorThreshold, b.Defaults.ColorThreshold, &colorThreshold),
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Resolve turns the job tables into runnable jobs. Relative paths are taken
// from the build file's directory.
func (b *BuildFile) Resolve() ([]Job, error) {
	jobs := make([]Job, 0, len(b.Jobs))
	outputs := make(map[string]string, len(b.Jobs))
	for i, cfg := range b.Jobs {
		if cfg.Input == "" {
			return nil, fmt.Errorf("job %d: no input given", i)
		}
		name := cfg.Name
		if name == "" {
			name = filepath.Base(cfg.Input)
		}

		t, err := b.transformer(cfg)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", name, err)
		}

		input := b.path(cfg.Input)
		output := b.path(cfg.Output)
		if output == "" {
			output = defaultOutputPath(input)
		}
		if other, ok := outputs[output]; ok {
			return nil, fmt.Errorf("job %s: output %s already written by job %s", name, output, other)
		}
		outputs[output] = name

		jobs = append(jobs, Job{
			Name:        name,
			Input:       input,
			Output:      output,
			Transformer: t,
		})
	}
	return jobs, nil
}

// Generate runs every job whose inputs changed since the cache was written,
// at most workers at a time. The first failing job cancels the rest.
func (b *BuildFile) Generate(ctx context.Context, cache *JobCache, workers int, w io.Writer) error {
	jobs, err := b.Resolve()
	if err != nil {
		return err
	}

	workQueue := []Job{}
	for _, job := range jobs {
		if cache.Fresh(job) {
			log.Info().Str("job", job.Name).Msg("skipping, no changes found")
			continue
		}
		workQueue = append(workQueue, job)
	}

	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var outLock sync.Mutex
	for _, job := range workQueue {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := job.Run(ctx)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			result.logDone()
			cache.Update(job)

			outLock.Lock()
			defer outLock.Unlock()
			_, err = result.WriteTo(w)
			return err
		})
	}
	err = g.Wait()

	// Completed jobs are recorded even when another one failed.
	if saveErr := cache.Save(); saveErr != nil {
		log.Warn().Err(saveErr).Msg("error saving job cache")
	}
	return err
}
