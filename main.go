package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/akamensky/argparse"
	"github.com/pkg/profile"
	"github.com/rs/zerolog/log"
)

func intArg(name, raw string, def, lo, hi int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str(name, raw).Int("default", def).Msgf("%s must be an integer, using default", name)
		return def
	}
	if v < lo || v > hi {
		log.Warn().Int(name, v).Int("default", def).Msgf("%s must be between %d and %d, using default", name, lo, hi)
		return def
	}
	return v
}

func floatArg(name, raw string, def, lo, hi float64) float64 {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Str(name, raw).Float64("default", def).Msgf("%s must be a number, using default", name)
		return def
	}
	if !(v >= lo && v <= hi) {
		log.Warn().Float64(name, v).Float64("default", def).Msgf("%s must be between %g and %g, using default", name, lo, hi)
		return def
	}
	return v
}

// singleJob builds the job for a plain command line run. thresholds holds the
// trailing positional values: one threshold for hard-edge mode, or min, max and
// color difference for gradient mode. Empty values take their defaults.
func singleJob(gradient bool, input, output string, thresholds [3]string) (Job, error) {
	if err := checkInput(input); err != nil {
		return Job{}, err
	}
	if output == "" {
		output = defaultOutputPath(input)
	}

	var t Transformer
	if gradient {
		t = GradientParams{
			MinThreshold:   floatArg("min_threshold", thresholds[0], defaultMinThreshold, 0, maxLuminance),
			MaxThreshold:   floatArg("max_threshold", thresholds[1], defaultMaxThreshold, 0, maxLuminance),
			ColorThreshold: intArg("color_threshold", thresholds[2], defaultColorThreshold, 0, maxChroma),
		}
	} else {
		t = HardEdgeParams{
			Threshold: intArg("threshold", thresholds[0], defaultThreshold, 0, maxBrightness),
		}
		if thresholds[1] != "" || thresholds[2] != "" {
			log.Warn().Msg("hard-edge mode takes a single threshold, ignoring the rest")
		}
	}
	if err := t.Validate(); err != nil {
		return Job{}, err
	}

	return Job{
		Name:        filepath.Base(input),
		Input:       input,
		Output:      output,
		Transformer: t,
	}, nil
}

func runBuild(ctx context.Context, buildFilePath string, force bool, workers int, stdout io.Writer) error {
	buildFile, err := loadBuildFile(buildFilePath)
	if err != nil {
		return err
	}

	cache := LoadJobCache(buildFilePath)
	if force {
		cache.Reset()
	}

	return buildFile.Generate(ctx, cache, workers, stdout)
}

func run(args []string, stdout io.Writer) int {
	parser := argparse.NewParser("unblack", "Turns the near-black pixels of an image transparent")

	gradient := parser.Flag("g", "gradient", &argparse.Options{
		Help: "Gradient mode: alpha follows luminance, dark colors stay partially visible",
	})
	buildFilePath := parser.String("b", "build", &argparse.Options{
		Help: "Build file listing many images to process",
	})
	force := parser.Flag("f", "force", &argparse.Options{
		Help: "Process every build file job, even unchanged ones",
	})
	workers := parser.Int("j", "jobs", &argparse.Options{
		Default: workerJobs,
		Help:    "Number of build file jobs processed at once",
	})
	level := parser.String("l", "log-level", &argparse.Options{
		Default: logLevel,
		Help:    "Log level: trace, debug, info, warn, error or none",
	})
	profileDir := parser.String("p", "profile", &argparse.Options{
		Help: "Write a CPU profile into this directory",
	})

	input := parser.StringPositional(&argparse.Options{Help: "Input image"})
	output := parser.StringPositional(&argparse.Options{Help: "Output PNG, defaults to <input>_transparent.png"})
	var thresholds [3]*string
	thresholds[0] = parser.StringPositional(&argparse.Options{Help: "Threshold (0-765), or min luminance with -g"})
	thresholds[1] = parser.StringPositional(&argparse.Options{Help: "Max luminance with -g"})
	thresholds[2] = parser.StringPositional(&argparse.Options{Help: "Color difference threshold with -g"})

	if err := parser.Parse(args); err != nil {
		fmt.Fprint(stdout, parser.Usage(err))
		return 1
	}

	setupLogging(*level)

	if *profileDir != "" {
		defer profile.Start(
			profile.CPUProfile,
			profile.ProfilePath(*profileDir),
			profile.NoShutdownHook,
			profile.Quiet,
		).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *buildFilePath != "" {
		if err := runBuild(ctx, *buildFilePath, *force, *workers, stdout); err != nil {
			log.Error().Err(err).Str("build", *buildFilePath).Msg("build failed")
			return 1
		}
		return 0
	}

	if *input == "" {
		fmt.Fprint(stdout, parser.Usage("an input image is required"))
		return 1
	}

	job, err := singleJob(*gradient, *input, *output, [3]string{*thresholds[0], *thresholds[1], *thresholds[2]})
	if err != nil {
		log.Error().Err(err).Str("input", *input).Msg("invalid arguments")
		return 1
	}

	result, err := job.Run(ctx)
	if err != nil {
		log.Error().Err(err).Str("input", job.Input).Msg("error processing image")
		return 1
	}
	result.logDone()
	if _, err := result.WriteTo(stdout); err != nil {
		return 1
	}

	return 0
}

func main() {
	os.Exit(run(os.Args, os.Stdout))
}
