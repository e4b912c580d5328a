package main

import (
	"os"
	"runtime"
	"strconv"
)

const (
	defaultThreshold      = 50
	defaultMinThreshold   = 39.0
	defaultMaxThreshold   = 95.0
	defaultColorThreshold = 50

	outputSuffix  = "_transparent.png"
	cacheFileName = ".unblack_cache.json"
)

var (
	logLevel   = "info"
	workerJobs = runtime.NumCPU()
)

func init() {
	if level := os.Getenv("UNBLACK_LOG_LEVEL"); level != "" {
		logLevel = level
	}
	if jobs := os.Getenv("UNBLACK_JOBS"); jobs != "" {
		if n, err := strconv.Atoi(jobs); err == nil && n > 0 {
			workerJobs = n
		}
	}
}
