package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// JobCache remembers what every job was last run against, so a build can
// skip jobs whose input, output and parameters are unchanged.
type JobCache struct {
	BuildFileMod time.Time
	Jobs         map[string]CacheEntry

	path string
	mu   sync.Mutex
}

type CacheEntry struct {
	Input     string
	InputMod  time.Time
	OutputMod time.Time
	Transform string
}

// LoadJobCache reads the cache stored beside buildFilePath. A missing or
// unreadable cache, or a build file modified since the cache was written,
// gives an empty cache.
func LoadJobCache(buildFilePath string) *JobCache {
	cache := &JobCache{
		path: filepath.Join(filepath.Dir(buildFilePath), cacheFileName),
	}

	data, err := os.ReadFile(cache.path)
	if err == nil {
		err = json.Unmarshal(data, cache)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("path", cache.path).Msg("ignoring unreadable job cache")
	}
	if cache.Jobs == nil {
		cache.Jobs = map[string]CacheEntry{}
	}

	if stat, err := os.Stat(buildFilePath); err == nil && !stat.ModTime().Equal(cache.BuildFileMod) {
		cache.Jobs = map[string]CacheEntry{}
		cache.BuildFileMod = stat.ModTime()
	}

	return cache
}

// Reset forgets every job.
func (c *JobCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Jobs = map[string]CacheEntry{}
}

func entryFor(job Job) (CacheEntry, error) {
	input, err := os.Stat(job.Input)
	if err != nil {
		return CacheEntry{}, err
	}
	output, err := os.Stat(job.Output)
	if err != nil {
		return CacheEntry{}, err
	}
	return CacheEntry{
		Input:     job.Input,
		InputMod:  input.ModTime(),
		OutputMod: output.ModTime(),
		Transform: job.Transformer.String(),
	}, nil
}

// Fresh reports whether job's output exists, is the one this tool wrote and
// was produced from the current input with the current parameters.
func (c *JobCache) Fresh(job Job) bool {
	current, err := entryFor(job)
	if err != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	cached, ok := c.Jobs[job.Output]
	return ok && cached.Input == current.Input &&
		cached.InputMod.Equal(current.InputMod) &&
		cached.OutputMod.Equal(current.OutputMod) &&
		cached.Transform == current.Transform
}

func (c *JobCache) Update(job Job) {
	entry, err := entryFor(job)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Jobs[job.Output] = entry
}

func (c *JobCache) Save() error {
	c.mu.Lock()
	data, err := json.Marshal(c)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0644)
}
