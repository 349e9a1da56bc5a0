// Package imagegen asks the image model for slide artwork. It never fails the
// caller: a request that errors or times out simply yields no image.
package imagegen

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/thywilljoshua/pdf-to-deck/internal/ai"
)

type Options struct {
	Timeout       time.Duration // per image; 0 means 15s
	Concurrency   int
	RatePerSecond float64 // 0 disables limiting
}

type Synthesizer struct {
	gen     ai.ImageGenerator
	timeout time.Duration
	workers int
	limiter *rate.Limiter
	log     zerolog.Logger
}

func New(gen ai.ImageGenerator, opts Options, log zerolog.Logger) *Synthesizer {
	if gen == nil {
		gen = ai.Noop{}
	}
	s := &Synthesizer{
		gen:     gen,
		timeout: opts.Timeout,
		workers: opts.Concurrency,
		log:     log,
	}
	if s.timeout <= 0 {
		s.timeout = 15 * time.Second
	}
	if s.workers < 1 {
		s.workers = 1
	}
	if opts.RatePerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	return s
}

// Generate runs one job and returns the image bytes or nil.
func (s *Synthesizer) Generate(ctx context.Context, job Job) []byte {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil
		}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	img, err := s.gen.GenerateImage(ctx, job.Prompt, job.Aspect)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("image", job.Key).Dur("took", time.Since(start)).Msg("image generation failed")
		return nil
	case len(img) == 0:
		s.log.Debug().Str("image", job.Key).Msg("no image returned")
		return nil
	}
	s.log.Debug().Str("image", job.Key).Int("bytes", len(img)).Dur("took", time.Since(start)).Msg("image generated")
	return img
}

// Images holds prefetched results by job key. Missing keys mean no image.
type Images map[string][]byte

func (im Images) Get(key string) []byte { return im[key] }

// Count returns how many jobs produced an image.
func (im Images) Count() int {
	n := 0
	for _, b := range im {
		if len(b) > 0 {
			n++
		}
	}
	return n
}

// Prefetch runs jobs concurrently. progress, when set, is called after each
// job with the number finished so far.
func (s *Synthesizer) Prefetch(ctx context.Context, jobs []Job, progress func(done, total int)) Images {
	out := make(Images, len(jobs))
	var mu sync.Mutex
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, job := range jobs {
		g.Go(func() error {
			img := s.Generate(gctx, job)
			mu.Lock()
			if img != nil {
				out[job.Key] = img
			}
			mu.Unlock()
			if progress != nil {
				progress(int(done.Add(1)), len(jobs))
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
