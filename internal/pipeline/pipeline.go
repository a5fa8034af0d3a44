package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/subtrans/internal/batch"
	"github.com/mgpai22/subtrans/internal/logging"
	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/mgpai22/subtrans/internal/translate"
)

// translates one batch; returns exactly one text per cue index of the batch
type BatchTranslator interface {
	TranslateBatch(ctx context.Context, b batch.Batch) (map[int]string, error)
}

// optional interface for translators that count their requests
type StatsReporter interface {
	Stats() translate.Stats
}

// translation memory consulted before calling the translator
type Cache interface {
	Get(ctx context.Context, namespace, language, text string) (string, bool, error)
	Put(ctx context.Context, namespace, language string, entries map[string]string) error
}

type Options struct {
	TargetLanguage string
	TokenBudget    int // estimated tokens per batch (default 700)
	Concurrency    int // batches in flight; 1 is strictly sequential
	// separates cache entries of different providers/models
	CacheNamespace string
}

// Report summarizes a completed run.
type Report struct {
	RunID         string
	Cues          int
	Batches       int
	Oversized     int
	CachedBatches int
	Requests      int
	Retries       int
	Output        string
	Elapsed       time.Duration
}

// Pipeline parses an SRT document, translates it batch by batch and
// reassembles it. A run either produces a complete translation or an error;
// partial output is never returned or written.
type Pipeline struct {
	translator BatchTranslator
	opts       Options
	batcher    *batch.Batcher
	cache      Cache
	logger     *logging.Logger
}

func New(
	translator BatchTranslator,
	opts Options,
	logger *logging.Logger,
) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pipeline{
		translator: translator,
		opts:       opts,
		batcher:    batch.New(batch.Options{TokenBudget: opts.TokenBudget}),
		logger:     logger,
	}
}

// enables the translation cache
func (p *Pipeline) WithCache(c Cache) *Pipeline {
	p.cache = c
	return p
}

// TranslateFile translates inputPath and writes the result. An empty
// outputPath selects DefaultOutputPath; StdoutPath skips writing and leaves
// printing to the caller. The output file is locked for the whole run and
// only replaced once every cue is translated.
func (p *Pipeline) TranslateFile(
	ctx context.Context,
	inputPath, outputPath string,
) (string, Report, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", Report{}, &FileAccessError{Op: "read", Path: inputPath, Err: err}
	}

	if outputPath == "" {
		outputPath = DefaultOutputPath(inputPath, p.opts.TargetLanguage)
	}

	if outputPath != StdoutPath {
		lock, err := lockOutput(outputPath)
		if err != nil {
			return "", Report{}, err
		}
		defer unlockOutput(lock)
	}

	out, report, err := p.TranslateContent(ctx, string(data))
	if err != nil {
		return "", report, err
	}

	if outputPath != StdoutPath {
		if err := writeAtomic(outputPath, out); err != nil {
			return "", report, err
		}
	}
	report.Output = outputPath

	p.logger.Infow("Translation written",
		"run_id", report.RunID,
		"output", outputPath,
	)
	return out, report, nil
}

// TranslateContent runs parse, batch, translate and reconstruct on an
// in-memory SRT document.
func (p *Pipeline) TranslateContent(
	ctx context.Context,
	content string,
) (string, Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}
	log := p.logger.With("run_id", report.RunID)

	if p.opts.TargetLanguage == "" {
		return "", report, fmt.Errorf("target language is required")
	}

	segments, err := subtitle.Parse(content)
	if err != nil {
		return "", report, err
	}
	if len(segments) == 0 {
		return "", report, &subtitle.ParseError{Reason: "no subtitle cues"}
	}
	report.Cues = len(segments)

	batches := p.batcher.Make(segments)
	report.Batches = len(batches)
	for _, b := range batches {
		if b.Oversized {
			report.Oversized++
			log.Warnw("Cue exceeds token budget, sending it alone",
				"cue", b.Segments[0].Index,
				"tokens", b.Tokens,
				"budget", p.batcher.Budget(),
			)
		}
	}

	log.Infow("Translating subtitles",
		"cues", len(segments),
		"batches", len(batches),
		"target_language", p.opts.TargetLanguage,
		"concurrency", p.opts.Concurrency,
	)

	before := p.stats()
	translations, cached, err := p.translateAll(ctx, log, batches)
	after := p.stats()
	report.Requests = after.Requests - before.Requests
	report.Retries = after.Retries - before.Retries
	report.CachedBatches = cached
	if err != nil {
		report.Elapsed = time.Since(start)
		log.Errorw("Translation failed", "error", err)
		return "", report, err
	}

	out, err := subtitle.Reconstruct(segments, translations)
	report.Elapsed = time.Since(start)
	if err != nil {
		return "", report, err
	}

	log.Infow("Translation complete",
		"cues", report.Cues,
		"batches", report.Batches,
		"cached_batches", report.CachedBatches,
		"requests", report.Requests,
		"retries", report.Retries,
		"elapsed", report.Elapsed.Round(time.Millisecond),
	)
	return out, report, nil
}

func (p *Pipeline) stats() translate.Stats {
	if r, ok := p.translator.(StatsReporter); ok {
		return r.Stats()
	}
	return translate.Stats{}
}

// translates every batch; sequential unless concurrency > 1
func (p *Pipeline) translateAll(
	ctx context.Context,
	log *logging.Logger,
	batches []batch.Batch,
) (map[int]string, int, error) {
	translations := make(map[int]string)
	cached := 0

	if p.opts.Concurrency <= 1 || len(batches) <= 1 {
		for _, b := range batches {
			if err := ctx.Err(); err != nil {
				return nil, cached, err
			}
			result, hit, err := p.translateBatch(ctx, log, b, len(batches))
			if err != nil {
				return nil, cached, err
			}
			if hit {
				cached++
			}
			for idx, text := range result {
				translations[idx] = text
			}
		}
		return translations, cached, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index   int
		Results map[int]string
		Cached  bool
		Error   error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					results, hit, err := p.translateBatch(
						ctx,
						log,
						batches[batchIdx],
						len(batches),
					)
					if err != nil {
						cancel()
					}
					resultChan <- batchResult{
						Index:   batchIdx,
						Results: results,
						Cached:  hit,
						Error:   err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var firstErr error
	for result := range resultChan {
		if result.Error != nil {
			// a batch aborted by our own cancel must not hide the failure
			// that caused it
			if firstErr == nil ||
				(isCancellation(firstErr) && !isCancellation(result.Error)) {
				firstErr = result.Error
			}
			cancel()
			continue
		}
		if result.Cached {
			cached++
		}
		for idx, text := range result.Results {
			translations[idx] = text
		}
	}

	if firstErr != nil {
		return nil, cached, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, cached, err
	}

	return translations, cached, nil
}

// translates a single batch, consulting the cache first
func (p *Pipeline) translateBatch(
	ctx context.Context,
	log *logging.Logger,
	b batch.Batch,
	total int,
) (map[int]string, bool, error) {
	if result, ok := p.lookupCache(ctx, log, b); ok {
		log.Debugw("Batch served from cache",
			"batch", b.Number,
			"cues", len(b.Segments),
		)
		return result, true, nil
	}

	log.Infow("Translating batch",
		"batch", b.Number,
		"batches", total,
		"cues", len(b.Segments),
		"tokens", b.Tokens,
	)

	result, err := p.translator.TranslateBatch(ctx, b)
	if err != nil {
		return nil, false, err
	}

	p.storeCache(ctx, log, b, result)
	return result, false, nil
}

// all-or-nothing: a batch is served from cache only when every cue is cached
func (p *Pipeline) lookupCache(
	ctx context.Context,
	log *logging.Logger,
	b batch.Batch,
) (map[int]string, bool) {
	if p.cache == nil {
		return nil, false
	}

	result := make(map[int]string, len(b.Segments))
	for _, seg := range b.Segments {
		text, ok, err := p.cache.Get(
			ctx,
			p.opts.CacheNamespace,
			p.opts.TargetLanguage,
			seg.Text,
		)
		if err != nil {
			log.Warnw("Translation cache lookup failed",
				"batch", b.Number,
				"error", err,
			)
			return nil, false
		}
		if !ok {
			return nil, false
		}
		result[seg.Index] = text
	}
	return result, true
}

func (p *Pipeline) storeCache(
	ctx context.Context,
	log *logging.Logger,
	b batch.Batch,
	result map[int]string,
) {
	if p.cache == nil {
		return
	}

	entries := make(map[string]string, len(b.Segments))
	for _, seg := range b.Segments {
		if text, ok := result[seg.Index]; ok {
			entries[seg.Text] = text
		}
	}
	if err := p.cache.Put(
		ctx,
		p.opts.CacheNamespace,
		p.opts.TargetLanguage,
		entries,
	); err != nil {
		log.Warnw("Translation cache update failed",
			"batch", b.Number,
			"error", err,
		)
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
