// Package pipeline drives every configured site adapter through
// fetch, extract, dedup, filter, match and persist with a bounded worker pool.
package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/extract"
	"jobscout-engine/internal/scrape/types"
)

const DefaultWorkers = 4

type Store interface {
	Exists(ctx context.Context, fingerprint string) (bool, error)
	UpsertOffer(ctx context.Context, o domain.Offer) error
	UpsertMatch(ctx context.Context, fingerprint string, m domain.MatchResult) error
	Unscored(ctx context.Context) iter.Seq2[domain.Offer, error]
	RecordDrop(ctx context.Context, d domain.Drop) error
}

type Scorer interface {
	Score(ctx context.Context, o domain.Offer) (domain.MatchResult, error)
}

// Source is one adapter with the search it should run.
type Source struct {
	Adapter types.Adapter
	Search  types.Search
}

type Pipeline struct {
	store   Store
	scorer  Scorer
	sources []Source
	workers int
	filters Filters
	extract func(types.RawOfferDetail) (domain.Offer, error)
	log     *log.Logger
	now     func() time.Time
}

type Option func(*Pipeline)

func WithWorkers(n int) Option { return func(p *Pipeline) { p.workers = n } }

func WithFilters(f Filters) Option { return func(p *Pipeline) { p.filters = f } }

func WithLogger(l *log.Logger) Option { return func(p *Pipeline) { p.log = l } }

func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

func New(store Store, scorer Scorer, sources []Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   store,
		scorer:  scorer,
		sources: sources,
		workers: DefaultWorkers,
		extract: extract.Extract,
		log:     log.Default(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	if p.workers < 1 {
		p.workers = 1
	}
	return p
}

// Run resumes offers left unscored by an earlier run, then drains each source
// in turn. A fatal error (auth, persistence, a listing page that cannot be
// rendered) stops new work; offers already in flight finish and Run returns
// the partial summary with that error.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	id := uuid.NewString()
	r := &run{
		p:        p,
		id:       id[:8],
		inFlight: map[string]bool{},
		sum: Summary{
			RunID:          id,
			Started:        p.now(),
			DroppedByKind:  map[string]int{},
			UnscoredByKind: map[string]int{},
		},
	}
	r.logf("start sources=%d workers=%d", len(p.sources), p.workers)

	r.resume(ctx)

	for _, src := range p.sources {
		if r.stopped() {
			break
		}
		r.drain(ctx, src)
	}

	r.mu.Lock()
	r.sum.Finished = p.now()
	sum, err := r.sum, r.fatal
	r.mu.Unlock()

	if err != nil {
		r.logf("aborted: %v", err)
	}
	r.logf("done %s", sum)
	return sum, err
}

type run struct {
	p  *Pipeline
	id string

	mu       sync.Mutex
	sum      Summary
	fatal    error
	inFlight map[string]bool
}

func (r *run) logf(format string, args ...any) {
	r.p.log.Printf("[pipeline] run=%s "+format, append([]any{r.id}, args...)...)
}

func (r *run) resume(ctx context.Context) {
	var g errgroup.Group
	g.SetLimit(r.p.workers)

	for o, err := range r.p.store.Unscored(ctx) {
		if err != nil {
			r.fail(err)
			break
		}
		if r.stopped() {
			break
		}
		if !r.claim(o.Fingerprint) {
			continue
		}
		r.count(func(s *Summary) { s.Resumed++ })
		g.Go(func() error {
			defer r.release(o.Fingerprint)
			// a fatal error may have landed while waiting for a slot
			if r.stopped() {
				r.count(func(s *Summary) {
					s.Unscored++
					s.UnscoredByKind["skipped"]++
				})
				return nil
			}
			r.match(ctx, o)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *run) drain(ctx context.Context, src Source) {
	name := src.Adapter.Name()
	r.logf("listing site=%s url=%s", name, src.Search.URL)

	var g errgroup.Group
	g.SetLimit(r.p.workers)

	for raw, err := range src.Adapter.ListOffers(ctx, src.Search) {
		if err != nil {
			r.fail(fmt.Errorf("list %s: %w", name, err))
			break
		}
		if r.stopped() {
			break
		}
		r.count(func(s *Summary) { s.Listed++ })
		g.Go(func() error {
			if r.stopped() {
				return nil
			}
			r.process(ctx, src.Adapter, raw)
			return nil
		})
	}
	_ = g.Wait()
}

// process runs one listed offer to completion. Errors other than fatal ones
// end only this offer.
func (r *run) process(ctx context.Context, a types.Adapter, raw types.RawOffer) {
	d, err := a.FetchDetail(ctx, raw)
	if err != nil {
		r.drop(ctx, raw, "", err)
		return
	}
	o, err := r.p.extract(d)
	if err != nil {
		r.drop(ctx, raw, "", err)
		return
	}
	r.count(func(s *Summary) { s.Extracted++ })

	if !r.claim(o.Fingerprint) {
		r.count(func(s *Summary) { s.Deduplicated++ })
		return
	}
	defer r.release(o.Fingerprint)

	seen, err := r.p.store.Exists(ctx, o.Fingerprint)
	if err != nil {
		r.fail(err)
		return
	}
	if seen {
		if err := r.p.store.UpsertOffer(ctx, o); err != nil {
			r.fail(err)
			return
		}
		r.count(func(s *Summary) { s.Deduplicated++ })
		return
	}

	if err := r.p.filters.Check(o); err != nil {
		r.drop(ctx, raw, o.Fingerprint, err)
		return
	}

	if err := r.p.store.UpsertOffer(ctx, o); err != nil {
		r.fail(err)
		return
	}
	r.match(ctx, o)
}

func (r *run) match(ctx context.Context, o domain.Offer) {
	res, err := r.p.scorer.Score(ctx, o)
	if err != nil {
		kind := domain.Kind(err)
		r.logf("unscored fp=%s link=%s kind=%s err=%v", o.Fingerprint, o.SourceURL, kind, err)
		r.count(func(s *Summary) {
			s.Unscored++
			s.UnscoredByKind[kind]++
		})
		if domain.Fatal(err) {
			r.fail(err)
		}
		return
	}
	res.OfferFingerprint = o.Fingerprint
	if err := r.p.store.UpsertMatch(ctx, o.Fingerprint, res); err != nil {
		r.count(func(s *Summary) {
			s.Unscored++
			s.UnscoredByKind[domain.Kind(err)]++
		})
		r.fail(err)
		return
	}
	r.count(func(s *Summary) { s.Matched++ })
}

func (r *run) drop(ctx context.Context, raw types.RawOffer, fp string, err error) {
	kind := domain.Kind(err)
	r.logf("drop site=%s link=%s kind=%s err=%v", raw.SiteID, raw.Link, kind, err)
	r.count(func(s *Summary) {
		s.Dropped++
		s.DroppedByKind[kind]++
	})
	rec := domain.Drop{
		Fingerprint: fp,
		Link:        raw.Link,
		SiteID:      raw.SiteID,
		Kind:        kind,
		Reason:      err.Error(),
		At:          r.p.now(),
	}
	if err := r.p.store.RecordDrop(ctx, rec); err != nil {
		r.fail(err)
	}
}

func (r *run) count(fn func(*Summary)) {
	r.mu.Lock()
	fn(&r.sum)
	r.mu.Unlock()
}

// fail records the first fatal error. Later submissions check stopped.
func (r *run) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fatal == nil {
		r.fatal = err
	}
}

func (r *run) stopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fatal != nil
}

// claim marks fp as being processed in this run; false if it already is.
func (r *run) claim(fp string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight[fp] {
		return false
	}
	r.inFlight[fp] = true
	return true
}

func (r *run) release(fp string) {
	r.mu.Lock()
	delete(r.inFlight, fp)
	r.mu.Unlock()
}
