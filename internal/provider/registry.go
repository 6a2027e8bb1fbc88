package provider

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

// DefaultMaxConcurrency bounds fan-out when no limit is configured.
const DefaultMaxConcurrency = 4

// Registry maps image sources to adapters. Single-source calls propagate
// adapter errors unchanged. Aggregate calls tolerate per-source failures:
// a failing source is logged and contributes no images.
type Registry struct {
	mu            sync.RWMutex
	adapters      map[models.ImageSource]Adapter
	order         []models.ImageSource
	defaultSource models.ImageSource

	logger         *slog.Logger
	callTimeout    time.Duration
	maxConcurrency int
	shuffle        func([]models.BackgroundImage)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters:       make(map[models.ImageSource]Adapter),
		logger:         slog.Default(),
		maxConcurrency: DefaultMaxConcurrency,
		shuffle: func(images []models.BackgroundImage) {
			lo.Shuffle(images)
		},
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithCallTimeout bounds each adapter call made by an aggregate operation.
// Zero leaves calls unbounded.
func (r *Registry) WithCallTimeout(d time.Duration) *Registry {
	r.callTimeout = d
	return r
}

// WithMaxConcurrency limits how many adapters an aggregate call runs at once.
func (r *Registry) WithMaxConcurrency(n int) *Registry {
	if n > 0 {
		r.maxConcurrency = n
	}
	return r
}

// WithShuffle replaces the permutation used by MixedRandomImages.
func (r *Registry) WithShuffle(shuffle func([]models.BackgroundImage)) *Registry {
	r.shuffle = shuffle
	return r
}

// Register adds or replaces the adapter for source. The first registered
// source becomes the default when none is set.
func (r *Registry) Register(source models.ImageSource, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[source]; !exists {
		r.order = append(r.order, source)
	}
	r.adapters[source] = adapter
	if r.defaultSource == "" {
		r.defaultSource = source
	}
}

// Adapter returns the adapter for source or an *UnknownSourceError.
func (r *Registry) Adapter(source models.ImageSource) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapterLocked(source)
}

func (r *Registry) adapterLocked(source models.ImageSource) (Adapter, error) {
	a, ok := r.adapters[source]
	if !ok {
		return nil, &UnknownSourceError{Source: source}
	}
	return a, nil
}

// Sources returns registered sources in registration order.
func (r *Registry) Sources() []models.ImageSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// SetDefaultSource changes the source used by unqualified calls.
func (r *Registry) SetDefaultSource(source models.ImageSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.adapterLocked(source); err != nil {
		return err
	}
	r.defaultSource = source
	return nil
}

// DefaultSource returns the source used by unqualified calls.
func (r *Registry) DefaultSource() models.ImageSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultSource
}

func (r *Registry) defaultAdapter() (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapterLocked(r.defaultSource)
}

// RandomImage returns one image from the default source.
func (r *Registry) RandomImage(ctx context.Context, filters Filters) (models.BackgroundImage, error) {
	a, err := r.defaultAdapter()
	if err != nil {
		return models.BackgroundImage{}, err
	}
	return a.RandomImage(ctx, filters)
}

// RandomImages returns count images from the default source.
func (r *Registry) RandomImages(ctx context.Context, count int, filters Filters) ([]models.BackgroundImage, error) {
	a, err := r.defaultAdapter()
	if err != nil {
		return nil, err
	}
	return a.RandomImages(ctx, count, filters)
}

// SearchImages searches the default source.
func (r *Registry) SearchImages(ctx context.Context, query string, filters Filters) ([]models.BackgroundImage, error) {
	a, err := r.defaultAdapter()
	if err != nil {
		return nil, err
	}
	return a.SearchImages(ctx, query, filters)
}

// SearchImagesFromMultipleSources queries every listed source concurrently
// and concatenates the results in list order. Sources that fail add nothing.
// An unregistered source fails the whole call before any request is made.
func (r *Registry) SearchImagesFromMultipleSources(ctx context.Context, query string, sources []models.ImageSource, filters Filters) ([]models.BackgroundImage, error) {
	return r.fanOut(ctx, "search", sources, func(ctx context.Context, a Adapter) ([]models.BackgroundImage, error) {
		return a.SearchImages(ctx, query, filters)
	})
}

// MixedRandomImages asks each source for ceil(count/len(sources)) images,
// shuffles the combined results and truncates to count. A shortfall is not
// an error.
func (r *Registry) MixedRandomImages(ctx context.Context, count int, sources []models.ImageSource, filters Filters) ([]models.BackgroundImage, error) {
	if count <= 0 || len(sources) == 0 {
		if _, err := r.resolve(sources); err != nil {
			return nil, err
		}
		return []models.BackgroundImage{}, nil
	}

	perSource := (count + len(sources) - 1) / len(sources)
	images, err := r.fanOut(ctx, "mixed", sources, func(ctx context.Context, a Adapter) ([]models.BackgroundImage, error) {
		return a.RandomImages(ctx, perSource, filters)
	})
	if err != nil {
		return nil, err
	}

	r.shuffle(images)
	if len(images) > count {
		images = images[:count]
	}
	return images, nil
}

func (r *Registry) resolve(sources []models.ImageSource) ([]Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapters := make([]Adapter, len(sources))
	for i, s := range sources {
		a, err := r.adapterLocked(s)
		if err != nil {
			return nil, err
		}
		adapters[i] = a
	}
	return adapters, nil
}

// fanOut runs call for every source and settles each branch into its own
// slot so the result order follows sources, not completion order.
func (r *Registry) fanOut(
	ctx context.Context,
	op string,
	sources []models.ImageSource,
	call func(context.Context, Adapter) ([]models.BackgroundImage, error),
) ([]models.BackgroundImage, error) {
	adapters, err := r.resolve(sources)
	if err != nil {
		return nil, err
	}

	results := make([][]models.BackgroundImage, len(adapters))

	var g errgroup.Group
	g.SetLimit(r.maxConcurrency)
	for i, a := range adapters {
		g.Go(func() error {
			callCtx := ctx
			if r.callTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, r.callTimeout)
				defer cancel()
			}

			images, err := call(callCtx, a)
			if err != nil {
				r.logger.WarnContext(ctx, "image source failed",
					slog.String("operation", op),
					slog.String("source", string(sources[i])),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = images
			return nil
		})
	}
	_ = g.Wait()

	out := slices.Concat(results...)
	if out == nil {
		out = []models.BackgroundImage{}
	}
	return out, nil
}
