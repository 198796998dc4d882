package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/hupe1980/rcslice"
	"github.com/hupe1980/rcslice/resource"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency is the default number of parallel range reads per load.
	DefaultConcurrency = 4
	// DefaultChunkSize is the default size of a single range read.
	DefaultChunkSize = 4 * 1024 * 1024

	readerStep = 32 * 1024
)

// LoaderOptions contains configuration for a Loader.
type LoaderOptions struct {
	// Concurrency is the number of parallel range reads per load.
	Concurrency int
	// ChunkSize is the size of a single range read in bytes.
	ChunkSize int64
	// DisableMapping forces mappable blobs to be copied to the heap.
	DisableMapping bool
	// Controller charges heap buffers against a memory budget and limits
	// fetch concurrency and IO throughput. Nil means unlimited.
	Controller *resource.Controller
	// Logger logs loads and buffer reclamation. Nil disables logging.
	Logger *rcslice.Logger
	// Metrics receives allocation and reclamation events of loaded buffers.
	Metrics rcslice.MetricsCollector
}

// LoaderOption configures a Loader.
type LoaderOption func(*LoaderOptions)

// WithConcurrency sets the number of parallel range reads per load.
func WithConcurrency(n int) LoaderOption {
	return func(o *LoaderOptions) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithChunkSize sets the size of a single range read.
func WithChunkSize(size int64) LoaderOption {
	return func(o *LoaderOptions) {
		if size > 0 {
			o.ChunkSize = size
		}
	}
}

// WithoutMapping copies mappable blobs to the heap instead of wrapping the
// mapping.
func WithoutMapping() LoaderOption {
	return func(o *LoaderOptions) {
		o.DisableMapping = true
	}
}

// WithController sets the resource controller.
func WithController(rc *resource.Controller) LoaderOption {
	return func(o *LoaderOptions) {
		o.Controller = rc
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(l *rcslice.Logger) LoaderOption {
	return func(o *LoaderOptions) {
		o.Logger = l
	}
}

// WithLoaderMetrics sets the metrics collector for loaded buffers.
func WithLoaderMetrics(m rcslice.MetricsCollector) LoaderOption {
	return func(o *LoaderOptions) {
		o.Metrics = m
	}
}

// Loader loads blobs into reference-counted byte buffers.
// A Loader is safe for concurrent use.
type Loader struct {
	opts LoaderOptions
}

// NewLoader creates a Loader.
func NewLoader(optFns ...LoaderOption) *Loader {
	opts := LoaderOptions{
		Concurrency: DefaultConcurrency,
		ChunkSize:   DefaultChunkSize,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Loader{opts: opts}
}

// Load reads the named blob into an ArcBytes owning the whole blob.
//
// If the blob is Mappable the mapping is wrapped without copying and the
// blob is closed when the last view is released. Otherwise the blob is read
// into a heap buffer with parallel range reads; its size is held against
// the controller's memory budget until the last view is released.
//
// Releasing the last view of a mapped buffer unmaps it: slices taken from
// Slice, Advance or Retract must not be read afterwards. Copy what must
// outlive the buffer, or use WithoutMapping to get heap buffers whose
// slices stay valid for as long as they are referenced.
func (l *Loader) Load(ctx context.Context, store BlobStore, name string) (*rcslice.ArcBytes, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		l.logLoad(ctx, name, 0, false, err)
		return nil, err
	}

	if m, ok := blob.(Mappable); ok && !l.opts.DisableMapping {
		data, err := m.Bytes()
		if err == nil {
			l.logLoad(ctx, name, int64(len(data)), true, nil)
			return rcslice.NewArcBytes(data, l.bufferOptions(name, func() { _ = blob.Close() })...), nil
		}
		if l.opts.Logger != nil {
			l.opts.Logger.DebugContext(ctx, "mapping unavailable, reading", "name", name, "error", err)
		}
	}

	defer func() { _ = blob.Close() }()

	buf, err := l.read(ctx, blob)
	if err != nil {
		err = fmt.Errorf("blobstore: load %q: %w", name, err)
		l.logLoad(ctx, name, blob.Size(), false, err)
		return nil, err
	}

	size := int64(len(buf))
	rc := l.opts.Controller
	l.logLoad(ctx, name, size, false, nil)
	return rcslice.NewArcBytes(buf, l.bufferOptions(name, func() { rc.ReleaseMemory(size) })...), nil
}

// LoadReader reads r to the end into an ArcBytes. Reads are throttled by the
// controller's IO limit. Memory is reserved against the controller's budget
// before each read, so a stream larger than the budget fails with
// resource.ErrExceedsLimit instead of being buffered whole. The reservation
// is held until the last view is released.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader) (*rcslice.ArcBytes, error) {
	rc := l.opts.Controller
	lr := resource.NewRateLimitedReader(ctx, r, rc)

	var limit int64
	if rc != nil {
		limit = rc.Config().MemoryLimitBytes
	}

	var data []byte
	for {
		step := min(l.opts.ChunkSize, readerStep)
		if limit > 0 {
			step = min(step, limit-int64(len(data)))
			if step == 0 {
				// Budget spent: the stream has to end here.
				var extra [1]byte
				n, err := io.ReadFull(lr, extra[:])
				if n == 0 && errors.Is(err, io.EOF) {
					break
				}
				rc.ReleaseMemory(int64(len(data)))
				if err == nil {
					err = resource.ErrExceedsLimit
				}
				return nil, fmt.Errorf("blobstore: load reader: %w", err)
			}
		}

		if err := rc.AcquireMemory(ctx, step); err != nil {
			rc.ReleaseMemory(int64(len(data)))
			return nil, fmt.Errorf("blobstore: load reader: %w", err)
		}

		data = slices.Grow(data, int(step))
		n, err := lr.Read(data[len(data) : len(data)+int(step)])
		data = data[:len(data)+n]
		rc.ReleaseMemory(step - int64(n))

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rc.ReleaseMemory(int64(len(data)))
			return nil, fmt.Errorf("blobstore: load reader: %w", err)
		}
	}

	size := int64(len(data))
	return rcslice.NewArcBytes(data, l.bufferOptions("", func() { rc.ReleaseMemory(size) })...), nil
}

// read copies blob into a new heap buffer. On success the buffer's size is
// held against the memory budget.
func (l *Loader) read(ctx context.Context, blob Blob) ([]byte, error) {
	size := blob.Size()
	if size < 0 || size > math.MaxInt {
		return nil, fmt.Errorf("invalid blob size %d", size)
	}

	rc := l.opts.Controller
	if err := rc.AcquireMemory(ctx, size); err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	if err := l.readChunks(ctx, blob, buf); err != nil {
		rc.ReleaseMemory(size)
		return nil, err
	}
	return buf, nil
}

func (l *Loader) readChunks(ctx context.Context, blob Blob, buf []byte) error {
	rc := l.opts.Controller
	size := int64(len(buf))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)

	for off := int64(0); off < size; off += l.opts.ChunkSize {
		end := min(off+l.opts.ChunkSize, size)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := rc.AcquireFetch(gctx); err != nil {
				return err
			}
			defer rc.ReleaseFetch()

			p := buf[off:end]
			if err := rc.AcquireIO(gctx, len(p)); err != nil {
				return err
			}

			n, err := blob.ReadAt(gctx, p, off)
			if n == len(p) {
				return nil
			}
			if err == nil || errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("read %d bytes at offset %d: %w", len(p), off, err)
		})
	}

	return g.Wait()
}

func (l *Loader) bufferOptions(name string, onRelease func()) []rcslice.Option {
	opts := []rcslice.Option{rcslice.WithOnRelease(onRelease)}
	if l.opts.Metrics != nil {
		opts = append(opts, rcslice.WithMetrics(l.opts.Metrics))
	}
	if l.opts.Logger != nil {
		logger := l.opts.Logger
		if name != "" {
			logger = logger.WithName(name)
		}
		opts = append(opts, rcslice.WithLogger(logger))
	}
	return opts
}

func (l *Loader) logLoad(ctx context.Context, name string, size int64, mapped bool, err error) {
	if l.opts.Logger != nil {
		l.opts.Logger.LogLoad(ctx, name, size, mapped, err)
	}
}
