package runtime

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	cfgpkg "github.com/rzbill/memstream/internal/config"
	"github.com/rzbill/memstream/internal/stream"
	"github.com/rzbill/memstream/pkg/log"
)

var (
	// ErrStreamNotFound reports a lookup for a stream that does not exist
	// when auto-creation is disabled.
	ErrStreamNotFound = errors.New("stream not found")
	// ErrStreamExists reports an explicit create of a name already in use.
	ErrStreamExists = errors.New("stream already exists")
	// ErrInvalidStreamName reports a name rejected by the configured pattern.
	ErrInvalidStreamName = errors.New("invalid stream name")
	// ErrTooManyStreams reports that the configured stream cap is reached.
	ErrTooManyStreams = errors.New("too many streams")
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger log.Logger
	Clock  stream.NowFunc
}

// Runtime is the registry of live streams for a single-node instance. It
// owns stream lifecycle and name validation; per-entry operations go
// through the *stream.Stream handles it returns.
type Runtime struct {
	mu      sync.RWMutex
	streams map[string]*stream.Stream

	config cfgpkg.Config
	logger log.Logger
	nameRe *regexp.Regexp
	clock  stream.NowFunc
}

// Open validates the configuration and returns an empty Runtime.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if cfg.StreamNameRegex == "" {
		cfg = cfgpkg.Default()
	}
	re, err := regexp.Compile("^(?:" + cfg.StreamNameRegex + ")$")
	if err != nil {
		return nil, fmt.Errorf("stream name pattern: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = stream.SystemNow
	}
	return &Runtime{
		streams: make(map[string]*stream.Stream),
		config:  cfg,
		logger:  logger.WithComponent("runtime"),
		nameRe:  re,
		clock:   clock,
	}, nil
}

// Close drops every stream. The runtime is unusable afterwards.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams = nil
	return nil
}

// CheckHealth reports whether the runtime is open and serving.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.streams == nil {
		return errors.New("runtime closed")
	}
	return nil
}

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// GetStream looks up an existing stream.
func (r *Runtime) GetStream(name string) (*stream.Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.streams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStreamNotFound, name)
	}
	return s, nil
}

// EnsureStream returns the named stream, creating it when absent and
// auto-creation is enabled.
func (r *Runtime) EnsureStream(name string) (*stream.Stream, error) {
	r.mu.RLock()
	s, ok := r.streams[name]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}
	if !r.config.AllowAutoCreateStreams {
		return nil, fmt.Errorf("%w: %q", ErrStreamNotFound, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(name)
}

// CreateStream registers a new stream, failing if the name is taken.
func (r *Runtime) CreateStream(name string) (*stream.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrStreamExists, name)
	}
	return r.createLocked(name)
}

func (r *Runtime) createLocked(name string) (*stream.Stream, error) {
	if r.streams == nil {
		return nil, errors.New("runtime closed")
	}
	// Racing EnsureStream callers may both reach here; the second one wins
	// the lookup instead of creating a duplicate.
	if s, ok := r.streams[name]; ok {
		return s, nil
	}
	if !r.nameRe.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStreamName, name)
	}
	if max := r.config.MaxStreams; max > 0 && len(r.streams) >= max {
		return nil, fmt.Errorf("%w: limit %d", ErrTooManyStreams, max)
	}
	s := stream.New(name, stream.WithClock(r.clock))
	r.streams[name] = s
	r.logger.Debug("stream created", log.Str("stream", name))
	return s, nil
}

// DeleteStream removes a stream and everything it holds, reporting whether
// it existed.
func (r *Runtime) DeleteStream(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[name]; !ok {
		return false
	}
	delete(r.streams, name)
	r.logger.Debug("stream deleted", log.Str("stream", name))
	return true
}

// ListStreams returns the registered stream names, sorted.
func (r *Runtime) ListStreams() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.streams))
	for name := range r.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
