// Package artwork resolves metadata artwork without blocking the
// metadata update path. Each metadata update carries a monotonic
// generation; a resolution that finishes after a newer update has
// started is discarded instead of being attached to stale metadata.
package artwork

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// fetchTimeout bounds a single remote artwork fetch. This is resolver
// policy, not a protocol-level timeout.
const fetchTimeout = 15 * time.Second

// maxArtworkBytes bounds the size of a fetched remote image.
const maxArtworkBytes = 16 << 20

// Resolver loads artwork URIs asynchronously and caches the results
// by URI.
type Resolver struct {
	client *http.Client
	cache  *xsync.MapOf[string, []byte]

	generation atomic.Int64

	log zerolog.Logger
}

// NewResolver returns a new Resolver.
func NewResolver(log zerolog.Logger) *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: fetchTimeout},
		cache:  xsync.NewMapOf[string, []byte](),
		log:    log,
	}
}

// NextGeneration marks the start of a new metadata snapshot and
// returns its generation. Resolutions started under earlier
// generations will be discarded on completion.
func (r *Resolver) NextGeneration() int64 {
	return r.generation.Add(1)
}

// Generation returns the current metadata generation.
func (r *Resolver) Generation() int64 {
	return r.generation.Load()
}

// Resolve loads the artwork at uri in the background and calls deliver
// with the image bytes, unless a newer metadata generation has been
// started in the meantime. deliver is called at most once, from the
// resolver's goroutine.
func (r *Resolver) Resolve(ctx context.Context, generation int64, uri string, deliver func([]byte)) {
	go func() {
		if data, ok := r.cache.Load(uri); ok {
			r.deliver(generation, uri, data, deliver)
			return
		}

		data, err := r.fetch(ctx, uri)
		if err != nil {
			r.log.Warn().Err(err).Str("uri", uri).Msg("artwork fetch failed")
			return
		}

		r.cache.Store(uri, data)
		r.deliver(generation, uri, data, deliver)
	}()
}

// deliver hands the resolved bytes over if the generation is still
// current.
func (r *Resolver) deliver(generation int64, uri string, data []byte, deliver func([]byte)) {
	if generation != r.generation.Load() {
		r.log.Debug().Str("uri", uri).Int64("generation", generation).
			Msg("discarding artwork for superseded metadata")
		return
	}

	deliver(data)
}

// fetch reads the artwork from a remote or local URI.
func (r *Resolver) fetch(ctx context.Context, uri string) ([]byte, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse artwork uri: %w", err)
	}

	switch parsed.Scheme {
	case "http", "https":
		return r.fetchRemote(ctx, uri)

	case "file":
		return os.ReadFile(parsed.Path)

	case "":
		return os.ReadFile(uri)
	}

	return nil, fmt.Errorf("unsupported artwork uri scheme %q", parsed.Scheme)
}

func (r *Resolver) fetchRemote(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") &&
		!strings.HasPrefix(contentType, "application/octet-stream") {
		return nil, fmt.Errorf("artwork fetch returned content type %q", contentType)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxArtworkBytes))
}
