// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/viant/afs"
	"golang.org/x/sync/errgroup"

	"github.com/gemaraproj/reqcite-mcp/internal/annotation"
	"github.com/gemaraproj/reqcite-mcp/internal/cache"
)

// Pipeline produces annotation sets for source units.
type Pipeline struct {
	parsers []DocumentParser
	fs      afs.Service
	cache   cache.Cache
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache memoizes unit results keyed by file content.
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithFS replaces the storage service used to read unit files.
func WithFS(fs afs.Service) Option {
	return func(p *Pipeline) { p.fs = fs }
}

// NewPipeline creates a new Pipeline with the provided declaration parsers.
// Parser order matters: the first parser that can handle a file wins.
func NewPipeline(parsers []DocumentParser, opts ...Option) *Pipeline {
	p := &Pipeline{
		parsers: parsers,
		fs:      afs.New(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Annotations reads the unit's file and returns its annotation set.
func (p *Pipeline) Annotations(ctx context.Context, unit Unit) (*annotation.Set, error) {
	path := unit.UnitPath()
	content, err := p.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrRead, err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: %w: content is not valid UTF-8", path, ErrRead)
	}

	var kind string
	switch unit.(type) {
	case ScannedUnit:
		kind = "scanned"
	case DeclarativeUnit:
		kind = "declarative"
	default:
		return nil, fmt.Errorf("%s: unsupported unit type %T", path, unit)
	}

	variant := kind
	if u, ok := unit.(ScannedUnit); ok {
		variant += "/" + extractorKey(u.Pattern)
	}
	key := cache.Key(variant, path, content)
	if p.cache != nil {
		if set, ok := p.cache.Get(key); ok {
			p.logger.Debug("unit served from cache", "path", path, "kind", kind, "annotations", set.Len())
			return set, nil
		}
	}

	var set *annotation.Set
	switch u := unit.(type) {
	case ScannedUnit:
		set, err = scan(u, string(content))
	case DeclarativeUnit:
		set, err = p.Decode(ctx, DeclarationSource{Content: content, Path: u.Path})
	}
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		p.cache.Set(key, set)
	}
	p.logger.Debug("unit processed", "path", path, "kind", kind, "annotations", set.Len())
	return set, nil
}

// extractorKey identifies a comment pattern inside cache keys.
func extractorKey(e Extractor) string {
	if k, ok := e.(interface{ CacheKey() string }); ok {
		return k.CacheKey()
	}
	return fmt.Sprintf("%T%+v", e, e)
}

func scan(u ScannedUnit, text string) (*annotation.Set, error) {
	if u.Pattern == nil {
		return nil, fmt.Errorf("%s: %w: no comment pattern", u.Path, ErrExtract)
	}
	annos, err := u.Pattern.Extract(text, u.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", u.Path, ErrExtract, err)
	}
	set := annotation.NewSet()
	for _, a := range annos {
		if err := set.Insert(a); err != nil {
			return nil, fmt.Errorf("%s:%d: %w: %w", u.Path, a.Location.AnnoLine, ErrExtract, err)
		}
	}
	return set, nil
}

// Decode parses a declaration document and converts its entries.
func (p *Pipeline) Decode(ctx context.Context, source DeclarationSource) (*annotation.Set, error) {
	parser, err := p.selectParser(source)
	if err != nil {
		return nil, err
	}

	doc, err := parser.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: parser %q: %w", source.Path, ErrParse, parser.Name(), err)
	}
	return Convert(doc, source.Path)
}

// Collect processes units with at most workers in flight and returns the
// union of their sets. The first failure cancels the remaining units.
func (p *Pipeline) Collect(ctx context.Context, units []Unit, workers int) (*annotation.Set, error) {
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	corpus := annotation.NewSet()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, unit := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			set, err := p.Annotations(ctx, unit)
			if err != nil {
				return err
			}
			mu.Lock()
			corpus.Merge(set)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.logger.Info("collected annotations", "units", len(units), "annotations", corpus.Len())
	return corpus, nil
}

// selectParser returns the first registered parser that can handle the given source.
func (p *Pipeline) selectParser(source DeclarationSource) (DocumentParser, error) {
	for _, parser := range p.parsers {
		if parser.CanHandle(source) {
			return parser, nil
		}
	}
	return nil, fmt.Errorf("%s: %w (format hint: %q)", source.Path, ErrUnsupportedFormat, source.FormatHint())
}

// RegisteredParsers returns the names of all currently registered parsers.
func (p *Pipeline) RegisteredParsers() []string {
	names := make([]string, len(p.parsers))
	for i, parser := range p.parsers {
		names[i] = parser.Name()
	}
	return names
}
