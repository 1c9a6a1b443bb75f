package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/prestyle/lang/ast"
	"github.com/ardnew/prestyle/lang/parser"
	"github.com/ardnew/prestyle/log"
)

// globalCache stores parsed files keyed by the hash of their name and
// source. Parsed files are immutable, so they are shared by every
// Program in the process.
var globalCache sync.Map

type cacheEntry struct {
	once sync.Once
	file *ast.File
	err  error
}

// ReadSource reads all of r through an asynchronous read-ahead buffer.
func ReadSource(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err)
	}

	return string(data), nil
}

// ParseSource parses a module, returning a cached tree when the same name
// and source were parsed before.
func ParseSource(
	ctx context.Context,
	logger log.Logger,
	name, src string,
) (*ast.File, error) {
	h := xxh3.New()
	_, _ = h.WriteString(name)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(src)
	key := h.Sum64()

	value, hit := globalCache.LoadOrStore(key, new(cacheEntry))
	entry, _ := value.(*cacheEntry)

	logger.TraceContext(ctx, "cache lookup",
		slog.String("file", name),
		slog.String("source_hash", strconv.FormatUint(key, 16)),
		slog.Bool("cache_hit", hit),
	)

	entry.once.Do(func() {
		entry.file, entry.err = parseUncached(ctx, name, src, parser.WithLogger(logger))
	})

	return entry.file, entry.err
}

func parseUncached(
	ctx context.Context,
	name, src string,
	opts ...parser.Option,
) (*ast.File, error) {
	f, err := parser.ParseFile(ctx, name, src, opts...)
	if err != nil {
		return nil, ErrParse.Wrap(err).With(
			slog.String("file", name),
			slog.Int("source_length", len(src)),
		)
	}

	return f, nil
}

// ClearCache removes all cached parse trees.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
