// Package geo resolves source addresses to countries using a local
// GeoLite2 database, with per-run memoization and an optional shared
// Redis cache.
package geo

import (
	"context"
	"io"
	"net"
	"os"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ApexPlayground/Tpot-analysis-project/internal/record"
)

// CountryLookup resolves one IP address to a country label. The
// production implementation wraps a GeoLite2 reader; tests substitute
// call-counting doubles.
type CountryLookup interface {
	Country(ip net.IP) (string, error)
}

type mmdbLookup struct {
	reader *geoip2.Reader
}

func (l mmdbLookup) Country(ip net.IP) (string, error) {
	rec, err := l.reader.Country(ip)
	if err != nil {
		return "", err
	}
	name := rec.Country.Names["en"]
	if name == "" {
		name = rec.Country.IsoCode
	}
	return name, nil
}

// Stats counts enrichment activity for the run summary.
type Stats struct {
	Lookups    int `json:"lookups"` // database reads
	CacheHits  int `json:"cache_hits"`
	RedisHits  int `json:"redis_hits"`
	Unresolved int `json:"unresolved"`
}

// Enricher memoizes country lookups for the lifetime of one run. Cache
// entries are never evicted; the whole enricher is torn down with Close
// when the run completes.
type Enricher struct {
	lookup CountryLookup
	closer io.Closer
	cache  map[string]string
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	stats  Stats
	logger *zap.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithRedis layers a shared Redis cache under the in-memory map. Within a
// run the in-memory map still answers repeats; Redis only saves database
// reads across runs.
func WithRedis(client *redis.Client, keyPrefix string, ttl time.Duration) Option {
	return func(e *Enricher) {
		e.rdb = client
		e.prefix = keyPrefix
		e.ttl = ttl
	}
}

// New builds an enricher over the given lookup. A nil lookup yields the
// degraded enricher that answers "unknown" for every address.
func New(lookup CountryLookup, logger *zap.Logger, opts ...Option) *Enricher {
	e := &Enricher{
		lookup: lookup,
		cache:  make(map[string]string),
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open builds an enricher over the GeoLite2 database at path. A missing or
// unreadable database degrades to the no-op enricher instead of failing
// the run; the condition is logged once here.
func Open(path string, logger *zap.Logger, opts ...Option) *Enricher {
	if _, err := os.Stat(path); err != nil {
		logger.Warn("geoip database not found, country enrichment disabled",
			zap.String("path", path))
		return New(nil, logger, opts...)
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		logger.Warn("geoip database unreadable, country enrichment disabled",
			zap.String("path", path),
			zap.Error(err))
		return New(nil, logger, opts...)
	}
	e := New(mmdbLookup{reader}, logger, opts...)
	e.closer = reader
	return e
}

// Enabled reports whether a database backs this enricher.
func (e *Enricher) Enabled() bool {
	return e.lookup != nil
}

// Resolve maps an address to a country label. It never fails: parse
// errors, lookup misses, and an absent database all yield the "unknown"
// sentinel. Results are memoized, so resolving the same address twice
// costs one database read.
func (e *Enricher) Resolve(ctx context.Context, addr string) string {
	if addr == "" || addr == record.Unknown || addr == record.NA {
		return record.Unknown
	}
	if country, ok := e.cache[addr]; ok {
		e.stats.CacheHits++
		return country
	}
	country := e.resolve(ctx, addr)
	e.cache[addr] = country
	return country
}

func (e *Enricher) resolve(ctx context.Context, addr string) string {
	if e.rdb != nil {
		if v, err := e.rdb.Get(ctx, e.prefix+addr).Result(); err == nil && v != "" {
			e.stats.RedisHits++
			return v
		}
	}

	country := record.Unknown
	if e.lookup != nil {
		if ip := net.ParseIP(addr); ip != nil {
			e.stats.Lookups++
			if name, err := e.lookup.Country(ip); err == nil && name != "" {
				country = name
			}
		}
	}
	if country == record.Unknown {
		e.stats.Unresolved++
		return country
	}

	if e.rdb != nil {
		if err := e.rdb.Set(ctx, e.prefix+addr, country, e.ttl).Err(); err != nil {
			e.logger.Debug("geo cache write failed", zap.Error(err))
		}
	}
	return country
}

// Stats returns a snapshot of the enrichment counters.
func (e *Enricher) Stats() Stats {
	return e.stats
}

// Close releases the database reader and the cache client, if any.
func (e *Enricher) Close() error {
	var first error
	if e.closer != nil {
		first = e.closer.Close()
	}
	if e.rdb != nil {
		if err := e.rdb.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
