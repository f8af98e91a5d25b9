// Package shortstore implements an in-memory URL shortener store: it maps
// long URLs to aliases under a single configured domain and resolves them
// back while counting hits. Expected failures come back as errx coded
// errors; Result renders outcomes in the store's envelope form.
package shortstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/sundayezeilo/shortstore/aliasgen"
	"github.com/sundayezeilo/shortstore/errx"
	"github.com/sundayezeilo/shortstore/internal/idgen"
)

const (
	DefaultAliasLength     = 7
	MinAliasLength         = 3
	MaxAliasLength         = 64
	DefaultAliasMaxRetries = 3
)

// Store maps long URLs to aliases under one configured domain. It is a
// plain in-memory structure: no I/O, no blocking calls, and no internal
// locking. Callers that share a Store across goroutines must serialize
// access themselves.
type Store struct {
	domain          string
	records         map[string]*Record // keyed by alias
	aliases         aliasgen.Generator
	ids             idgen.Generator
	aliasLength     int
	aliasMaxRetries int
}

// Config holds configuration for a Store. Domain is required; every other
// field has a default.
type Config struct {
	Domain          string // authority short URLs are issued under, e.g. "short.ly"
	Aliases         aliasgen.Generator
	IDs             idgen.Generator
	AliasLength     int
	AliasMaxRetries int // attempts when drawing an unused alias (default: 3)
}

// New creates a Store serving the configured domain. The domain is
// case-folded and must be a plain authority that the store's own URL rules
// would accept.
func New(config Config) (*Store, error) {
	domain := strings.ToLower(config.Domain)
	if err := checkDomain(domain); err != nil {
		return nil, fmt.Errorf("domain %q: %w", config.Domain, err)
	}

	aliases := config.Aliases
	if aliases == nil {
		aliases = aliasgen.NewRandom()
	}

	ids := config.IDs
	if ids == nil {
		ids = idgen.NewV7(idgen.WithRetries(1))
	}

	aliasLength := config.AliasLength
	if aliasLength < MinAliasLength || aliasLength > MaxAliasLength {
		aliasLength = DefaultAliasLength
	}

	retries := config.AliasMaxRetries
	if retries <= 0 {
		retries = DefaultAliasMaxRetries
	}

	return &Store{
		domain:          domain,
		records:         make(map[string]*Record),
		aliases:         aliases,
		ids:             ids,
		aliasLength:     aliasLength,
		aliasMaxRetries: retries,
	}, nil
}

// Domain returns the configured domain, case-folded.
func (s *Store) Domain() string { return s.domain }

// Len reports how many records the store holds, active or not.
func (s *Store) Len() int { return len(s.records) }

// Add registers a long URL and returns its short URL. The long URL is
// stored case-folded in full. Re-adding a known URL reactivates its record
// and returns the same alias, composed with the scheme of the new
// submission.
func (s *Store) Add(longURL string) (string, error) {
	const op = "shortstore.Add"

	if err := checkSyntax(longURL); err != nil {
		return "", errx.E(op, errx.URLSyntax, err)
	}
	if authorityOf(longURL) == s.domain {
		return "", errx.E(op, errx.Domain, fmt.Errorf("url is already on %s", s.domain))
	}

	scheme := schemeOf(longURL)
	folded := strings.ToLower(longURL)

	if rec := s.findByLongURL(folded); rec != nil {
		if !rec.Active {
			rec.Active = true
			rec.DeactivatedAt = nil
		}
		return composeShortURL(scheme, s.domain, rec.Alias), nil
	}

	alias, err := s.unusedAlias()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.ids.Generate()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.records[alias] = &Record{
		ID:        id,
		LongURL:   folded,
		Alias:     alias,
		Active:    true,
		CreatedAt: time.Now(),
	}
	return composeShortURL(scheme, s.domain, alias), nil
}

// Query resolves a short URL back to its long URL and counts the hit.
// Only URLs on the store's domain can be queried.
func (s *Store) Query(shortURL string) (string, error) {
	const op = "shortstore.Query"

	if err := checkSyntax(shortURL); err != nil {
		return "", errx.E(op, errx.URLSyntax, err)
	}
	if authorityOf(shortURL) != s.domain {
		return "", errx.E(op, errx.Domain, fmt.Errorf("url is not on %s", s.domain))
	}

	alias := aliasOf(shortURL)
	rec, ok := s.records[alias]
	if !ok || !rec.Active {
		return "", errx.E(op, errx.NotFound, fmt.Errorf("no active link for alias %q", alias))
	}

	rec.HitCount++
	now := time.Now()
	rec.LastHitAt = &now
	return rec.LongURL, nil
}

// Count reports how many times a link has been successfully queried. It
// accepts either form of the link and also answers for deactivated
// records.
func (s *Store) Count(url string) (int64, error) {
	const op = "shortstore.Count"

	if err := checkSyntax(url); err != nil {
		return 0, errx.E(op, errx.URLSyntax, err)
	}

	rec := s.find(url)
	if rec == nil {
		return 0, errx.E(op, errx.NotFound, fmt.Errorf("no link for %q", url))
	}
	return rec.HitCount, nil
}

// Remove deactivates a link. It accepts either form of the link and is
// idempotent: removing an already inactive link succeeds without effect.
// The record and its hit count stay behind for reactivation.
func (s *Store) Remove(url string) error {
	const op = "shortstore.Remove"

	if err := checkSyntax(url); err != nil {
		return errx.E(op, errx.URLSyntax, err)
	}

	rec := s.find(url)
	if rec == nil {
		return errx.E(op, errx.NotFound, fmt.Errorf("no link for %q", url))
	}

	if rec.Active {
		rec.Active = false
		now := time.Now()
		rec.DeactivatedAt = &now
	}
	return nil
}

// Stat returns a copy of the record behind a link, active or not. It never
// mutates the record.
func (s *Store) Stat(url string) (Record, error) {
	const op = "shortstore.Stat"

	if err := checkSyntax(url); err != nil {
		return Record{}, errx.E(op, errx.URLSyntax, err)
	}

	rec := s.find(url)
	if rec == nil {
		return Record{}, errx.E(op, errx.NotFound, fmt.Errorf("no link for %q", url))
	}
	return rec.clone(), nil
}

// find is the single lookup behind count, remove and stat: URLs on the
// store's domain resolve by alias, anything else scans for the case-folded
// long URL.
func (s *Store) find(url string) *Record {
	if authorityOf(url) == s.domain {
		return s.records[aliasOf(url)]
	}
	return s.findByLongURL(strings.ToLower(url))
}

// findByLongURL scans all records for a stored long URL. The map stays
// keyed by alias alone; long-URL lookups tolerate the linear scan.
func (s *Store) findByLongURL(folded string) *Record {
	for _, rec := range s.records {
		if rec.LongURL == folded {
			return rec
		}
	}
	return nil
}

// unusedAlias draws fresh aliases until one does not collide with an
// existing record. Exhausting the attempts is exceptional and reported as
// a plain error, outside the coded contract.
func (s *Store) unusedAlias() (string, error) {
	for attempt := 0; attempt < s.aliasMaxRetries; attempt++ {
		alias, err := s.aliases.Generate(s.aliasLength)
		if err != nil {
			return "", fmt.Errorf("generate alias: %w", err)
		}
		if _, taken := s.records[alias]; !taken {
			return alias, nil
		}
	}
	return "", fmt.Errorf("no unused alias after %d attempts", s.aliasMaxRetries)
}
