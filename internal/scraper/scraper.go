package scraper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"k8s.io/klog"

	"github.com/cleared-dev/cgdscraper/internal/config"
	"github.com/cleared-dev/cgdscraper/internal/model"
)

// ErrMissingArgs is returned when a scraper is built without all of its
// required arguments.
var ErrMissingArgs = errors.New("missing scraper arguments")

// Scraper fetches the raw text of a statement and parses it.
type Scraper interface {
	Name() string
	Fetch(ctx context.Context) ([]string, error)
	Parse(lines []string) (*model.Statement, error)
}

// Options are the settings shared by every scraper.
type Options struct {
	Charset    string
	Portal     config.PortalConfig
	SaveRawDir string
	Now        func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Factory builds a scraper from its arguments.
type Factory func(args Args, opts Options) (Scraper, error)

// Args are the positional scraper arguments, given on the command line as
// one space-separated string.
type Args []string

// ParseArgs splits a space-separated argument string.
func ParseArgs(s string) Args {
	return Args(strings.Fields(s))
}

// At returns argument i, or "" when there are fewer arguments.
func (a Args) At(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	return a[i]
}

// Registry holds named scraper factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty scraper registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Panics on duplicate name.
func (r *Registry) Register(name string, f Factory) {
	key := strings.ToLower(name)
	if _, ok := r.factories[key]; ok {
		panic("duplicate scraper: " + key)
	}
	r.factories[key] = f
}

// Get returns the factory for name, or nil.
func (r *Registry) Get(name string) Factory {
	return r.factories[strings.ToLower(name)]
}

// Names returns the registered scraper names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named scraper.
func (r *Registry) New(name string, args Args, opts Options) (Scraper, error) {
	f := r.Get(name)
	if f == nil {
		return nil, fmt.Errorf("unknown scraper %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return f(args, opts)
}

// DefaultRegistry returns a registry with all built-in scrapers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(FileScraperName, NewFileScraper)
	r.Register(PortalScraperName, NewPortalScraper)
	return r
}

// Run fetches and parses a statement and finishes it. CGD lists the most
// recent movement first.
func Run(ctx context.Context, s Scraper) (*model.Statement, error) {
	lines, err := s.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: fetching statement: %w", s.Name(), err)
	}
	klog.V(2).Infof("%s: fetched %d lines", s.Name(), len(lines))

	stmt, err := s.Parse(lines)
	if err != nil {
		return nil, fmt.Errorf("%s: parsing statement: %w", s.Name(), err)
	}
	stmt.Finish(true)

	debits := 0
	for _, tx := range stmt.Transactions {
		if tx.IsDebit() {
			debits++
		}
	}
	klog.Infof("%s: parsed %d transactions (%d debits) for account %s", s.Name(), stmt.Len(), debits, stmt.AccountNumber)
	return stmt, nil
}
