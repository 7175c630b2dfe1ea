// Package memsys wires the hunk, zone and cache into one memory system.
//
// Open maps the arena from the operating system and builds the tiers in
// dependency order: the hunk over the whole arena, the zone as the hunk's
// first low allocation, and the cache over the remaining gap. The cache is
// registered as the hunk's evictor, and the zone and cache as its checkers.
package memsys

import (
	"github.com/pkg/errors"

	"github.com/joshuapare/hunkkit/console"
	"github.com/joshuapare/hunkkit/hunk"
	"github.com/joshuapare/hunkkit/hunk/cache"
	"github.com/joshuapare/hunkkit/hunk/verify"
	"github.com/joshuapare/hunkkit/hunk/zone"
	"github.com/joshuapare/hunkkit/internal/mmfile"
)

// System is a running memory manager.
type System struct {
	Hunk  *hunk.Hunk
	Zone  *zone.Zone
	Cache *cache.Cache

	con     *console.Console
	release func() error
}

// Open maps an arena of opts.Megs MiB and starts the memory system on it.
func Open(opts Options, con *console.Console) (*System, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	var (
		data    []byte
		release func() error
		err     error
	)
	if opts.ArenaFile != "" {
		data, release, err = mmfile.Map(opts.ArenaFile, opts.ArenaSize())
	} else {
		data, release, err = mmfile.Anonymous(opts.ArenaSize())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to map %d MiB arena", opts.Megs)
	}
	sys := New(data, opts, con)
	sys.release = release
	return sys, nil
}

// New starts the memory system on a caller-provided arena.
func New(data []byte, opts Options, con *console.Console) *System {
	if con == nil {
		con = console.Default()
	}
	h := hunk.New(data, con, hunk.Options{Paranoid: opts.Paranoid})
	z := zone.New(h, zone.Options{
		OverrideMegs: opts.ZoneMegs,
		Size:         opts.ZoneSize,
		Fraction:     opts.ZoneFraction,
		MinFragment:  opts.MinFragment,
		Paranoid:     opts.Paranoid,
	})
	c := cache.New(h)
	h.SetEvictor(c)
	h.AddChecker(z, c)

	con.Info("hunk and subsystems initialized",
		"arena", h.Size(), "zone", z.Size(), "low", h.LowMark())
	return &System{Hunk: h, Zone: z, Cache: c, con: con}
}

// Console returns the diagnostics sink shared by the tiers.
func (s *System) Console() *console.Console { return s.con }

// Close releases the arena mapping. The tiers must not be used afterwards.
func (s *System) Close() error {
	if s.release == nil {
		return nil
	}
	err := s.release()
	s.release = nil
	return err
}

// Check validates every tier; corruption is fatal.
func (s *System) Check() {
	s.Hunk.Check()
}

// Tiers lists the tiers for non-fatal validation.
func (s *System) Tiers() []verify.Tier {
	return []verify.Tier{
		{Name: "hunk", Validator: s.Hunk},
		{Name: "zone", Validator: s.Zone},
		{Name: "cache", Validator: s.Cache},
	}
}

// Validate runs every tier's validation and aggregates the failures.
func (s *System) Validate() error {
	return verify.All(s.Tiers()...)
}

// Print writes the hunk, zone and cache inventories.
func (s *System) Print(everyAlloc bool) {
	s.con.Printf("== hunk ==")
	s.Hunk.Print(everyAlloc)
	s.con.Printf("== zone ==")
	s.Zone.Print()
	s.con.Printf("== cache ==")
	s.Cache.Print()
}
