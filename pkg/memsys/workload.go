package memsys

import (
	"os"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/joshuapare/hunkkit/hunk/cache"
	"github.com/joshuapare/hunkkit/hunk/zone"
)

// Workload operations.
const (
	OpZoneAlloc     = "zone-alloc"
	OpZoneFree      = "zone-free"
	OpCacheAlloc    = "cache-alloc"
	OpCacheFree     = "cache-free"
	OpCacheFlush    = "cache-flush"
	OpLowAlloc      = "low-alloc"
	OpHighAlloc     = "high-alloc"
	OpLowPop        = "low-pop"
	OpHighPop       = "high-pop"
	OpLowMark       = "low-mark"
	OpHighMark      = "high-mark"
	OpLowPopToMark  = "low-pop-to-mark"
	OpHighPopToMark = "high-pop-to-mark"
	OpCheck         = "check"
)

var (
	// ErrUnknownOp indicates a step with an unrecognised op.
	ErrUnknownOp = errors.New("unknown op")
	// ErrUnknownName indicates a step naming an object or mark never created.
	ErrUnknownName = errors.New("unknown name")
	// ErrDuplicateName indicates a step reusing the name of a live object.
	ErrDuplicateName = errors.New("name already in use")
	// ErrBadStep indicates a step with missing or invalid fields.
	ErrBadStep = errors.New("bad step")
)

// Step is one workload operation.
type Step struct {
	Op   string `json:"op"`
	Name string `json:"name,omitempty"`
	Size int    `json:"size,omitempty"`
	Mark string `json:"mark,omitempty"`
}

// Workload is a scripted sequence of allocator operations.
type Workload struct {
	Steps []Step `json:"steps"`
}

// ParseWorkload decodes a YAML workload.
func ParseWorkload(data []byte) (*Workload, error) {
	var w Workload
	if err := yaml.UnmarshalStrict(data, &w); err != nil {
		return nil, errors.Wrap(err, "failed to parse workload")
	}
	return &w, nil
}

// LoadWorkload reads a YAML workload from path.
func LoadWorkload(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read workload %s", path)
	}
	w, err := ParseWorkload(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return w, nil
}

// Report summarises a workload run.
type Report struct {
	Steps int `json:"steps"`
	// ZoneFailures counts zone allocations that found no free block.
	ZoneFailures int `json:"zoneFailures"`
	// CacheMisses counts cache frees of entries already evicted.
	CacheMisses int `json:"cacheMisses"`
}

// Runner executes workloads against a System, keeping named zone blocks,
// cache entries and marks alive across runs.
type Runner struct {
	sys   *System
	zone  map[string]zone.Ref
	cache map[string]*cache.ID
	marks map[string]int
}

// NewRunner returns a Runner bound to sys.
func NewRunner(sys *System) *Runner {
	return &Runner{
		sys:   sys,
		zone:  make(map[string]zone.Ref),
		cache: make(map[string]*cache.ID),
		marks: make(map[string]int),
	}
}

// CacheID returns the identity slot of a named cache entry.
func (r *Runner) CacheID(name string) (cache.ID, bool) {
	id, ok := r.cache[name]
	if !ok {
		return cache.ID{}, false
	}
	return *id, true
}

// ZoneRef returns the reference of a named zone block.
func (r *Runner) ZoneRef(name string) (zone.Ref, bool) {
	ref, ok := r.zone[name]
	return ref, ok
}

// Run executes w step by step and stops at the first script error.
// Allocator misuse and corruption still go through the fatal path.
func (r *Runner) Run(w *Workload) (Report, error) {
	var rep Report
	for i, st := range w.Steps {
		if err := r.step(st, &rep); err != nil {
			return rep, errors.Wrapf(err, "step %d (%s)", i+1, st.Op)
		}
		rep.Steps++
	}
	return rep, nil
}

func (r *Runner) step(st Step, rep *Report) error {
	sys := r.sys
	switch st.Op {
	case OpZoneAlloc:
		if err := needNameSize(st); err != nil {
			return err
		}
		if _, ok := r.zone[st.Name]; ok {
			return errors.Wrap(ErrDuplicateName, st.Name)
		}
		ref, _ := sys.Zone.Alloc(st.Size)
		if ref == 0 {
			rep.ZoneFailures++
			sys.con.Debug("zone allocation failed", "name", st.Name, "size", st.Size)
			return nil
		}
		r.zone[st.Name] = ref

	case OpZoneFree:
		ref, ok := r.zone[st.Name]
		if !ok {
			return errors.Wrap(ErrUnknownName, st.Name)
		}
		sys.Zone.Free(ref)
		delete(r.zone, st.Name)

	case OpCacheAlloc:
		if err := needNameSize(st); err != nil {
			return err
		}
		id, ok := r.cache[st.Name]
		if !ok {
			id = new(cache.ID)
			r.cache[st.Name] = id
		}
		if _, live := sys.Cache.Data(*id); live {
			return errors.Wrap(ErrDuplicateName, st.Name)
		}
		sys.Cache.Alloc(id, st.Size, st.Name)

	case OpCacheFree:
		id, ok := r.cache[st.Name]
		if !ok {
			return errors.Wrap(ErrUnknownName, st.Name)
		}
		if id.IsZero() {
			rep.CacheMisses++
		} else {
			sys.Cache.Free(id)
		}
		delete(r.cache, st.Name)

	case OpCacheFlush:
		sys.Cache.Flush()

	case OpLowAlloc, OpHighAlloc:
		if err := needNameSize(st); err != nil {
			return err
		}
		if st.Op == OpLowAlloc {
			sys.Hunk.LowAlloc(st.Size, st.Name)
		} else {
			sys.Hunk.HighAlloc(st.Size, st.Name)
		}

	case OpLowPop:
		sys.Hunk.LowPop()
	case OpHighPop:
		sys.Hunk.HighPop()

	case OpLowMark, OpHighMark:
		if st.Mark == "" {
			return errors.Wrap(ErrBadStep, "mark is required")
		}
		if st.Op == OpLowMark {
			r.marks[st.Mark] = sys.Hunk.LowMark()
		} else {
			r.marks[st.Mark] = sys.Hunk.HighMark()
		}

	case OpLowPopToMark, OpHighPopToMark:
		m, ok := r.marks[st.Mark]
		if !ok {
			return errors.Wrap(ErrUnknownName, "mark "+st.Mark)
		}
		if st.Op == OpLowPopToMark {
			sys.Hunk.LowPopToMark(m)
		} else {
			sys.Hunk.HighPopToMark(m)
		}

	case OpCheck:
		sys.Check()

	default:
		return errors.Wrap(ErrUnknownOp, st.Op)
	}
	return nil
}

func needNameSize(st Step) error {
	if st.Name == "" {
		return errors.Wrap(ErrBadStep, "name is required")
	}
	if st.Size <= 0 {
		return errors.Wrapf(ErrBadStep, "size must be positive, got %d", st.Size)
	}
	return nil
}
