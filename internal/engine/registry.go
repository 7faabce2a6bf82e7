package engine

import (
	"fmt"
	"slices"
	"sync"
)

// OracleName is the registry name of the reference algorithm.
const OracleName = "naive"

// CalculatorFactory resolves algorithm names to shared Calculator instances.
type CalculatorFactory interface {
	// Get returns the Calculator registered as name. Instances are built on
	// first use and shared afterwards.
	Get(name string) (Calculator, error)
	// List returns the registered names, sorted.
	List() []string
	// Register adds or replaces an algorithm.
	Register(name string, creator func() coreCalculator) error
	// GetAll returns every registered calculator keyed by name.
	GetAll() map[string]Calculator
}

// registration builds its Calculator at most once. Replacing a name installs
// a new registration, so a previously built instance is never returned again.
type registration struct {
	build func() coreCalculator
	once  sync.Once
	calc  Calculator
}

func (r *registration) calculator() Calculator {
	r.once.Do(func() { r.calc = NewCalculator(r.build()) })
	return r.calc
}

// DefaultFactory is the concurrency-safe CalculatorFactory.
type DefaultFactory struct {
	mu      sync.RWMutex
	entries map[string]*registration
}

// NewDefaultFactory returns a factory holding the built-in algorithms:
// naive (the oracle), strassen, strassen-par and gonum.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{entries: make(map[string]*registration)}
	for name, build := range map[string]func() coreCalculator{
		OracleName:     func() coreCalculator { return NaiveMultiplier{} },
		"strassen":     func() coreCalculator { return StrassenMultiplier{} },
		"strassen-par": func() coreCalculator { return ParallelStrassenMultiplier{} },
		"gonum":        func() coreCalculator { return GonumMultiplier{} },
	} {
		_ = f.Register(name, build)
	}
	return f
}

// Register adds or replaces the calculator built by creator under name.
// The creator runs once, on first lookup.
func (f *DefaultFactory) Register(name string, creator func() coreCalculator) error {
	switch {
	case name == "":
		return fmt.Errorf("engine: empty calculator name")
	case creator == nil:
		return fmt.Errorf("engine: nil creator for calculator %q", name)
	}
	f.mu.Lock()
	f.entries[name] = &registration{build: creator}
	f.mu.Unlock()
	return nil
}

func (f *DefaultFactory) lookup(name string) (*registration, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	r, ok := f.entries[name]
	return r, ok
}

// Get returns the calculator registered under name.
func (f *DefaultFactory) Get(name string) (Calculator, error) {
	r, ok := f.lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown calculator: %s", name)
	}
	return r.calculator(), nil
}

// MustGet is Get for names known to be registered.
func (f *DefaultFactory) MustGet(name string) Calculator {
	calc, err := f.Get(name)
	if err != nil {
		panic("engine: " + err.Error())
	}
	return calc
}

// List returns the registered names in sorted order.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	names := make([]string, 0, len(f.entries))
	for name := range f.entries {
		names = append(names, name)
	}
	f.mu.RUnlock()
	slices.Sort(names)
	return names
}

// GetAll returns every registered calculator keyed by name.
func (f *DefaultFactory) GetAll() map[string]Calculator {
	f.mu.RLock()
	regs := make(map[string]*registration, len(f.entries))
	for name, r := range f.entries {
		regs[name] = r
	}
	f.mu.RUnlock()

	all := make(map[string]Calculator, len(regs))
	for name, r := range regs {
		all[name] = r.calculator()
	}
	return all
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory used by the command.
func GlobalFactory() *DefaultFactory { return globalFactory }
