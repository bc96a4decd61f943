// Package registry maps human readable names to preconfigured filters.
package registry

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"imagefilter/filter"
)

var (
	// ErrUnknownFilter is returned for names that are neither registered nor parsable.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrNoEffects is returned when resolving an empty list of effect names.
	ErrNoEffects = errors.New("no effects given")
)

// Registry is a name -> filter table. It is built once by the caller and then
// only read, so it may be shared between goroutines after construction.
type Registry struct {
	filters map[string]filter.Filter
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{filters: make(map[string]filter.Filter)}
}

// Register stores 'f' under 'name', replacing any previous entry.
func (r *Registry) Register(name string, f filter.Filter) {
	r.filters[name] = f
}

// Get returns the filter registered as 'name'. Unregistered names are parsed
// as parametric filter names (see Parse).
func (r *Registry) Get(name string) (filter.Filter, error) {
	if f, ok := r.filters[name]; ok {
		return f, nil
	}
	return Parse(name)
}

// Names returns every registered name in ascending order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the filter for a list of effect names: the filter itself for
// a single name, a chain of them otherwise. An empty list is an error: an empty
// chain would blank the image.
func (r *Registry) Resolve(names []string) (filter.Filter, error) {
	switch len(names) {
	case 0:
		return nil, ErrNoEffects
	case 1:
		return r.Get(names[0])
	}
	chain := filter.NewChain()
	for _, name := range names {
		f, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		chain.Add(f)
	}
	return chain, nil
}

// Default returns the preset filters. Color replacements without an explicit
// replacement draw it from 'rng' (nil uses the package level source).
func Default(rng *rand.Rand) *Registry {
	r := New()

	// pixel filters
	r.Register("monochrome", filter.NewMonochrome())
	r.Register("colorband_red", filter.NewColorBand(filter.Red))
	r.Register("colorband_green", filter.NewColorBand(filter.Green))
	r.Register("colorband_blue", filter.NewColorBand(filter.Blue))
	r.Register("threshold_128", filter.NewThreshold(128))
	r.Register("threshold_192", filter.NewThreshold(192))
	r.Register("multithreshold", filter.NewMultiThreshold(64, 128, 192))
	r.Register("colorreplacement_96", filter.NewRandomColorReplacement(filter.Grey(96), rng))
	r.Register("colorreplacement_160", filter.NewRandomColorReplacement(filter.Grey(160), rng))
	r.Register("colorreplacement_255", filter.NewRandomColorReplacement(filter.Grey(255), rng))

	// area filters
	r.Register("blur_3", filter.NewBlur(3))
	r.Register("blur_5", filter.NewBlur(5))
	r.Register("pixel_20", filter.NewPixelate(20))
	r.Register("pixel_40", filter.NewPixelate(40))
	r.Register("pixel_60", filter.NewPixelate(60))

	// chains
	warhol := filter.NewChain(r.filters["multithreshold"])
	warhol.Add(filter.NewRandomColorReplacement(filter.Grey(0), rng))
	warhol.Add(r.filters["colorreplacement_96"])
	warhol.Add(r.filters["colorreplacement_160"])
	warhol.Add(r.filters["colorreplacement_255"])
	r.Register("warhol", warhol)

	return r
}

//=============================================================================
// Parametric names
//=============================================================================

// Parse builds a filter from a parametric name:
//
//	monochrome
//	colorband_<red|green|blue>
//	threshold_<t>
//	multithreshold_<t0>_<t1>_...
//	colorreplacement_<grey>      (random replacement)
//	blur_<size>
//	pixel_<size>
func Parse(name string) (filter.Filter, error) {
	kind, rest, _ := strings.Cut(name, "_")
	args := strings.Split(rest, "_")
	if rest == "" {
		args = nil
	}

	switch kind {
	case "monochrome":
		if len(args) == 0 {
			return filter.NewMonochrome(), nil
		}
	case "colorband":
		if len(args) == 1 {
			band, err := filter.ParseBand(args[0])
			if err != nil {
				return nil, fmt.Errorf("error in filter name [%v]: %w", name, errors.Join(ErrUnknownFilter, err))
			}
			return filter.NewColorBand(band), nil
		}
	case "threshold", "colorreplacement", "blur", "pixel", "multithreshold":
		ints, err := atois(args)
		if err != nil {
			return nil, fmt.Errorf("error in filter name [%v]: %w", name, errors.Join(ErrUnknownFilter, err))
		}
		if f := parseNumeric(kind, ints); f != nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("error in filter name [%v]: %w", name, ErrUnknownFilter)
}

func parseNumeric(kind string, args []int) filter.Filter {
	if kind == "multithreshold" {
		if len(args) == 0 || !sort.IntsAreSorted(args) {
			return nil
		}
		return filter.NewMultiThreshold(args...)
	}
	if len(args) != 1 {
		return nil
	}
	v := args[0]
	switch kind {
	case "threshold":
		return filter.NewThreshold(v)
	case "colorreplacement":
		return filter.NewRandomColorReplacement(filter.Grey(v), nil)
	case "blur":
		if v > 0 {
			return filter.NewBlur(v)
		}
	case "pixel":
		if v > 0 {
			return filter.NewPixelate(v)
		}
	}
	return nil
}

func atois(args []string) ([]int, error) {
	ints := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, err
		}
		ints[i] = v
	}
	return ints, nil
}
