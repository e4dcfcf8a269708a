package models

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Params is a named parameter tuple. All strategy parameters are numeric.
type Params map[string]float64

// Float returns the value for name or def when absent.
func (p Params) Float(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Int returns the value for name rounded to the nearest integer.
func (p Params) Int(name string, def int) int {
	if v, ok := p[name]; ok {
		return int(math.Round(v))
	}
	return def
}

func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a copy of p with the values of over applied on top.
func (p Params) Merge(over Params) Params {
	out := p.Clone()
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Names returns the parameter names sorted.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String renders the tuple deterministically, e.g. "oversold=30 period=14".
func (p Params) String() string {
	var b strings.Builder
	for i, k := range p.Names() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%s", k, strconv.FormatFloat(p[k], 'f', -1, 64))
	}
	return b.String()
}

// Range is the ordered list of candidate values for one parameter.
type Range []float64

// Ranges maps parameter names to their candidate values.
type Ranges map[string]Range
