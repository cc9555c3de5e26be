// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"fmt"
	"sync"
)

// Counter tracks a count.
type Counter interface {
	Inc()
	Add(delta int64)
	Read() int64
}

type counter struct {
	mu    sync.RWMutex
	value int64
}

// NewCounter returns a new Counter.
func NewCounter() Counter {
	return &counter{}
}

func (c *counter) Inc() { c.Add(1) }

func (c *counter) Add(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
}

func (c *counter) Read() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Gauge tracks a value that can go up or down. The pipeline uses one
// gauge per stage to record its wall-clock duration in milliseconds.
type Gauge interface {
	Set(value float64)
	Add(delta float64)
	Read() float64
}

type gauge struct {
	mu    sync.RWMutex
	value float64
}

// NewGauge returns a new Gauge.
func NewGauge() Gauge {
	return &gauge{}
}

func (g *gauge) Set(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = value
}

func (g *gauge) Add(delta float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value += delta
}

func (g *gauge) Read() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.value
}

// Registry is a named collection of counters and gauges. The pipeline
// keeps one Registry per run for stage timing; it is never scraped or
// exported, only read back at RunRecord construction.
type Registry interface {
	NewCounter(name string) Counter
	NewGauge(name string) Gauge
	GetCounter(name string) (Counter, error)
	GetGauge(name string) (Gauge, error)
	// GaugeSnapshot returns every registered gauge's current value,
	// keyed by name.
	GaugeSnapshot() map[string]float64
}

type registry struct {
	mu       sync.RWMutex
	counters map[string]Counter
	gauges   map[string]Gauge
	// order preserves registration order so GaugeSnapshot callers that
	// care about stage sequence (none currently do; RunRecord's map is
	// unordered JSON) still could without a second index.
	order []string
}

// NewRegistry returns a new Registry.
func NewRegistry() Registry {
	return &registry{
		counters: make(map[string]Counter),
		gauges:   make(map[string]Gauge),
	}
}

func (r *registry) NewCounter(name string) Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := NewCounter()
	r.counters[name] = c
	return c
}

func (r *registry) NewGauge(name string) Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := NewGauge()
	r.gauges[name] = g
	r.order = append(r.order, name)
	return g
}

func (r *registry) GetCounter(name string) (Counter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.counters[name]
	if !ok {
		return nil, fmt.Errorf("counter %q not found", name)
	}
	return c, nil
}

func (r *registry) GetGauge(name string) (Gauge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gauges[name]
	if !ok {
		return nil, fmt.Errorf("gauge %q not found", name)
	}
	return g, nil
}

func (r *registry) GaugeSnapshot() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]float64, len(r.gauges))
	for _, name := range r.order {
		out[name] = r.gauges[name].Read()
	}
	return out
}
