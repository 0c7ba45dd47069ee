// watchpoint.go - fixed-pool watchpoint engine
//
// Grounded on original_source/.../nemu/src/monitor/sdb/watchpoint.c: a
// static pool of NR_WP slots, ids equal to slot indices, a free list for
// allocation. check() re-evaluates every enabled watchpoint and stops at
// the first one whose value changed, returning immediately without
// checking the rest — confirmed deliberate by reading the C original.

package main

import "fmt"

const numWatchpoints = 32

// Watchpoint is one user-set expression tracked across steps.
type Watchpoint struct {
	ID      int
	Expr    string
	Last    uint32
	Enabled bool
}

// WatchpointPool is the fixed free-list pool described in §4.3: capacity
// 32, stable ids equal to slot indices.
type WatchpointPool struct {
	slots [numWatchpoints]Watchpoint
	free  []int
}

func NewWatchpointPool() *WatchpointPool {
	p := &WatchpointPool{}
	for i := numWatchpoints - 1; i >= 0; i-- {
		p.free = append(p.free, i)
	}
	return p
}

// Set parses exprText now (it must succeed), snapshots its current value,
// and allocates a slot from the free list.
func (p *WatchpointPool) Set(exprText string, reg *RegisterFile, bus *SystemBus) (int, error) {
	val, err := Eval(exprText, reg, bus)
	if err != nil {
		return 0, fmt.Errorf("watchpoint: %w", err)
	}
	if len(p.free) == 0 {
		return 0, fmt.Errorf("watchpoint: pool exhausted")
	}
	id := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.slots[id] = Watchpoint{ID: id, Expr: exprText, Last: val, Enabled: true}
	return id, nil
}

// Delete frees a watchpoint by id, returning it to the free list.
func (p *WatchpointPool) Delete(id int) error {
	if id < 0 || id >= numWatchpoints || !p.slots[id].Enabled {
		return fmt.Errorf("watchpoint: no such watchpoint %d", id)
	}
	p.slots[id] = Watchpoint{}
	p.free = append(p.free, id)
	return nil
}

// List returns every currently-enabled watchpoint, in slot order (the
// order new_wp's push-front-of-head list would have produced is not
// guest-observable here — list order is purely a monitor display detail).
func (p *WatchpointPool) List() []Watchpoint {
	var out []Watchpoint
	for _, w := range p.slots {
		if w.Enabled {
			out = append(out, w)
		}
	}
	return out
}

// Check re-evaluates every enabled watchpoint's expression. On the first
// one whose value changed, it updates the stored value, reports the
// change, and returns immediately — later watchpoints are not checked
// this cycle. Returns (id, oldVal, newVal, true) on a hit.
func (p *WatchpointPool) Check(reg *RegisterFile, bus *SystemBus) (int, uint32, uint32, bool) {
	for i := range p.slots {
		w := &p.slots[i]
		if !w.Enabled {
			continue
		}
		v, err := Eval(w.Expr, reg, bus)
		if err != nil {
			continue
		}
		if v != w.Last {
			old := w.Last
			w.Last = v
			return w.ID, old, v, true
		}
	}
	return 0, 0, 0, false
}
