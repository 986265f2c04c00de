// backend-go/internal/selection/model.go
package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/optiqo/lenshop/backend-go/internal/grid"
)

var (
	// ErrPromptPending is returned for grid events while a prompt is open.
	ErrPromptPending = errors.New("a prompt is pending")
	// ErrInvalidValue is returned when a prompt is resolved with something
	// other than a non-negative integer. The prompt stays open.
	ErrInvalidValue = errors.New("value must be a non-negative integer")
	// ErrNoPrompt is returned when resolving or cancelling without an open prompt.
	ErrNoPrompt = errors.New("no prompt is pending")
)

// PromptKind distinguishes the batch prompt emitted after an add-drag from
// the single-cell prompt opened by a right click.
type PromptKind string

const (
	PromptBatch PromptKind = "batch"
	PromptCell  PromptKind = "cell"
)

// Prompt is a pending modal input. Keys holds the cells the resolved value
// applies to. Initial is the pre-fill (nil renders blank).
type Prompt struct {
	Kind    PromptKind `json:"kind"`
	Keys    []string   `json:"keys"`
	Initial *int       `json:"initial,omitempty"`
	fresh   bool       // cell prompt opened on an unselected cell
}

// Model is the drag/toggle/right-click machine shared by power-range
// editing, lens alert-threshold editing and purchase-quantity selection.
//
// The three consumers differ in two ways: the allowed cell set (the whole
// grid for power-range editing, the product's existing range otherwise)
// and whether cells carry values. Membership-only models never open
// prompts; valued models do.
type Model struct {
	allowed  grid.RangeSet // nil means the entire grid
	sel      grid.RangeSet
	values   map[string]int
	valued   bool
	cellFill *int // right-click pre-fill for cells without a value

	dragging           bool
	toggleMode         bool
	anchorS, anchorC   int
	currentS, currentC int
	baseline           grid.RangeSet
	newlyAdded         []string
	lastSpan           string

	prompt *Prompt
}

// Option configures a Model.
type Option func(*Model)

// WithAllowed restricts interaction to the given cell set. Without it the
// whole grid is interactive.
func WithAllowed(allowed grid.RangeSet) Option {
	return func(m *Model) { m.allowed = allowed }
}

// WithValues makes the model track a per-cell value (quantity or
// threshold), seeded from existing. Enables prompts.
func WithValues(existing map[string]int) Option {
	return func(m *Model) {
		m.valued = true
		m.values = make(map[string]int, len(existing))
		for k, v := range existing {
			m.values[k] = v
		}
	}
}

// WithCellDefault pre-fills the right-click prompt for cells that have no
// value yet. Purchase selection uses 1; thresholds leave it blank.
func WithCellDefault(v int) Option {
	return func(m *Model) { m.cellFill = &v }
}

// New builds a model over an initial selection. The selection is copied;
// callers read the result back with Selection and Values.
func New(initial grid.RangeSet, opts ...Option) *Model {
	m := &Model{sel: initial.Clone()}
	for _, opt := range opts {
		opt(m)
	}
	if m.values == nil {
		m.values = map[string]int{}
	}
	return m
}

// Selection returns the current cell set. The caller must not mutate it
// while a gesture is in progress.
func (m *Model) Selection() grid.RangeSet { return m.sel }

// Values returns the per-cell values for currently selected cells. Stale
// values for unselected cells are dormant and not reported.
func (m *Model) Values() map[string]int {
	out := make(map[string]int, len(m.sel))
	for k := range m.sel {
		if v, ok := m.values[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Dragging reports whether a drag gesture is in progress.
func (m *Model) Dragging() bool { return m.dragging }

// PendingPrompt returns the open prompt, or nil.
func (m *Model) PendingPrompt() *Prompt { return m.prompt }

func (m *Model) cellAllowed(key string) bool {
	if m.allowed == nil {
		return grid.ValidKey(key)
	}
	return m.allowed.Contains(key)
}

// PointerDown starts a drag at the given cell. The anchor's membership is
// flipped immediately; toggle mode is captured from its state before the
// flip. Pointer-downs outside the allowed set are ignored.
func (m *Model) PointerDown(key string) error {
	if m.prompt != nil {
		return ErrPromptPending
	}
	if m.dragging || !m.cellAllowed(key) {
		return nil
	}
	si, ci, ok := grid.Coords(key)
	if !ok {
		return nil
	}
	m.dragging = true
	m.toggleMode = m.sel.Contains(key)
	m.anchorS, m.anchorC = si, ci
	m.baseline = m.sel.Clone()
	m.lastSpan = ""
	m.applySpan(si, ci)
	return nil
}

// PointerMove extends the drag to the given cell. The affected span is the
// rectangle between the anchor and the current cell by axis indexes; cells
// that fall out of the span as it shrinks revert to their pre-gesture
// state. Moves that do not change the span are skipped.
func (m *Model) PointerMove(key string) error {
	if m.prompt != nil {
		return ErrPromptPending
	}
	if !m.dragging {
		return nil
	}
	si, ci, ok := grid.Coords(key)
	if !ok {
		return nil
	}
	m.applySpan(si, ci)
	return nil
}

func (m *Model) applySpan(si, ci int) {
	span := fmt.Sprintf("%d_%d|%d_%d|%t", m.anchorS, m.anchorC, si, ci, m.toggleMode)
	if span == m.lastSpan {
		return
	}
	m.lastSpan = span
	m.currentS, m.currentC = si, ci

	// Rebuild from the pre-gesture baseline so one continuous drag never
	// toggles a cell more than once, no matter how the pointer wanders.
	m.sel = m.baseline.Clone()
	m.newlyAdded = m.newlyAdded[:0]

	sLo, sHi := ordered(m.anchorS, si)
	cLo, cHi := ordered(m.anchorC, ci)
	for s := sLo; s <= sHi; s++ {
		for c := cLo; c <= cHi; c++ {
			key := grid.Key(s, c)
			if !m.cellAllowed(key) {
				continue
			}
			if m.toggleMode {
				m.sel.Remove(key)
				continue
			}
			if !m.baseline.Contains(key) {
				m.newlyAdded = append(m.newlyAdded, key)
			}
			m.sel.Add(key)
		}
	}
}

// PointerUp ends the drag. For an add-gesture with newly selected cells it
// returns those cells and, on valued models, opens the batch quantity
// prompt. Membership-only callers just receive the keys.
func (m *Model) PointerUp() (added []string, prompt *Prompt, err error) {
	if m.prompt != nil {
		return nil, nil, ErrPromptPending
	}
	if !m.dragging {
		return nil, nil, nil
	}
	m.dragging = false
	m.baseline = nil
	m.lastSpan = ""
	if m.toggleMode || len(m.newlyAdded) == 0 {
		m.newlyAdded = nil
		return nil, nil, nil
	}
	added = append([]string(nil), m.newlyAdded...)
	m.newlyAdded = nil
	if m.valued {
		m.prompt = &Prompt{Kind: PromptBatch, Keys: added}
		prompt = m.prompt
	}
	return added, prompt, nil
}

// RightClick opens the single-cell edit prompt. Cells outside the allowed
// set, and membership-only models, ignore it. For a cell that already
// carries a value the prompt pre-fills that value; otherwise it pre-fills
// the configured default.
func (m *Model) RightClick(key string) (*Prompt, error) {
	if m.prompt != nil {
		return nil, ErrPromptPending
	}
	if !m.valued || !m.cellAllowed(key) {
		return nil, nil
	}
	p := &Prompt{Kind: PromptCell, Keys: []string{key}, fresh: !m.sel.Contains(key)}
	if v, ok := m.values[key]; ok && !p.fresh {
		initial := v
		p.Initial = &initial
	} else if m.cellFill != nil {
		initial := *m.cellFill
		p.Initial = &initial
	}
	m.prompt = p
	return p, nil
}

// Resolve confirms the pending prompt with raw user input. Input that is
// not a non-negative integer returns ErrInvalidValue and leaves the prompt
// open. A confirmed cell prompt on an unselected cell also selects it.
func (m *Model) Resolve(raw string) error {
	if m.prompt == nil {
		return ErrNoPrompt
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return ErrInvalidValue
	}
	for _, key := range m.prompt.Keys {
		m.values[key] = v
		m.sel.Add(key)
	}
	m.prompt = nil
	return nil
}

// Cancel dismisses the pending prompt without mutating anything: a fresh
// cell stays unselected, an existing value stays as it was.
func (m *Model) Cancel() error {
	if m.prompt == nil {
		return ErrNoPrompt
	}
	m.prompt = nil
	return nil
}

func ordered(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
