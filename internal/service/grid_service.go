// backend-go/internal/service/grid_service.go
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/grid"
	"github.com/optiqo/lenshop/backend-go/internal/selection"
	"github.com/rs/xid"
)

// GridPurpose selects which flavor of selection session to run. All three
// share the same state machine; they differ in the allowed cell set and
// whether cells carry a value.
type GridPurpose string

const (
	// PurposePowerRange edits a lens product's manufacturable range over
	// the whole grid. Membership only.
	PurposePowerRange GridPurpose = "power_range"
	// PurposeThresholds edits per-degree alert thresholds, restricted to
	// the product's existing range.
	PurposeThresholds GridPurpose = "thresholds"
	// PurposePurchase selects per-degree purchase quantities, restricted
	// to the product's existing range.
	PurposePurchase GridPurpose = "purchase"
)

// GridEvent is one pointer or prompt interaction.
type GridEvent struct {
	Type  string `json:"type"` // pointer_down | pointer_move | pointer_up | right_click | resolve | cancel
	Cell  string `json:"cell,omitempty"`
	Value string `json:"value,omitempty"` // raw prompt input for resolve
}

// GridState is the session snapshot returned after every event.
type GridState struct {
	SessionID string            `json:"session_id"`
	Purpose   GridPurpose       `json:"purpose"`
	ProductID int64             `json:"product_id"`
	Selection []string          `json:"selection"`
	Values    map[string]int    `json:"values,omitempty"`
	Dragging  bool              `json:"dragging"`
	Prompt    *selection.Prompt `json:"prompt,omitempty"`
}

// CommitResult reports what a committed session produced.
type CommitResult struct {
	PowerRange []string              `json:"power_range,omitempty"`
	Outcome    *WriteOutcome         `json:"outcome,omitempty"`
	Order      *domain.PurchaseOrder `json:"order,omitempty"`
}

type gridSession struct {
	id        string
	purpose   GridPurpose
	productID int64
	prefix    string
	mu        sync.Mutex
	model     *selection.Model
}

// GridService owns the in-memory selection sessions. A session has a
// single writer (the pointer-driving client); the store lock only guards
// the session map.
type GridService struct {
	products  *ProductService
	alerts    *AlertService
	purchases *PurchaseService

	mu       sync.Mutex
	sessions map[string]*gridSession
}

func NewGridService(products *ProductService, alerts *AlertService, purchases *PurchaseService) *GridService {
	return &GridService{
		products:  products,
		alerts:    alerts,
		purchases: purchases,
		sessions:  make(map[string]*gridSession),
	}
}

// Start opens a session for the given product and purpose. The order
// prefix only matters for purchase sessions and defaults to CG.
func (s *GridService) Start(ctx context.Context, purpose GridPurpose, productID int64, prefix string) (*GridState, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = domain.OrderPrefixNormal
	}

	var model *selection.Model
	switch purpose {
	case PurposePowerRange:
		model = selection.New(grid.NewRangeSet(p.PowerRange...))
	case PurposeThresholds:
		cfg, err := s.alerts.GetConfig(ctx, productID)
		if err != nil {
			return nil, err
		}
		var thresholds map[string]int
		initial := grid.NewRangeSet()
		if cfg != nil && cfg.Kind == domain.AlertLens {
			thresholds = cfg.Thresholds
			for cellKey := range cfg.Thresholds {
				initial.Add(cellKey)
			}
		}
		model = selection.New(initial,
			selection.WithAllowed(grid.NewRangeSet(p.PowerRange...)),
			selection.WithValues(thresholds),
		)
	case PurposePurchase:
		model = selection.New(grid.NewRangeSet(),
			selection.WithAllowed(grid.NewRangeSet(p.PowerRange...)),
			selection.WithValues(nil),
			selection.WithCellDefault(1),
		)
	default:
		return nil, fmt.Errorf("unknown grid purpose %q", purpose)
	}

	sess := &gridSession{
		id:        xid.New().String(),
		purpose:   purpose,
		productID: productID,
		prefix:    prefix,
		model:     model,
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess.state(), nil
}

// Get returns the current session state.
func (s *GridService) Get(sessionID string) (*GridState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state(), nil
}

// Apply feeds one event into the session's state machine.
func (s *GridService) Apply(sessionID string, event GridEvent) (*GridState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	m := sess.model
	switch event.Type {
	case "pointer_down":
		err = m.PointerDown(event.Cell)
	case "pointer_move":
		err = m.PointerMove(event.Cell)
	case "pointer_up":
		_, _, err = m.PointerUp()
	case "right_click":
		_, err = m.RightClick(event.Cell)
	case "resolve":
		err = m.Resolve(event.Value)
	case "cancel":
		err = m.Cancel()
	default:
		err = fmt.Errorf("unknown grid event type %q", event.Type)
	}
	if err != nil {
		return nil, err
	}
	return sess.state(), nil
}

// Commit closes the session and applies its result: a power-range save, a
// lens threshold save, or a purchase-order creation depending on purpose.
// Committing with a pending prompt is rejected.
func (s *GridService) Commit(ctx context.Context, sessionID string) (*CommitResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.model.PendingPrompt() != nil {
		return nil, selection.ErrPromptPending
	}

	var result *CommitResult
	switch sess.purpose {
	case PurposePowerRange:
		keys := sess.model.Selection().FlatOrder()
		outcome, err := s.products.SavePowerRange(ctx, sess.productID, keys)
		if err != nil {
			return nil, err
		}
		result = &CommitResult{PowerRange: keys, Outcome: &outcome}
	case PurposeThresholds:
		err := s.alerts.SaveConfig(ctx, &domain.AlertConfig{
			ProductID:  sess.productID,
			Kind:       domain.AlertLens,
			Thresholds: sess.model.Values(),
		})
		if err != nil {
			return nil, err
		}
		result = &CommitResult{}
	case PurposePurchase:
		order, err := s.purchases.CreateLensOrder(ctx, sess.productID, sess.prefix, sess.model.Values())
		if err != nil {
			return nil, err
		}
		result = &CommitResult{Order: order}
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return result, nil
}

// Discard drops a session without applying anything.
func (s *GridService) Discard(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *GridService) session(id string) (*gridSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

func (sess *gridSession) state() *GridState {
	return &GridState{
		SessionID: sess.id,
		Purpose:   sess.purpose,
		ProductID: sess.productID,
		Selection: sess.model.Selection().FlatOrder(),
		Values:    sess.model.Values(),
		Dragging:  sess.model.Dragging(),
		Prompt:    sess.model.PendingPrompt(),
	}
}
