package tournamentdomain

import (
	"fmt"
	"slices"
	"sync"
)

// Controller owns every tournament of one guild, in creation order, and tracks
// which one is selected. It never does I/O while holding its lock.
type Controller struct {
	mu          sync.Mutex
	tournaments []*Tournament
	selected    *Tournament
}

// NewController returns a controller holding the given tournaments.
func NewController(tournaments ...*Tournament) *Controller {
	return &Controller{tournaments: slices.Clone(tournaments)}
}

// AddTournament appends t. Any remote linkage must already have happened.
func (c *Controller) AddTournament(t *Tournament) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.tournaments, t) {
		return
	}
	c.tournaments = append(c.tournaments, t)
}

// RemoveTournament removes t by identity, clearing the selection if it pointed at t.
func (c *Controller) RemoveTournament(t *Tournament) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.Index(c.tournaments, t)
	if idx < 0 {
		return false
	}
	c.tournaments = slices.Delete(c.tournaments, idx, idx+1)
	if c.selected == t {
		c.selected = nil
	}
	return true
}

// StartTournament moves a pending tournament to active.
func (c *Controller) StartTournament(t *Tournament) error {
	if !c.Contains(t) {
		return ErrUnknownTournament
	}
	return t.Start()
}

// Contains reports whether t is managed by this controller.
func (c *Controller) Contains(t *Tournament) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.tournaments, t)
}

// Tournaments returns the tournaments in creation order.
func (c *Controller) Tournaments() []*Tournament {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tournaments)
}

// Len returns the number of tournaments.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tournaments)
}

// Get returns the tournament at a 1-based index.
func (c *Controller) Get(index int) (*Tournament, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at(index)
}

func (c *Controller) at(index int) (*Tournament, error) {
	if index < 1 || index > len(c.tournaments) {
		return nil, fmt.Errorf("%w: %d is not between 1 and %d", ErrIndexOutOfRange, index, len(c.tournaments))
	}
	return c.tournaments[index-1], nil
}

// Selected returns the selected tournament, or nil.
func (c *Controller) Selected() *Tournament {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Select makes t the selected tournament. t must be managed by the controller.
func (c *Controller) Select(t *Tournament) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t == nil || !slices.Contains(c.tournaments, t) {
		return ErrUnknownTournament
	}
	c.selected = t
	return nil
}

// SelectIndex selects the tournament at a 1-based index.
func (c *Controller) SelectIndex(index int) (*Tournament, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.at(index)
	if err != nil {
		return nil, err
	}
	c.selected = t
	return t, nil
}

// ClearSelection drops the selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

// IsTourneyActive reports whether a tournament is selected and active.
func (c *Controller) IsTourneyActive() bool {
	selected := c.Selected()
	return selected != nil && selected.State() == StateActive
}
