// Package controller keeps a local view of the items collection in step with
// the server. Every mutation is followed by a full reload; the list is never
// patched locally.
package controller

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/items/internal/logging"
	"github.com/idilsaglam/items/internal/model"
)

// LoadFailedMessage is the only error text the view ever shows.
const LoadFailedMessage = "Failed to load items"

// API is the remote collection the controller mirrors.
type API interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, in model.NewItem) error
	Delete(ctx context.Context, id model.ID) error
}

// State is everything the view renders from.
type State struct {
	Items            []model.Item
	NameInput        string
	DescriptionInput string
	ErrorMessage     string
}

// Controller owns State. It is not safe for concurrent use: all calls are
// expected from the Bubble Tea update loop, with network work done inside the
// returned commands.
type Controller struct {
	ctx    context.Context
	api    API
	logger *log.Logger
	state  State

	loadSeq    uint64 // last load issued
	appliedSeq uint64 // last load whose result was applied
	inFlight   int
}

// Messages produced by the commands below and consumed by Update.
type (
	itemsLoadedMsg struct {
		seq   uint64
		items []model.Item
		err   error
	}
	createdMsg struct{ err error }
	deletedMsg struct {
		id  model.ID
		err error
	}
)

// New returns a controller with empty state. ctx bounds every request; cancel
// it on teardown so late responses go nowhere.
func New(ctx context.Context, api API, logger *log.Logger) *Controller {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		ctx:    ctx,
		api:    api,
		logger: logger,
		state:  State{Items: []model.Item{}},
	}
}

// State returns a copy of the current view state.
func (c *Controller) State() State {
	s := c.state
	s.Items = make([]model.Item, len(c.state.Items))
	copy(s.Items, c.state.Items)
	return s
}

// Loading reports whether at least one list fetch is in flight.
func (c *Controller) Loading() bool { return c.inFlight > 0 }

// SetInputs records what the user has typed so far.
func (c *Controller) SetInputs(name, description string) {
	c.state.NameInput = name
	c.state.DescriptionInput = description
}

// LoadItems fetches the whole collection.
func (c *Controller) LoadItems() tea.Cmd {
	c.loadSeq++
	c.inFlight++
	seq := c.loadSeq
	ctx, api := c.ctx, c.api
	return func() tea.Msg {
		items, err := api.List(ctx)
		return itemsLoadedMsg{seq: seq, items: items, err: err}
	}
}

// SubmitNew creates an item and reloads once the create settles, whatever its
// outcome. A blank name does nothing.
func (c *Controller) SubmitNew(name, description string) tea.Cmd {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	ctx, api := c.ctx, c.api
	in := model.NewItem{Name: name, Description: description}
	return func() tea.Msg {
		return createdMsg{err: api.Create(ctx, in)}
	}
}

// Submit is SubmitNew over the current inputs.
func (c *Controller) Submit() tea.Cmd {
	return c.SubmitNew(c.state.NameInput, c.state.DescriptionInput)
}

// DeleteItem removes id and reloads once the delete settles.
func (c *Controller) DeleteItem(id model.ID) tea.Cmd {
	ctx, api := c.ctx, c.api
	return func() tea.Msg {
		return deletedMsg{id: id, err: api.Delete(ctx, id)}
	}
}

// Update applies a settled request to State. handled is false for messages the
// controller does not own. The returned command is the follow-up reload, if any.
func (c *Controller) Update(msg tea.Msg) (handled bool, cmd tea.Cmd) {
	switch msg := msg.(type) {
	case itemsLoadedMsg:
		c.applyLoad(msg)
		return true, nil

	case createdMsg:
		if msg.err != nil {
			c.logger.Error("create item failed", "err", msg.err)
		} else {
			c.logger.Debug("item created")
		}
		c.state.NameInput = ""
		c.state.DescriptionInput = ""
		return true, c.LoadItems()

	case deletedMsg:
		if msg.err != nil {
			c.logger.Error("delete item failed", "id", msg.id, "err", msg.err)
		} else {
			c.logger.Debug("item deleted", "id", msg.id)
		}
		return true, c.LoadItems()
	}
	return false, nil
}

func (c *Controller) applyLoad(msg itemsLoadedMsg) {
	if c.inFlight > 0 {
		c.inFlight--
	}
	if msg.seq < c.appliedSeq {
		c.logger.Debug("dropping stale load", "seq", msg.seq, "applied", c.appliedSeq)
		return
	}
	c.appliedSeq = msg.seq
	if msg.err != nil {
		c.logger.Warn("load items failed", "err", msg.err)
		c.state.ErrorMessage = LoadFailedMessage
		return
	}
	items := msg.items
	if items == nil {
		items = []model.Item{}
	}
	c.state.Items = items
	c.state.ErrorMessage = ""
}

// Settle runs cmd and every follow-up it produces on the calling goroutine,
// applying each result. It is the non-interactive stand-in for the Bubble Tea
// loop, used by one-shot commands.
func (c *Controller) Settle(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			if _, follow := c.Update(msg); follow != nil {
				queue = append(queue, follow)
			}
		}
	}
}
