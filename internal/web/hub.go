package web

import (
	"context"
	"errors"
	"time"

	"flowgrid/internal/sims/flow"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrHubStopped is returned when a request reaches a hub that is no longer running.
var ErrHubStopped = errors.New("web: hub stopped")

type click struct {
	client uuid.UUID
	index  int
}

// Hub owns the simulation. Clicks, ticks and queries are serialised through
// its Run loop; nothing else touches the simulation.
type Hub struct {
	sim      *flow.Simulation
	log      logrus.FieldLogger
	step     time.Duration
	interval time.Duration

	clicks  chan click
	join    chan *client
	leave   chan *client
	queries chan func(*flow.Simulation)
	done    chan struct{}

	clients map[*client]struct{}
	sent    uint64
}

// DefaultInterval is used when NewHub gets neither a step nor an interval.
const DefaultInterval = 50 * time.Millisecond

// NewHub prepares a hub that advances sim by step every interval of wall time.
// A non-positive interval falls back to step and a non-positive step to the
// interval; when both are non-positive DefaultInterval is used for each.
func NewHub(sim *flow.Simulation, step, interval time.Duration, log logrus.FieldLogger) *Hub {
	if interval <= 0 {
		interval = step
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if step <= 0 {
		step = interval
	}
	return &Hub{
		sim:      sim,
		log:      log,
		step:     step,
		interval: interval,
		clicks:   make(chan click, 64),
		join:     make(chan *client),
		leave:    make(chan *client),
		queries:  make(chan func(*flow.Simulation)),
		done:     make(chan struct{}),
		clients:  make(map[*client]struct{}),
		sent:     sim.Version(),
	}
}

// Run drives the simulation until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	defer close(h.done)

	h.log.WithField("step", h.step).Info("hub loop starting")
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			h.log.Info("hub loop stopped")
			return
		case <-ticker.C:
			h.sim.Advance(h.step)
			h.publish()
		case c := <-h.join:
			h.clients[c] = struct{}{}
			h.log.WithField("client", c.id).Info("client joined")
			c.send <- stateOf(h.sim)
		case c := <-h.leave:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.log.WithField("client", c.id).Info("client left")
			}
		case cl := <-h.clicks:
			if err := h.sim.Click(cl.index); err != nil {
				h.log.WithError(err).WithFields(logrus.Fields{"client": cl.client, "cell": cl.index}).Warn("click rejected")
				continue
			}
			h.publish()
		case fn := <-h.queries:
			fn(h.sim)
		}
	}
}

// Do runs fn on the hub goroutine and waits for it to finish.
func (h *Hub) Do(ctx context.Context, fn func(*flow.Simulation)) error {
	finished := make(chan struct{})
	wrapped := func(sim *flow.Simulation) {
		defer close(finished)
		fn(sim)
	}
	select {
	case h.queries <- wrapped:
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// State returns the current snapshot.
func (h *Hub) State(ctx context.Context) (StateMessage, error) {
	var msg StateMessage
	err := h.Do(ctx, func(sim *flow.Simulation) { msg = stateOf(sim) })
	return msg, err
}

func (h *Hub) submit(cl click) {
	select {
	case h.clicks <- cl:
	default:
		h.log.WithField("client", cl.client).Warn("dropping click, hub queue full")
	}
}

func (h *Hub) register(ctx context.Context, c *client) error {
	select {
	case h.join <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) unregister(c *client) {
	select {
	case h.leave <- c:
	case <-h.done:
	}
}

func (h *Hub) publish() {
	v := h.sim.Version()
	if v == h.sent {
		return
	}
	h.sent = v
	msg := stateOf(h.sim)
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.WithField("client", c.id).Warn("client too slow, disconnecting")
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
}
