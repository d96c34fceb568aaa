package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/platotv/plato/core/events"
	corelogger "github.com/platotv/plato/core/logger"
	"github.com/platotv/plato/internal/eventbus"
)

// Publisher is the broker surface the notifier needs.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Notifier forwards engine events from the bus to MQTT topics under the
// configured prefix. Topics are per plan:
//
//	<prefix>/plans/<id>/generation
//	<prefix>/plans/<id>/eta
type Notifier struct {
	pub    Publisher
	bus    eventbus.EventBus
	prefix string
	log    corelogger.Logger
}

// NewNotifier creates a notifier bound to the bus.
func NewNotifier(pub Publisher, bus eventbus.EventBus, prefix string, log corelogger.Logger) *Notifier {
	if prefix == "" {
		prefix = "plato"
	}
	return &Notifier{pub: pub, bus: bus, prefix: prefix, log: log}
}

type generationMessage struct {
	Phase    string    `json:"phase"`
	PlanID   string    `json:"planId"`
	Mode     string    `json:"mode"`
	Outcome  string    `json:"outcome,omitempty"`
	Placed   int       `json:"placed,omitempty"`
	Warnings int       `json:"warnings,omitempty"`
	Reasons  int       `json:"reasons,omitempty"`
	Time     time.Time `json:"time"`
}

type etaMessage struct {
	PlanID      string    `json:"planId"`
	AdjustedEnd time.Time `json:"adjustedEnd"`
	Time        time.Time `json:"time"`
}

// Run consumes bus events until the context is cancelled or the bus closes.
func (n *Notifier) Run(ctx context.Context) {
	sub := n.bus.Subscribe()
	defer n.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			n.handle(ev)
		}
	}
}

func (n *Notifier) handle(ev eventbus.Event) {
	switch e := ev.(type) {
	case events.GenerationStarted:
		n.send(n.prefix+"/plans/"+e.PlanID+"/generation", generationMessage{
			Phase:  "started",
			PlanID: e.PlanID,
			Mode:   string(e.Mode),
			Time:   e.Time,
		})
	case events.GenerationFinished:
		n.send(n.prefix+"/plans/"+e.PlanID+"/generation", generationMessage{
			Phase:    "finished",
			PlanID:   e.PlanID,
			Mode:     string(e.Mode),
			Outcome:  e.Outcome,
			Placed:   e.Placed,
			Warnings: e.Warnings,
			Reasons:  e.Reasons,
			Time:     e.Time,
		})
	case events.EstimateServed:
		n.send(n.prefix+"/plans/"+e.PlanID+"/eta", etaMessage{
			PlanID:      e.PlanID,
			AdjustedEnd: e.AdjustedEnd,
			Time:        e.Time,
		})
	}
}

func (n *Notifier) send(topic string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		n.log.Errorf("marshal mqtt payload: %v", err)
		return
	}
	if err := n.pub.Publish(topic, payload); err != nil {
		n.log.Warnf("publish %s: %v", topic, err)
	}
}
