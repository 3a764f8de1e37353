package notify

import (
	"context"
	"log"
	"time"
)

// Dispatcher decouples notification delivery from the request path through
// a buffered queue worked by a single goroutine.
type Dispatcher struct {
	sender Sender
	queue  chan Event
}

func NewDispatcher(sender Sender) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		queue:  make(chan Event, 100),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := d.sender.Send(ctx, ev); err != nil {
			log.Println("notify error:", err)
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		// queue full: notifications are droppable, the booking is not
		log.Println("notify queue full, dropping event")
	}
}
