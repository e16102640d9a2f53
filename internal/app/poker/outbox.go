package poker

import "sync"

// Outbox is the unbounded ordered queue of outbound frames for one
// connection. Broadcast producers push into it without ever blocking on a
// slow consumer; a pump goroutine hands frames to the connection's write
// loop in push order via Deliveries.
//
// Close drops any undelivered backlog and closes the Deliveries channel.
// Push after Close reports false instead of panicking, so a broadcast
// racing a disconnect degrades to a logged skip.
type Outbox struct {
	in   chan []byte
	out  chan []byte
	done chan struct{}

	closeOnce sync.Once
}

func NewOutbox() *Outbox {
	o := &Outbox{
		in:   make(chan []byte),
		out:  make(chan []byte),
		done: make(chan struct{}),
	}
	go o.pump()
	return o
}

// pump shuttles frames from in to out through a slice backlog. The select
// keeps the intake receptive even while a delivery is pending, which is
// what makes Push non-blocking regardless of consumer speed.
func (o *Outbox) pump() {
	defer close(o.out)

	var backlog [][]byte
	for {
		var out chan []byte
		var next []byte
		if len(backlog) > 0 {
			out = o.out
			next = backlog[0]
		}

		select {
		case frame := <-o.in:
			backlog = append(backlog, frame)
		case out <- next:
			backlog = backlog[1:]
		case <-o.done:
			return
		}
	}
}

// Push enqueues a frame for delivery, reporting false if the outbox is
// already closed. It never blocks on the consumer.
func (o *Outbox) Push(frame []byte) bool {
	select {
	case o.in <- frame:
		return true
	case <-o.done:
		return false
	}
}

// Deliveries is the ordered stream of queued frames. It is closed once the
// outbox is closed.
func (o *Outbox) Deliveries() <-chan []byte {
	return o.out
}

// Close retires the outbox. Safe to call more than once.
func (o *Outbox) Close() {
	o.closeOnce.Do(func() { close(o.done) })
}
