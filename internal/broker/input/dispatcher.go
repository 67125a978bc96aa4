package input

import "sync"

// UIDispatcher schedules work onto the UI-owning execution context.
// Clipboard mutation is not thread-safe with respect to reads from
// arbitrary goroutines on the platform, so writes must be funneled
// through one serialized context.
type UIDispatcher interface {
	// Post schedules fn for execution. It returns false when the
	// dispatcher is stopped or saturated; it never blocks the caller.
	Post(fn func()) bool
}

const dispatcherQueueSize = 16

// SerialDispatcher runs posted functions one at a time on a dedicated
// goroutine. It is the production UIDispatcher.
type SerialDispatcher struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewSerialDispatcher creates a running dispatcher.
func NewSerialDispatcher() *SerialDispatcher {
	d := &SerialDispatcher{
		tasks: make(chan func(), dispatcherQueueSize),
		done:  make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *SerialDispatcher) loop() {
	for {
		select {
		case fn := <-d.tasks:
			fn()
		case <-d.done:
			return
		}
	}
}

// Post implements UIDispatcher.
func (d *SerialDispatcher) Post(fn func()) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.tasks <- fn:
		return true
	default:
		return false
	}
}

// Stop shuts the dispatcher down. Queued work is discarded.
func (d *SerialDispatcher) Stop() {
	d.once.Do(func() { close(d.done) })
}
