package match

import "sync"

// Notifier wakes every subscriber when the match changes. Signals carry no
// data and coalesce: a subscriber that has not drained its last wake-up
// gets a single one for several changes, so it must re-read the State.
type Notifier struct {
	mutex       sync.Mutex
	subscribers map[*Subscription]struct{}
}

type Subscription struct {
	notifier *Notifier
	ch       chan struct{}
	once     sync.Once
}

func NewNotifier() *Notifier {
	return &Notifier{
		subscribers: make(map[*Subscription]struct{}),
	}
}

// Subscribe - registers a receiver for every Signal issued from now on.
func (that *Notifier) Subscribe() *Subscription {
	sub := &Subscription{
		notifier: that,
		ch:       make(chan struct{}, 1),
	}

	that.mutex.Lock()
	that.subscribers[sub] = struct{}{}
	that.mutex.Unlock()

	return sub
}

// Signal - wakes all current subscribers without blocking.
func (that *Notifier) Signal() {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	for sub := range that.subscribers {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

func (that *Notifier) subscriberCount() int {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	return len(that.subscribers)
}

func (that *Subscription) C() <-chan struct{} {
	return that.ch
}

// Close - unsubscribes. Safe to call more than once.
func (that *Subscription) Close() {
	that.once.Do(func() {
		that.notifier.mutex.Lock()
		delete(that.notifier.subscribers, that)
		that.notifier.mutex.Unlock()
	})
}
