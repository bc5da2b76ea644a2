package timer

import "sync"

// queue runs functions one at a time, in issue order, on its own goroutine.
// issue never blocks.
type queue struct {
	wake     chan struct{}
	done     chan struct{}
	ran      *sync.Cond
	pending  []func()
	issued   uint64
	finished uint64
	mu       sync.Mutex
	closed   bool
}

func newQueue() *queue {
	q := &queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	q.ran = sync.NewCond(&q.mu)

	go q.run()

	return q
}

func (q *queue) issue(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.issued++
	q.pending = append(q.pending, fn)

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *queue) run() {
	defer close(q.done)

	for range q.wake {
		for {
			fn, ok := q.next()
			if !ok {
				break
			}

			fn()

			q.mu.Lock()
			q.finished++
			q.ran.Broadcast()
			q.mu.Unlock()
		}
	}
}

func (q *queue) next() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil, false
	}

	fn := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]

	return fn, true
}

// settle waits for everything issued before the call. Functions issued
// while it waits do not extend the wait.
func (q *queue) settle() {
	q.mu.Lock()
	defer q.mu.Unlock()

	target := q.issued
	for q.finished < target {
		q.ran.Wait()
	}
}

// close runs what is pending and stops the goroutine. Later issues are
// dropped. close is idempotent.
func (q *queue) close() {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()
		<-q.done

		return
	}

	q.closed = true
	close(q.wake)
	q.mu.Unlock()

	<-q.done
}
