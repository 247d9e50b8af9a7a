package journal

import (
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Submit after Stop.
var ErrPoolClosed = errors.New("worker pool closed")

// workerPool runs sync tasks on a fixed set of background goroutines so that
// UI-facing callers never block on a network round trip. Delivery is
// best-effort: tasks still queued when Stop is called are dropped.
type workerPool struct {
	tasks chan func()
	stop  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = 4
	}
	p := &workerPool{
		tasks: make(chan func(), 64),
		stop:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// Submit enqueues a task; it blocks only when the queue is full.
func (p *workerPool) Submit(task func()) error {
	select {
	case <-p.stop:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	case <-p.stop:
		return ErrPoolClosed
	}
}

// Stop signals workers to stop and waits for them. In-flight tasks finish;
// queued tasks are abandoned.
func (p *workerPool) Stop() {
	p.once.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()
}
