package gateway

import (
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// WorkerFunc processes one task. A non-nil return is logged and the worker
// re-spawns as usual; it does not stop the pool.
type WorkerFunc func(t *tomb.Tomb, task any) error

// WorkerPool keeps a fixed number of goroutines draining a shared task
// channel, supervised by a tomb.Tomb so the whole pool shuts down cleanly
// when the parent context dies.
type WorkerPool struct {
	n     int
	tasks chan any
	log   zerolog.Logger
}

// NewWorkerPool constructs a pool of size workers with an internally
// buffered task queue.
func NewWorkerPool(size int, log zerolog.Logger) *WorkerPool {
	return &WorkerPool{n: size, tasks: make(chan any, taskChanSize), log: log}
}

// AddTask enqueues a task for the next free worker.
func (p *WorkerPool) AddTask(task any) { p.tasks <- task }

// Setup spawns n workers under t, each re-spawning itself after completing
// a task so the pool stays at full strength until t starts dying.
func (p *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunc) {
	p.log.Info().Int("workers", p.n).Msg("starting worker pool")
	for i := 0; i < p.n; i++ {
		t.Go(func() error { return p.run(t, work) })
	}
}

func (p *WorkerPool) run(t *tomb.Tomb, work WorkerFunc) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := work(t, task); err != nil {
				p.log.Error().Err(err).Msg("worker task failed")
			}
			t.Go(func() error { return p.run(t, work) })
			return nil
		}
	}
}
