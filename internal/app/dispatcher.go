package app

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"
)

// Dispatcher exécute les tâches de synchronisation en arrière-plan.
// Une clé est toujours servie par le même worker: les tâches d'une même clé
// s'exécutent dans l'ordre de soumission, jamais en parallèle.
//
// Dispatch ne bloque jamais: chaque worker a une file non bornée.
type Dispatcher struct {
	parent context.Context
	logger zerolog.Logger

	mu      sync.Mutex
	workers []*dispatchWorker
	closed  bool
	wg      sync.WaitGroup
}

type dispatchWorker struct {
	mu       sync.Mutex
	tasks    []func(ctx context.Context)
	stopping bool
	wake     chan struct{}
}

func NewDispatcher(parent context.Context, logger zerolog.Logger, n int) *Dispatcher {
	if parent == nil {
		parent = context.Background()
	}
	if n <= 0 {
		n = 1
	}
	d := &Dispatcher{parent: parent, logger: logger}
	for i := 0; i < n; i++ {
		w := &dispatchWorker{wake: make(chan struct{}, 1)}
		d.workers = append(d.workers, w)
		idx := i
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.run(d.logger.With().Int("worker", idx+1).Logger(), w)
		}()
	}
	return d
}

func (d *Dispatcher) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.workers)
}

func (d *Dispatcher) Dispatch(key string, task func(ctx context.Context)) {
	if task == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn().Str("key", key).Msg("dispatcher closed, task dropped")
		return
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	w := d.workers[int(h.Sum32()%uint32(len(d.workers)))]
	// La file est remplie sous d.mu: Close ne peut pas marquer le worker
	// stopping entre le test de closed et l'ajout.
	w.mu.Lock()
	w.tasks = append(w.tasks, task)
	w.mu.Unlock()
	d.mu.Unlock()
	w.signal()
}

func (w *dispatchWorker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) run(logger zerolog.Logger, w *dispatchWorker) {
	for {
		w.mu.Lock()
		if len(w.tasks) == 0 {
			stopping := w.stopping
			w.mu.Unlock()
			if stopping {
				return
			}
			<-w.wake
			continue
		}
		task := w.tasks[0]
		w.tasks[0] = nil
		w.tasks = w.tasks[1:]
		w.mu.Unlock()

		d.exec(logger, task)
	}
}

func (d *Dispatcher) exec(logger zerolog.Logger, task func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("sync task panicked")
		}
	}()
	task(d.parent)
}

// Close refuse les nouvelles tâches, laisse les files se vider puis attend
// la fin des workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	workers := append([]*dispatchWorker(nil), d.workers...)
	d.mu.Unlock()

	for _, w := range workers {
		w.mu.Lock()
		w.stopping = true
		w.mu.Unlock()
		w.signal()
	}
	d.wg.Wait()
}
