package worker

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is a unit of work the pool can execute.
type Job interface {
	ID() string
	Execute() error
}

// ErrQueueFull is returned by Submit when the job queue has no room. The
// caller decides what to do with the rejected job; the pool never blocks a
// submitter.
var ErrQueueFull = errors.New("worker: job queue is full")

// Worker pulls jobs from its own channel, re-registering with the dispatcher
// pool between jobs.
type Worker struct {
	id         int
	workerPool chan chan Job
	jobChannel chan Job
	quit       chan struct{}
	wg         *sync.WaitGroup
	log        *logrus.Logger
}

// NewWorker creates a worker bound to the given registration pool.
func NewWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup, log *logrus.Logger) Worker {
	return Worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan Job),
		quit:       make(chan struct{}),
		wg:         wg,
		log:        log,
	}
}

// Start runs the worker loop in its own goroutine.
func (w Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.log.WithFields(logrus.Fields{
					"worker": w.id,
					"job_id": job.ID(),
				}).Info("Worker picked up job")
				if err := job.Execute(); err != nil {
					w.log.WithFields(logrus.Fields{
						"worker": w.id,
						"job_id": job.ID(),
					}).WithError(err).Error("Job execution failed")
				} else {
					w.log.WithFields(logrus.Fields{
						"worker": w.id,
						"job_id": job.ID(),
					}).Info("Job execution finished")
				}
			case <-w.quit:
				return
			}
		}
	}()
}

// Stop signals the worker to exit after its current job.
func (w Worker) Stop() {
	close(w.quit)
}

// Dispatcher owns a bounded queue and a fixed set of workers. Jobs are
// handed to whichever worker registers first; no admission order is
// promised.
type Dispatcher struct {
	maxWorkers int
	workerPool chan chan Job
	jobQueue   chan Job
	workers    []Worker
	wg         sync.WaitGroup
	quit       chan struct{}
	log        *logrus.Logger
}

// NewDispatcher creates a dispatcher with maxWorkers workers and a job
// queue of the given size.
func NewDispatcher(maxWorkers, queueSize int, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		maxWorkers: maxWorkers,
		workerPool: make(chan chan Job, maxWorkers),
		jobQueue:   make(chan Job, queueSize),
		workers:    make([]Worker, 0, maxWorkers),
		quit:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the workers and the dispatch loop.
func (d *Dispatcher) Run() {
	d.log.WithField("workers", d.maxWorkers).Info("Starting worker pool")
	for i := 1; i <= d.maxWorkers; i++ {
		w := NewWorker(i, d.workerPool, &d.wg, d.log)
		d.workers = append(d.workers, w)
		w.Start()
	}
	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.jobQueue:
			go func(job Job) {
				jobChannel := <-d.workerPool
				jobChannel <- job
			}(job)
		case <-d.quit:
			return
		}
	}
}

// Submit enqueues a job without blocking. Returns ErrQueueFull when the
// queue has no capacity.
func (d *Dispatcher) Submit(job Job) error {
	select {
	case d.jobQueue <- job:
		d.log.WithField("job_id", job.ID()).Debug("Job queued")
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop shuts down the dispatch loop and waits for every worker to finish
// its in-flight job.
func (d *Dispatcher) Stop() {
	close(d.quit)
	for _, w := range d.workers {
		w.Stop()
	}
	d.wg.Wait()
	d.log.Info("Worker pool stopped")
}
