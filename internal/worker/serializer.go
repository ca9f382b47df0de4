package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

var ErrStopped = errors.New("serializer stopped")

type job struct {
	ctx  context.Context
	name string
	run  func(ctx context.Context)
	done chan struct{}
}

// Serializer runs every repository call on one goroutine, in arrival order,
// so a read-modify-write cycle never interleaves with another one.
type Serializer struct {
	repo   repo.TaskRepository
	logger *zap.Logger
	jobs   chan job
	wg     sync.WaitGroup
	stop   chan struct{}
	exited chan struct{}

	mu      sync.RWMutex
	stopped bool
}

var _ repo.TaskRepository = (*Serializer)(nil)

func NewSerializer(r repo.TaskRepository, logger *zap.Logger, queueSize int) *Serializer {
	if queueSize < 0 {
		queueSize = 0
	}
	return &Serializer{
		repo:   r,
		logger: logger,
		jobs:   make(chan job, queueSize),
		stop:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

func (s *Serializer) Start(ctx context.Context) {
	s.logger.Info("Starting task writer", zap.Int("queue", cap(s.jobs)))

	s.wg.Add(1)
	go s.worker(ctx)
}

// Stop waits for the job in flight; queued jobs that were not picked up
// finish with ErrStopped.
func (s *Serializer) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.logger.Info("Stopping task writer...")
	close(s.stop)
	s.wg.Wait()
	s.logger.Info("Task writer stopped")
}

func (s *Serializer) worker(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.exited)

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case j := <-s.jobs:
			s.process(j)
		}
	}
}

func (s *Serializer) process(j job) {
	defer close(j.done)

	if err := j.ctx.Err(); err != nil {
		s.logger.Debug("skipping cancelled call", zap.String("op", j.name), zap.Error(err))
		return
	}
	j.run(j.ctx)
}

// submit queues fn and waits for it. It returns ErrStopped when the worker is
// gone and the context error when the caller gave up first.
func (s *Serializer) submit(ctx context.Context, name string, fn func(ctx context.Context)) error {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		return ErrStopped
	}

	ran := false
	j := job{
		ctx:  ctx,
		name: name,
		run: func(ctx context.Context) {
			ran = true
			fn(ctx)
		},
		done: make(chan struct{}),
	}

	select {
	case s.jobs <- j:
	case <-s.exited:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-j.done:
		if !ran {
			return ctx.Err()
		}
		return nil
	case <-s.exited:
		// the job may have finished right before the worker returned
		select {
		case <-j.done:
			if ran {
				return nil
			}
		default:
		}
		return ErrStopped
	case <-ctx.Done():
		// a queued job is skipped by process once it sees the cancelled context
		select {
		case <-j.done:
			if ran {
				return nil
			}
		default:
		}
		return ctx.Err()
	}
}

func (s *Serializer) Create(ctx context.Context, title, description string) (model.Task, error) {
	var (
		t   model.Task
		err error
	)
	if serr := s.submit(ctx, "create", func(ctx context.Context) {
		t, err = s.repo.Create(ctx, title, description)
	}); serr != nil {
		return model.Task{}, serr
	}
	return t, err
}

func (s *Serializer) List(ctx context.Context) ([]model.Task, error) {
	var (
		tasks []model.Task
		err   error
	)
	if serr := s.submit(ctx, "list", func(ctx context.Context) {
		tasks, err = s.repo.List(ctx)
	}); serr != nil {
		return nil, serr
	}
	return tasks, err
}

func (s *Serializer) Get(ctx context.Context, id string) (model.Task, error) {
	var (
		t   model.Task
		err error
	)
	if serr := s.submit(ctx, "get", func(ctx context.Context) {
		t, err = s.repo.Get(ctx, id)
	}); serr != nil {
		return model.Task{}, serr
	}
	return t, err
}

func (s *Serializer) Update(ctx context.Context, id string, upd model.TaskUpdate) (model.Task, error) {
	var (
		t   model.Task
		err error
	)
	if serr := s.submit(ctx, "update", func(ctx context.Context) {
		t, err = s.repo.Update(ctx, id, upd)
	}); serr != nil {
		return model.Task{}, serr
	}
	return t, err
}

func (s *Serializer) Delete(ctx context.Context, id string) (model.Task, error) {
	var (
		t   model.Task
		err error
	)
	if serr := s.submit(ctx, "delete", func(ctx context.Context) {
		t, err = s.repo.Delete(ctx, id)
	}); serr != nil {
		return model.Task{}, serr
	}
	return t, err
}

// Close stops the writer and closes the wrapped repository.
func (s *Serializer) Close() error {
	s.Stop()
	return s.repo.Close()
}
