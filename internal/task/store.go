package task

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/melodysnap-api/internal/domain"
)

// MemoryTaskStore is a TaskStore backed by a map. Readers always receive
// copies, so a snapshot never changes after it is returned.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

var _ TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates an empty store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[string]*domain.Task)}
}

func (s *MemoryTaskStore) Insert(task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return fmt.Errorf("%w: %s", ErrTaskExists, task.ID)
	}
	c := task.Clone()
	s.tasks[task.ID] = &c
	return nil
}

func (s *MemoryTaskStore) Get(id string) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (s *MemoryTaskStore) Update(id string, fn func(*domain.Task) error) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, ErrTaskNotFound
	}

	// Work on a copy so a failing fn leaves the record untouched.
	work := t.Clone()
	if err := fn(&work); err != nil {
		return t.Clone(), err
	}
	*t = work
	return t.Clone(), nil
}

func (s *MemoryTaskStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryTaskStore) DeleteIfTerminal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	if !t.Status.IsTerminal() {
		return fmt.Errorf("%w: status %s", ErrTaskInProgress, t.Status)
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryTaskStore) DeleteTerminalBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, t := range s.tasks {
		if t.Status.IsTerminal() && t.UpdatedAt.Before(cutoff) {
			delete(s.tasks, id)
			n++
		}
	}
	return n
}

func (s *MemoryTaskStore) List() []domain.Task {
	s.mu.RLock()
	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryTaskStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
