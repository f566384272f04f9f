package copier

import "sync"

// stack is the LIFO work queue shared by the discovery goroutine and the
// workers. pop blocks until a task is available, the producer has closed
// the stack, or the run was aborted.
type stack struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []Task
	closed  bool
	aborted bool
}

func newStack() *stack {
	s := &stack{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// push queues t. It reports false once the run has been aborted.
func (s *stack) push(t Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aborted {
		return false
	}
	s.tasks = append(s.tasks, t)
	s.cond.Signal()
	return true
}

func (s *stack) pop() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.tasks) == 0 && !s.closed && !s.aborted {
		s.cond.Wait()
	}
	if s.aborted || len(s.tasks) == 0 {
		return Task{}, false
	}
	t := s.tasks[len(s.tasks)-1]
	s.tasks = s.tasks[:len(s.tasks)-1]
	return t, true
}

// close marks the end of discovery; queued tasks still drain.
func (s *stack) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
}

// abort drops queued tasks and releases every waiting worker.
func (s *stack) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted = true
	s.tasks = nil
	s.cond.Broadcast()
}
