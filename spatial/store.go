// SPDX-License-Identifier: EPL-2.0

package spatial

import (
	"fmt"
	"sync"
)

// Listener receives the positions after each write.
type Listener func(Positions)

// Store is the single writer of record for the source and receiver
// positions. Writes are last-write-wins.
//
// Listeners run synchronously on the writing goroutine and a write does not
// return until all of them have. Listeners may call Get but must not write
// to the store or call View.
type Store struct {
	// writeMu orders a write together with its notifications.
	writeMu sync.Mutex

	mu     sync.RWMutex
	cur    Positions
	subs   map[uint64]Listener
	nextID uint64
}

func NewStore(initial Positions) *Store {
	return &Store{
		cur:  initial,
		subs: make(map[uint64]Listener),
	}
}

func (s *Store) Get() Positions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cur
}

func (s *Store) Set(which Which, pos Position3D) error {
	if !pos.IsFinite() {
		return fmt.Errorf("%w: %s %v", ErrNotFinite, which, pos)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.cur = s.cur.with(which, pos)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) SetSource(pos Position3D) error   { return s.Set(Source, pos) }
func (s *Store) SetReceiver(pos Position3D) error { return s.Set(Receiver, pos) }

// SetBoth replaces both positions as one write with one notification.
func (s *Store) SetBoth(p Positions) error {
	if !p.Source.IsFinite() || !p.Receiver.IsFinite() {
		return fmt.Errorf("%w: source %v receiver %v", ErrNotFinite, p.Source, p.Receiver)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.cur = p
	s.mu.Unlock()

	s.notify()
	return nil
}

// View runs fn with the current positions while holding off writers, so
// whatever fn derives from them cannot be overtaken by a concurrent write.
func (s *Store) View(fn func(Positions)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	fn(s.Get())
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// notify must be called with writeMu held.
func (s *Store) notify() {
	s.mu.RLock()
	cur := s.cur
	subs := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(cur)
	}
}
