// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import "sync"

// OutputSubscriber renders sweep events. During one sweep a subscriber
// sees sweep_started once, then zero or more port_open events, then
// sweep_complete once with the sorted result. diag and error events may
// arrive in between.
type OutputSubscriber interface {
	// Handle processes an output event. port_open events come straight
	// from the scan tasks, so Handle must tolerate concurrent calls.
	Handle(event OutputEvent)

	// Name returns a unique identifier for this subscriber.
	Name() string

	// ShouldHandle decides if this subscriber cares about this event.
	ShouldHandle(event OutputEvent) bool
}

// OutputEventStream fans sweep events out to subscribers.
//
// Delivery is synchronous on the emitting goroutine. A scan task emits
// port_open before it sends the port to the collector, so the progress
// marker for a port is always written before the port can appear in the
// final listing. sweep_complete is emitted once by the service after all
// tasks have finished, so no port_open follows it.
type OutputEventStream struct {
	subscribers []OutputSubscriber
	mu          sync.RWMutex
}

// NewOutputEventStream creates a new event stream with no subscribers.
func NewOutputEventStream() *OutputEventStream {
	return &OutputEventStream{
		subscribers: make([]OutputSubscriber, 0, 3),
	}
}

// Subscribe registers a new subscriber. Subscribers are called in
// registration order.
func (s *OutputEventStream) Subscribe(sub OutputSubscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, sub)
}

// Emit hands event to every subscriber whose ShouldHandle accepts it and
// returns when all of them are done. Concurrent scan tasks may call Emit
// at the same time.
func (s *OutputEventStream) Emit(event OutputEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subscribers {
		if sub.ShouldHandle(event) {
			sub.Handle(event)
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (s *OutputEventStream) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
