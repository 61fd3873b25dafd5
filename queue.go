// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package dslqueue

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// SourceHTTP marks payloads submitted through the enqueue endpoint.
const SourceHTTP = "http"

// Payload is an opaque unit of work. The text is served to the consumer
// exactly as stored; ID and Source only exist for logging and hot reload.
type Payload struct {
	ID     string
	Text   string
	Source string
}

// ErrEmptyPayload signals a submission that is blank after trimming.
var ErrEmptyPayload = errors.New("dslqueue: empty payload")

// NewPayload trims the submitted text and assigns a fresh ID.
func NewPayload(source, text string) (Payload, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Payload{}, ErrEmptyPayload
	}
	return Payload{
		ID:     uuid.NewString(),
		Text:   text,
		Source: source,
	}, nil
}

// Queue is a FIFO of payloads safe for concurrent producers and consumers.
// A single mutex guards the slice; Rotate removes and re-appends under that
// same lock so cycling pollers can never observe a half-rotated queue.
type Queue struct {
	mu    sync.Mutex
	items []Payload
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a payload to the tail.
func (q *Queue) Enqueue(p Payload) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, p)
}

// TryDequeue removes and returns the head without blocking.
func (q *Queue) TryDequeue() (Payload, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Payload{}, false
	}
	head := q.items[0]
	q.items = append(q.items[:0], q.items[1:]...)
	return head, true
}

// Rotate removes the head and re-appends it to the tail in one step.
// Used by cycling mode so every payload is served round-robin forever.
func (q *Queue) Rotate() (Payload, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Payload{}, false
	}
	head := q.items[0]
	q.items = append(q.items[:0], q.items[1:]...)
	q.items = append(q.items, head)
	return head, true
}

// Update replaces the text of the payload with the given ID, keeping its
// position. Returns false when the payload has already been consumed.
func (q *Queue) Update(id, text string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Text = text
			return true
		}
	}
	return false
}

// Len returns the current depth. The value may be stale by the time the
// caller acts on it; the poll protocol never depends on it.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
