// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package dslqueue

import (
	"fmt"
	"strings"
)

// Mode selects how polls drain the queue.
type Mode int

const (
	// ModeOneShot delivers each payload exactly once. After the queue
	// empties, polls yield the exit signal when AutoExit is set.
	ModeOneShot Mode = iota
	// ModeCycling rotates payloads so they are served round-robin forever.
	ModeCycling
)

func (m Mode) String() string {
	switch m {
	case ModeOneShot:
		return "oneshot"
	case ModeCycling:
		return "cycling"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oneshot", "one-shot", "one_shot":
		return ModeOneShot, nil
	case "cycling", "cycle":
		return ModeCycling, nil
	}
	return ModeOneShot, fmt.Errorf("unknown mode %q (want oneshot or cycling)", s)
}

// DefaultExitSignal is served once a one-shot queue is exhausted.
const DefaultExitSignal = "exit"

// Policy is the immutable per-process poll configuration.
type Policy struct {
	Mode Mode
	// ExitSignal is the literal text substituted for a payload once a
	// one-shot queue is exhausted.
	ExitSignal string
	// AutoExit enables the terminal signal. When false an exhausted
	// one-shot queue keeps answering with the empty signal.
	AutoExit bool
	// ProbePatterns are substrings matched against the client User-Agent.
	// Matching requesters never receive real work and never mutate the
	// queue, so headless health checks cannot drain a session.
	ProbePatterns []string
}

// IsProbe reports whether the given User-Agent belongs to an automated probe.
func (p Policy) IsProbe(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	for _, pattern := range p.ProbePatterns {
		if pattern != "" && strings.Contains(userAgent, pattern) {
			return true
		}
	}
	return false
}

// OutcomeKind tags the result of a poll.
type OutcomeKind int

const (
	// OutcomePayload carries the next unit of work.
	OutcomePayload OutcomeKind = iota
	// OutcomeEmpty means no work is available right now.
	OutcomeEmpty
	// OutcomeExit tells the consumer to terminate its session. It is
	// synthesized, never dequeued, and serialized like a payload.
	OutcomeExit
)

// Outcome is the decision produced for a single poll.
type Outcome struct {
	Kind    OutcomeKind
	Text    string
	Payload Payload
}

// Poll runs the protocol state machine for one inbound poll.
func Poll(q *Queue, policy Policy, userAgent string) Outcome {
	if policy.IsProbe(userAgent) {
		return Outcome{Kind: OutcomeEmpty}
	}

	switch policy.Mode {
	case ModeCycling:
		if p, ok := q.Rotate(); ok {
			return Outcome{Kind: OutcomePayload, Text: p.Text, Payload: p}
		}
		return Outcome{Kind: OutcomeEmpty}

	case ModeOneShot:
		if p, ok := q.TryDequeue(); ok {
			return Outcome{Kind: OutcomePayload, Text: p.Text, Payload: p}
		}
		if policy.AutoExit {
			return Outcome{Kind: OutcomeExit, Text: policy.ExitSignal}
		}
		return Outcome{Kind: OutcomeEmpty}
	}

	return Outcome{Kind: OutcomeEmpty}
}
