// Package memory holds the bounded conversation history sent to the
// completion provider.
package memory

import (
	"sync"

	"github.com/entrhq/pagechat/pkg/types"
)

// DefaultWindow is how many recent turns survive a prune, not counting the
// pinned head.
const DefaultWindow = 8

// ConversationMemory is an ordered list of turns with one pinned head turn
// (the system directive) followed by a sliding window of user and assistant
// turns. The head is never evicted.
type ConversationMemory struct {
	mu      sync.RWMutex
	head    *types.Message
	turns   []*types.Message
	window  int
	evicted int
}

// NewConversationMemory creates a memory pinned to head that keeps the most
// recent window turns after each prune. A window below 2 is raised to 2 so at
// least the latest exchange survives.
func NewConversationMemory(head *types.Message, window int) *ConversationMemory {
	if window < 2 {
		window = 2
	}
	return &ConversationMemory{
		head:   head,
		window: window,
	}
}

// Add appends a turn after the current window.
func (m *ConversationMemory) Add(msg *types.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, msg)
}

// Head returns the pinned turn.
func (m *ConversationMemory) Head() *types.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.head
}

// GetAll returns the head followed by every kept turn, oldest first. The
// returned slice is a copy.
func (m *ConversationMemory) GetAll() []*types.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*types.Message, 0, len(m.turns)+1)
	if m.head != nil {
		all = append(all, m.head)
	}
	return append(all, m.turns...)
}

// Len returns the total number of turns including the head.
func (m *ConversationMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.head == nil {
		return len(m.turns)
	}
	return len(m.turns) + 1
}

// Window returns how many turns a prune keeps behind the head.
func (m *ConversationMemory) Window() int {
	return m.window
}

// Capacity is the largest Len a pruned memory can have.
func (m *ConversationMemory) Capacity() int {
	return m.window + 1
}

// Prune evicts the oldest turns so that only the head and the most recent
// window turns remain, in their original order. It returns the number of
// turns evicted.
func (m *ConversationMemory) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	excess := len(m.turns) - m.window
	if excess <= 0 {
		return 0
	}

	kept := make([]*types.Message, m.window)
	copy(kept, m.turns[excess:])
	m.turns = kept
	m.evicted += excess
	return excess
}

// Evicted returns how many turns have been dropped by Prune so far.
func (m *ConversationMemory) Evicted() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.evicted
}

// Clear drops every turn except the head.
func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evicted += len(m.turns)
	m.turns = nil
}
