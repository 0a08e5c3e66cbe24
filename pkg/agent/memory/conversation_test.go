package memory

import (
	"fmt"
	"testing"

	"github.com/entrhq/pagechat/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addExchanges(m *ConversationMemory, from, to int) {
	for i := from; i <= to; i++ {
		m.Add(types.NewUserMessage(fmt.Sprintf("question %d", i)))
		m.Add(types.NewAssistantMessage(fmt.Sprintf("answer %d", i)))
	}
}

func TestNewConversationMemory(t *testing.T) {
	head := types.NewSystemMessage("directive")

	m := NewConversationMemory(head, DefaultWindow)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 9, m.Capacity())
	assert.Same(t, head, m.Head())

	small := NewConversationMemory(head, 0)
	assert.Equal(t, 2, small.Window(), "window is raised to hold one exchange")
}

func TestConversationMemory_GetAllReturnsCopy(t *testing.T) {
	m := NewConversationMemory(types.NewSystemMessage("directive"), DefaultWindow)
	m.Add(types.NewUserMessage("hello"))

	all := m.GetAll()
	require.Len(t, all, 2)
	all[1] = types.NewUserMessage("mutated")

	assert.Equal(t, "hello", m.GetAll()[1].Content)
}

func TestConversationMemory_Prune(t *testing.T) {
	tests := []struct {
		name        string
		exchanges   int
		wantEvicted int
		wantFirst   string
	}{
		{name: "under window", exchanges: 3, wantEvicted: 0, wantFirst: "question 1"},
		{name: "exactly window", exchanges: 4, wantEvicted: 0, wantFirst: "question 1"},
		{name: "one exchange over", exchanges: 5, wantEvicted: 2, wantFirst: "question 2"},
		{name: "six exchanges", exchanges: 6, wantEvicted: 4, wantFirst: "question 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head := types.NewSystemMessage("directive")
			m := NewConversationMemory(head, DefaultWindow)
			addExchanges(m, 1, tt.exchanges)

			evicted := m.Prune()
			assert.Equal(t, tt.wantEvicted, evicted)

			all := m.GetAll()
			assert.LessOrEqual(t, len(all), m.Capacity())
			assert.Same(t, head, all[0], "head must stay first")
			assert.Equal(t, tt.wantFirst, all[1].Content)
			assert.Equal(t, fmt.Sprintf("answer %d", tt.exchanges), all[len(all)-1].Content)
		})
	}
}

func TestConversationMemory_PruneKeepsOrder(t *testing.T) {
	m := NewConversationMemory(types.NewSystemMessage("directive"), DefaultWindow)
	addExchanges(m, 1, 6)
	require.Equal(t, 13, m.Len())

	m.Prune()

	all := m.GetAll()
	require.Len(t, all, 9)
	want := []string{
		"directive",
		"question 3", "answer 3",
		"question 4", "answer 4",
		"question 5", "answer 5",
		"question 6", "answer 6",
	}
	for i, msg := range all {
		assert.Equal(t, want[i], msg.Content, "position %d", i)
	}
	assert.Equal(t, 4, m.Evicted())
}

func TestConversationMemory_Clear(t *testing.T) {
	head := types.NewSystemMessage("directive")
	m := NewConversationMemory(head, DefaultWindow)
	addExchanges(m, 1, 2)

	m.Clear()

	assert.Equal(t, 1, m.Len())
	assert.Same(t, head, m.GetAll()[0])
	assert.Equal(t, 4, m.Evicted())
}
