package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PushAndNavigate(t *testing.T) {
	m := NewMemory("http://localhost/")

	var seen []*State
	m.OnNavigate(func(s *State) { seen = append(seen, s) })

	m.PushState(&State{Location: "http://localhost/?a=1"}, "one", "http://localhost/?a=1")
	m.PushState(&State{Location: "http://localhost/?a=2"}, "two", "http://localhost/?a=2")
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, "http://localhost/?a=2", m.Location())

	require.True(t, m.Back())
	assert.Equal(t, "http://localhost/?a=1", m.Location())
	require.True(t, m.Back())
	assert.Equal(t, "http://localhost/", m.Location())
	assert.False(t, m.Back())

	require.Len(t, seen, 2)
	assert.Equal(t, "http://localhost/?a=1", seen[0].Location)
	assert.Nil(t, seen[1])

	require.True(t, m.Forward())
	assert.Equal(t, "one", m.Current().Title)
}

func TestMemory_PushTruncatesForward(t *testing.T) {
	m := NewMemory("http://localhost/")
	m.PushState(&State{Location: "a"}, "", "a")
	m.PushState(&State{Location: "b"}, "", "b")
	m.Back()
	m.PushState(&State{Location: "c"}, "", "c")

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 2, m.Index())
	assert.False(t, m.Forward())
}

func TestMemory_OnPushAndCancel(t *testing.T) {
	m := NewMemory("u0")
	var pushed []string
	cancel := m.OnPush(func(e Entry) { pushed = append(pushed, e.URL) })

	m.PushState(nil, "", "u1")
	cancel()
	m.PushState(nil, "", "u2")

	assert.Equal(t, []string{"u1"}, pushed)
}
