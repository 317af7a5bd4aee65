// Package history abstracts browser session history so view state can be
// pushed to and restored from URLs without a browser.
package history

// State is the payload stored with a history entry.
type State struct {
	Location string `json:"location"`
}

// History is the subset of the browser history API the map needs.
type History interface {
	// PushState appends an entry and makes url the current location.
	PushState(state *State, title, url string)
	// OnNavigate registers fn for back/forward navigation. fn receives the
	// state of the entry navigated to, nil when it has none.
	OnNavigate(fn func(*State)) (cancel func())
	// Location returns the current URL.
	Location() string
}

// Entry is one history entry.
type Entry struct {
	State *State
	Title string
	URL   string
}

// Memory is an in-memory History with back/forward navigation. It is not
// safe for concurrent use.
type Memory struct {
	entries  []Entry
	index    int
	navigate []*handler[*State]
	push     []*handler[Entry]
}

type handler[T any] struct {
	fn func(T)
}

// NewMemory starts a history at url. The first entry carries no state,
// like a fresh page load.
func NewMemory(url string) *Memory {
	return &Memory{entries: []Entry{{URL: url}}}
}

// PushState drops any forward entries and appends a new current entry.
func (m *Memory) PushState(state *State, title, url string) {
	m.entries = append(m.entries[:m.index+1], Entry{State: state, Title: title, URL: url})
	m.index++
	e := m.entries[m.index]
	for _, h := range append([]*handler[Entry](nil), m.push...) {
		h.fn(e)
	}
}

// OnNavigate registers a navigation handler.
func (m *Memory) OnNavigate(fn func(*State)) (cancel func()) {
	return subscribe(&m.navigate, fn)
}

// OnPush registers fn to observe pushed entries.
func (m *Memory) OnPush(fn func(Entry)) (cancel func()) {
	return subscribe(&m.push, fn)
}

// Location returns the current URL.
func (m *Memory) Location() string {
	return m.entries[m.index].URL
}

// Current returns the current entry.
func (m *Memory) Current() Entry {
	return m.entries[m.index]
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	return len(m.entries)
}

// Index returns the position of the current entry.
func (m *Memory) Index() int {
	return m.index
}

// Back moves one entry back. It reports false at the oldest entry.
func (m *Memory) Back() bool {
	return m.Go(-1)
}

// Forward moves one entry forward. It reports false at the newest entry.
func (m *Memory) Forward() bool {
	return m.Go(1)
}

// Go moves delta entries and fires navigation handlers once the new
// location is current.
func (m *Memory) Go(delta int) bool {
	i := m.index + delta
	if delta == 0 || i < 0 || i >= len(m.entries) {
		return false
	}
	m.index = i
	state := m.entries[i].State
	for _, h := range append([]*handler[*State](nil), m.navigate...) {
		h.fn(state)
	}
	return true
}

func subscribe[T any](list *[]*handler[T], fn func(T)) func() {
	h := &handler[T]{fn: fn}
	*list = append(*list, h)
	return func() {
		for i, existing := range *list {
			if existing == h {
				*list = append((*list)[:i:i], (*list)[i+1:]...)
				return
			}
		}
	}
}
