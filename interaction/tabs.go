package interaction

// TabManager allocates tab ids and tracks which tab is active. IDs are the
// lowest unused positive integer, so closing tab 2 out of {1,2,3} and
// opening a new one reuses 2 rather than growing forever — grounded on
// tab/tab.go's TabManager (teacher), which does the same free-slot reuse
// for its internal tab array indices.
type TabManager struct {
	ids    []int
	Active int
}

// Open allocates and selects a new tab, returning its id.
func (m *TabManager) Open() int {
	id := lowestFreeID(m.ids)
	m.ids = append(m.ids, id)
	m.Active = len(m.ids) - 1
	return id
}

func lowestFreeID(ids []int) int {
	used := make(map[int]bool, len(ids))
	for _, id := range ids {
		used[id] = true
	}
	for candidate := 1; ; candidate++ {
		if !used[candidate] {
			return candidate
		}
	}
}

// Close removes the tab at index. If it was the last tab, it reports
// windowShouldHide=true and leaves the manager empty. Otherwise the new
// active index is min(index, newLen-1), per spec.md §4.9g.
func (m *TabManager) Close(index int) (windowShouldHide bool) {
	if index < 0 || index >= len(m.ids) {
		return false
	}
	m.ids = append(m.ids[:index:index], m.ids[index+1:]...)
	if len(m.ids) == 0 {
		m.Active = -1
		return true
	}
	m.Active = index
	if m.Active > len(m.ids)-1 {
		m.Active = len(m.ids) - 1
	}
	return false
}

// IDs returns the current tabs' ids in display order.
func (m *TabManager) IDs() []int {
	return m.ids
}

// ActiveID returns the active tab's id, or 0 if there are no tabs.
func (m *TabManager) ActiveID() int {
	if m.Active < 0 || m.Active >= len(m.ids) {
		return 0
	}
	return m.ids[m.Active]
}

// Select switches the active tab by index.
func (m *TabManager) Select(index int) {
	if index >= 0 && index < len(m.ids) {
		m.Active = index
	}
}

// Next cycles to the next tab, wrapping around. A no-op with 0 or 1 tabs.
// No tab bar or dropdown button is drawn; ActionNextTab is its only
// caller (see DESIGN.md).
func (m *TabManager) Next() {
	if len(m.ids) < 2 {
		return
	}
	m.Active = (m.Active + 1) % len(m.ids)
}

// Prev cycles to the previous tab, wrapping around.
func (m *TabManager) Prev() {
	if len(m.ids) < 2 {
		return
	}
	m.Active = (m.Active - 1 + len(m.ids)) % len(m.ids)
}

// FrameState bundles the per-tab interaction state that must reset to zero
// when the active tab switches: scroll accumulation, inertial-scroll
// suppression, selection, find, cursor blink, and scrollbar drag. The row
// cache and previous-frame snapshot also reset on tab switch per spec.md
// §4.9g, but those are owned by the render pipeline, not this package.
type FrameState struct {
	Scroll      ScrollAccumulator
	Suppression Suppression
	Selection   Selection
	Find        Find
	Blink       Blink
	ScrollDrag  ScrollbarDrag
	Toast       Toast
}

// NewFrameState returns a FrameState ready for a freshly selected tab.
func NewFrameState() FrameState {
	return FrameState{Blink: NewBlink()}
}

// Reset returns fs to a freshly selected tab's state.
func (fs *FrameState) Reset() {
	*fs = NewFrameState()
}
