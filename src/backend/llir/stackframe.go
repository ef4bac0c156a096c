package llir

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// StackFrame is the insertion-ordered slot table of one MachineFunction:
// slot id -> size in bytes, plus the aggregate ObjectsSize once finalized.
// Finalize walks insertion order and accumulates each slot's actual
// (word-aligned) size, so a slot bigger than one word never overlaps the
// next one.
type StackFrame struct {
	order       []int
	sizes       map[int]int
	positions   map[int]int
	objectsSize int
	finalized   bool
}

// ---------------------
// ----- functions -----
// ---------------------

// NewStackFrame returns an empty StackFrame.
func NewStackFrame() *StackFrame {
	return &StackFrame{sizes: make(map[int]int), positions: make(map[int]int)}
}

// InsertStackSlot records a slot of the given id and byte size. Every slot
// occupies at least 4 bytes.
func (f *StackFrame) InsertStackSlot(id, size int) {
	if size < 4 {
		size = 4
	}
	if _, exists := f.sizes[id]; !exists {
		f.order = append(f.order, id)
	}
	f.sizes[id] = size
	f.finalized = false
}

// Finalize assigns each slot a position by insertion order, accumulating
// actual aligned sizes, and computes ObjectsSize. Safe to call multiple
// times; a no-op once no further slots have been inserted.
func (f *StackFrame) Finalize() {
	if f.finalized {
		return
	}
	pos := 0
	for _, id := range f.order {
		f.positions[id] = pos
		pos += f.sizes[id]
	}
	f.objectsSize = pos
	f.finalized = true
}

// GetPosition returns the byte offset of slot id from the bottom of the
// frame's object area, finalizing the frame first if a slot was inserted
// since the last Finalize.
func (f *StackFrame) GetPosition(id int) int {
	f.Finalize()
	return f.positions[id]
}

// ObjectsSize returns the total size, in bytes, of the frame's stack
// objects (before alignment padding).
func (f *StackFrame) ObjectsSize() int {
	f.Finalize()
	return f.objectsSize
}

// HasSlot reports whether id names a stack slot in this frame.
func (f *StackFrame) HasSlot(id int) bool {
	_, ok := f.sizes[id]
	return ok
}
