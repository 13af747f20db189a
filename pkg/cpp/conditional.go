package cpp

import "fmt"

// ConditionalFrame is one level of nested #if/#ifdef/#ifndef state, per
// spec: active is inherited from the enclosing frame's processing,
// processing marks whether this frame's current branch is selected,
// and processed is a sticky flag set once any branch of the chain has
// been selected (preventing a later #elif/#else from reactivating).
type ConditionalFrame struct {
	active    bool
	processing bool
	processed  bool
}

// ConditionalStack is the LIFO of conditional frames. It is created
// with a single synthetic root frame (active=true, processing=true,
// processed=true) so that top-level content is always emitted.
type ConditionalStack struct {
	frames []ConditionalFrame
}

// NewConditionalStack creates a stack holding only the synthetic root
// frame.
func NewConditionalStack() *ConditionalStack {
	return &ConditionalStack{
		frames: []ConditionalFrame{{active: true, processing: true, processed: true}},
	}
}

func (s *ConditionalStack) top() *ConditionalFrame {
	return &s.frames[len(s.frames)-1]
}

// IsActive reports whether a non-conditional line at the current
// position should be emitted (and a non-conditional directive, such as
// #define, should be executed).
func (s *ConditionalStack) IsActive() bool {
	t := s.top()
	return t.active && t.processing
}

// Depth returns the number of unclosed #if/#ifdef/#ifndef frames
// (excluding the synthetic root).
func (s *ConditionalStack) Depth() int {
	return len(s.frames) - 1
}

// pushFrame installs a new frame whose inherited active flag is the
// parent's current processing flag (spec invariant: active(child) ==
// processing(parent)); result becomes the new frame's processing only
// when that inherited flag is true, matching start_context in the
// original source.
func (s *ConditionalStack) pushFrame(result bool) {
	parent := s.top()
	f := ConditionalFrame{active: parent.processing}
	if f.active {
		f.processing = result
	} else {
		f.processing = false
	}
	f.processed = f.processing
	s.frames = append(s.frames, f)
}

// If handles "#if E", where result is the truth of E (already
// evaluated by the caller via the expression adapter).
func (s *ConditionalStack) If(result bool) {
	s.pushFrame(result)
}

// Ifdef handles "#ifdef N".
func (s *ConditionalStack) Ifdef(defined bool) {
	s.pushFrame(defined)
}

// Ifndef handles "#ifndef N".
func (s *ConditionalStack) Ifndef(defined bool) {
	s.pushFrame(!defined)
}

// Else handles "#else".
func (s *ConditionalStack) Else() {
	t := s.top()
	if t.active {
		t.processing = !t.processed
		t.processed = true
	} else {
		t.processing = false
	}
}

// Elif handles "#elif E". result is only meaningful (and should only
// be computed by the caller) when the chain is still open; passing a
// stale/irrelevant value when the chain is already decided is
// harmless since it will be ignored.
func (s *ConditionalStack) Elif(result bool) {
	t := s.top()
	if !t.active {
		t.processing = false
		return
	}
	if result && !t.processed {
		t.processing = true
		t.processed = true
	} else {
		t.processing = false
	}
}

// WouldBeActive reports what a freshly pushed child frame's active
// flag would be if pushFrame were called right now — i.e. the current
// frame's processing flag. #if callers use this to
// decide whether the controlling expression needs to be evaluated at
// all: the original source only evaluates it when the about-to-be-
// pushed frame would be active, which is why a "#if GARBAGE(" inside a
// dead "#if 0" branch is never diagnosed.
func (s *ConditionalStack) WouldBeActive() bool {
	return s.top().processing
}

// NeedsElifEval reports whether an "#elif" at the current position
// must evaluate its expression: only when the enclosing chain is
// itself active and no earlier branch in this chain has already been
// selected.
func (s *ConditionalStack) NeedsElifEval() bool {
	t := s.top()
	return t.active && !t.processed
}

// Endif handles "#endif". If the stack has only the synthetic root
// frame left, the underflow is diagnosed but processing continues
// (the root frame is never popped).
func (s *ConditionalStack) Endif() error {
	if len(s.frames) <= 1 {
		return fmt.Errorf("#endif without #if")
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// CheckBalanced reports an error (non-fatal; the caller decides how to
// surface it) if any #if/#ifdef/#ifndef remains unclosed at end of
// input.
func (s *ConditionalStack) CheckBalanced() error {
	if len(s.frames) > 1 {
		return fmt.Errorf("unterminated conditional directive, %d level(s) unclosed", len(s.frames)-1)
	}
	return nil
}
