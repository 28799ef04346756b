package dicomdir

import (
	"iter"
	"slices"
)

// Walk iterates the forest starting at first in pre-order: an entry, then its
// children depth first, then its next siblings. The walk is lazy, uses an
// explicit stack and can be restarted; it never modifies the tree.
func Walk(first *Entry) iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range WalkDepth(first) {
			if !yield(e) {
				return
			}
		}
	}
}

// WalkDepth is Walk with the depth of every entry, 0 for first and its siblings
func WalkDepth(first *Entry) iter.Seq2[int, *Entry] {
	type frame struct {
		id    int
		depth int
	}
	return func(yield func(int, *Entry) bool) {
		if first == nil {
			return
		}
		d := first.dir
		stack := []frame{{first.id, 0}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			e := d.entries[top.id]
			if !yield(top.depth, e) {
				return
			}
			// The child is pushed last so it is visited before the next sibling
			if e.next != noEntry {
				stack = append(stack, frame{e.next, top.depth})
			}
			if e.child != noEntry {
				stack = append(stack, frame{e.child, top.depth + 1})
			}
		}
	}
}

// Walk iterates every attached entry of the directory in pre-order
func (d *Dir) Walk() iter.Seq[*Entry] {
	return Walk(d.FirstRoot())
}

// Descendants iterates the subtree below e in pre-order, e excluded
func (e *Entry) Descendants() iter.Seq[*Entry] {
	return Walk(e.FirstChild())
}

// OfType keeps the entries of seq whose type is one of types
func OfType(seq iter.Seq[*Entry], types ...RecordType) iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for e := range seq {
			if slices.Contains(types, e.typ) && !yield(e) {
				return
			}
		}
	}
}
