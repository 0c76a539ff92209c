package index

import (
	"fmt"

	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
)

// Insert runs the AVL insert algorithm of spec.md §4.5.3. The first
// Insert call on an empty index lazily creates the slot-0 sentinel (data
// model invariant 4: node 0 is the sentinel root; its left child is the
// real root) — IndexInput's flat bulk path never touches this sentinel,
// so a store that is only ever bulk-indexed has no slot 0 overhead
// (consistent with the byte counts in spec.md's E1 scenario).
//
// Returns the slot the gid now occupies and whether this call actually
// inserted it (false on a duplicate key, which is a no-op).
func (x *Index) Insert(gid string) (uint64, bool, error) {
	if x.header.IndexedCount == 0 {
		if err := x.appendRaw(Value{}); err != nil {
			return 0, false, err
		}
	}

	sentinel, ok, err := x.Value(0, true)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, fmt.Errorf("index: missing sentinel at slot 0")
	}

	if sentinel.Left == 0 {
		newSlot, err := x.attachChild(0, &sentinel, true, gid)
		if err != nil {
			return 0, false, err
		}
		return newSlot, true, nil
	}

	cursor := sentinel.Left
	for {
		cur, ok, err := x.Value(cursor, true)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, fmt.Errorf("index: dangling node at slot %d", cursor)
		}

		switch {
		case gid == cur.GID:
			return cursor, false, nil
		case gid < cur.GID:
			if cur.Left == 0 {
				newSlot, err := x.attachChild(cursor, &cur, true, gid)
				if err != nil {
					return 0, false, err
				}
				if err := x.rebalance(newSlot); err != nil {
					return 0, false, err
				}
				return newSlot, true, nil
			}
			cursor = cur.Left
		default:
			if cur.Right == 0 {
				newSlot, err := x.attachChild(cursor, &cur, false, gid)
				if err != nil {
					return 0, false, err
				}
				if err := x.rebalance(newSlot); err != nil {
					return 0, false, err
				}
				return newSlot, true, nil
			}
			cursor = cur.Right
		}
	}
}

// appendRaw appends v as a brand new slot and bumps indexed_count,
// creating the file if needed and persisting the header.
func (x *Index) appendRaw(v Value) error {
	return x.AppendValue(v)
}

// attachChild appends a new leaf node as parentSlot's left or right
// child and persists both.
func (x *Index) attachChild(parentSlot uint64, parent *Value, left bool, gid string) (uint64, error) {
	newSlot := x.header.IndexedCount
	node := Value{Parent: parentSlot, Height: 1, Status: primitive.StatusYes, GID: gid}
	if err := x.appendRaw(node); err != nil {
		return 0, err
	}

	if left {
		parent.Left = newSlot
	} else {
		parent.Right = newSlot
	}
	if err := x.SaveValue(parentSlot, *parent); err != nil {
		return 0, err
	}
	return newSlot, nil
}

// Search descends from the real root (sentinel.Left) comparing gid by
// byte order, returning the matching slot or ok=false.
func (x *Index) Search(gid string) (uint64, bool, error) {
	if x.header.IndexedCount == 0 {
		return 0, false, nil
	}

	sentinel, ok, err := x.Value(0, true)
	if err != nil {
		return 0, false, err
	}
	if !ok || sentinel.Left == 0 {
		return 0, false, nil
	}

	cursor := sentinel.Left
	for cursor != 0 {
		v, ok, err := x.Value(cursor, true)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, fmt.Errorf("index: dangling node at slot %d", cursor)
		}

		switch {
		case gid == v.GID:
			return cursor, true, nil
		case gid < v.GID:
			cursor = v.Left
		default:
			cursor = v.Right
		}
	}
	return 0, false, nil
}

func (x *Index) heightOf(slot uint64) (int64, error) {
	if slot == 0 {
		return 0, nil
	}
	v, ok, err := x.Value(slot, true)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("index: dangling node at slot %d", slot)
	}
	return v.Height, nil
}

// rebalance walks from the newly-attached slot toward the root via
// parent links (spec.md §4.5.3 steps 4-6), recomputing and persisting
// heights, stopping at the first node whose balance factor exceeds 1 in
// magnitude to rotate, then continuing the walk upward.
func (x *Index) rebalance(from uint64) error {
	cur := from
	for cur != 0 {
		v, ok, err := x.Value(cur, true)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("index: dangling node at slot %d", cur)
		}

		lh, err := x.heightOf(v.Left)
		if err != nil {
			return err
		}
		rh, err := x.heightOf(v.Right)
		if err != nil {
			return err
		}
		bf := lh - rh
		v.Height = 1 + max(lh, rh)
		if err := x.SaveValue(cur, v); err != nil {
			return err
		}

		if bf <= 1 && bf >= -1 {
			cur = v.Parent
			continue
		}

		pivotParent := v.Parent
		newRoot, err := x.rotate(cur, v, bf)
		if err != nil {
			return err
		}

		if err := x.relinkParent(newRoot, pivotParent, cur); err != nil {
			return err
		}

		cur = pivotParent
	}
	return nil
}

// relinkParent points pivotParent's child slot that used to hold
// oldChild at newChild instead, and fixes newChild's own Parent link.
// pivotParent == 0 means oldChild was the tree root under the sentinel.
func (x *Index) relinkParent(newChild, pivotParent, oldChild uint64) error {
	newNode, ok, err := x.Value(newChild, true)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("index: dangling node at slot %d", newChild)
	}
	newNode.Parent = pivotParent
	if err := x.SaveValue(newChild, newNode); err != nil {
		return err
	}

	parent, ok, err := x.Value(pivotParent, true)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("index: dangling node at slot %d", pivotParent)
	}
	if parent.Left == oldChild {
		parent.Left = newChild
	} else {
		parent.Right = newChild
	}
	return x.SaveValue(pivotParent, parent)
}

// rotate dispatches LL/LR/RR/RL by the sign of bf and the shape of the
// heavy subtree (spec.md §4.5.3 step 5), returning the slot that becomes
// the new local subtree root. It does not touch the returned root's
// Parent link or its former parent's child pointer — rebalance's caller
// (relinkParent) does that uniformly for single and double rotations.
func (x *Index) rotate(pivotSlot uint64, pivot Value, bf int64) (uint64, error) {
	if bf > 1 {
		left, ok, err := x.Value(pivot.Left, true)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("index: dangling node at slot %d", pivot.Left)
		}
		hLL, err := x.heightOf(left.Left)
		if err != nil {
			return 0, err
		}
		hLR, err := x.heightOf(left.Right)
		if err != nil {
			return 0, err
		}
		if hLL >= hLR {
			return x.rotateRight(pivotSlot, pivot)
		}
		// LR: rotate the left child left first, then rotate the pivot right.
		newLeftSlot, err := x.rotateLeft(pivot.Left, left)
		if err != nil {
			return 0, err
		}
		newLeftNode, ok, err := x.Value(newLeftSlot, true)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("index: dangling node at slot %d", newLeftSlot)
		}
		newLeftNode.Parent = pivotSlot
		if err := x.SaveValue(newLeftSlot, newLeftNode); err != nil {
			return 0, err
		}
		pivot.Left = newLeftSlot
		return x.rotateRight(pivotSlot, pivot)
	}

	right, ok, err := x.Value(pivot.Right, true)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("index: dangling node at slot %d", pivot.Right)
	}
	hRR, err := x.heightOf(right.Right)
	if err != nil {
		return 0, err
	}
	hRL, err := x.heightOf(right.Left)
	if err != nil {
		return 0, err
	}
	if hRR >= hRL {
		return x.rotateLeft(pivotSlot, pivot)
	}
	// RL: rotate the right child right first, then rotate the pivot left.
	newRightSlot, err := x.rotateRight(pivot.Right, right)
	if err != nil {
		return 0, err
	}
	newRightNode, ok, err := x.Value(newRightSlot, true)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("index: dangling node at slot %d", newRightSlot)
	}
	newRightNode.Parent = pivotSlot
	if err := x.SaveValue(newRightSlot, newRightNode); err != nil {
		return 0, err
	}
	pivot.Right = newRightSlot
	return x.rotateLeft(pivotSlot, pivot)
}

// rotateRight is the single LL rotation: pivot's left child rises to
// take pivot's place, and the rising child's former right subtree
// becomes pivot's new left subtree.
func (x *Index) rotateRight(pivotSlot uint64, pivot Value) (uint64, error) {
	leftSlot := pivot.Left
	left, ok, err := x.Value(leftSlot, true)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("index: dangling node at slot %d", leftSlot)
	}

	moved := left.Right
	pivot.Left = moved
	if moved != 0 {
		movedNode, ok, err := x.Value(moved, true)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("index: dangling node at slot %d", moved)
		}
		movedNode.Parent = pivotSlot
		if err := x.SaveValue(moved, movedNode); err != nil {
			return 0, err
		}
	}

	left.Right = pivotSlot
	pivot.Parent = leftSlot

	lh, err := x.heightOf(pivot.Left)
	if err != nil {
		return 0, err
	}
	rh, err := x.heightOf(pivot.Right)
	if err != nil {
		return 0, err
	}
	pivot.Height = 1 + max(lh, rh)
	if err := x.SaveValue(pivotSlot, pivot); err != nil {
		return 0, err
	}

	lh2, err := x.heightOf(left.Left)
	if err != nil {
		return 0, err
	}
	rh2, err := x.heightOf(left.Right)
	if err != nil {
		return 0, err
	}
	left.Height = 1 + max(lh2, rh2)
	if err := x.SaveValue(leftSlot, left); err != nil {
		return 0, err
	}

	return leftSlot, nil
}

// rotateLeft is the single RR rotation, the mirror of rotateRight.
func (x *Index) rotateLeft(pivotSlot uint64, pivot Value) (uint64, error) {
	rightSlot := pivot.Right
	right, ok, err := x.Value(rightSlot, true)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("index: dangling node at slot %d", rightSlot)
	}

	moved := right.Left
	pivot.Right = moved
	if moved != 0 {
		movedNode, ok, err := x.Value(moved, true)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("index: dangling node at slot %d", moved)
		}
		movedNode.Parent = pivotSlot
		if err := x.SaveValue(moved, movedNode); err != nil {
			return 0, err
		}
	}

	right.Left = pivotSlot
	pivot.Parent = rightSlot

	lh, err := x.heightOf(pivot.Left)
	if err != nil {
		return 0, err
	}
	rh, err := x.heightOf(pivot.Right)
	if err != nil {
		return 0, err
	}
	pivot.Height = 1 + max(lh, rh)
	if err := x.SaveValue(pivotSlot, pivot); err != nil {
		return 0, err
	}

	lh2, err := x.heightOf(right.Left)
	if err != nil {
		return 0, err
	}
	rh2, err := x.heightOf(right.Right)
	if err != nil {
		return 0, err
	}
	right.Height = 1 + max(lh2, rh2)
	if err := x.SaveValue(rightSlot, right); err != nil {
		return 0, err
	}

	return rightSlot, nil
}
