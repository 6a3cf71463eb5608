package rbtree

import "errors"

var (
	errRootRed            = errors.New("rbtree: root is red")
	errRedRedViolation     = errors.New("rbtree: red node has a red child")
	errBlackDepthMismatch  = errors.New("rbtree: unequal black depth between subtrees")
	errNotIncreasing       = errors.New("rbtree: in-order ranges are not strictly increasing")
	errAdjacentRanges      = errors.New("rbtree: adjacent ranges were not coalesced")
)
