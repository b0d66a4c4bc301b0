package tir

import (
	"errors"
	"fmt"
)

// ErrEmptyFunctionBody is returned by ConstructCFG when the function
// has no blocks.
var ErrEmptyFunctionBody = errors.New("function body is empty")

// BlockNotTerminatedError identifies a block whose instruction
// sequence does not end in a branch or return.
type BlockNotTerminatedError struct {
	Block Block
}

func (e *BlockNotTerminatedError) Error() string {
	return fmt.Sprintf("%s does not end with a terminator", e.Block)
}
