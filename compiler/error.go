package compiler

import (
	"errors"
)

var (
	ErrBadRepeat   = errors.New("repetition maximum below minimum")
	ErrLoopControl = errors.New("break or continue outside of a loop")
	ErrBadSlot     = errors.New("negative local slot")
)
