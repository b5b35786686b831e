package core

import (
	"errors"
)

var (
	ErrShaderNotFound  = errors.New("shader program not found")
	ErrNotSPIRV        = errors.New("shader code is not SPIR-V")
	ErrUnknownHandle   = errors.New("unknown or already released gpu handle")
	ErrAlreadyDisposed = errors.New("render group already disposed")
	ErrDuplicateGroup  = errors.New("render group with the same name already registered")
	ErrNoGroupsBuilt   = errors.New("no render group could be built")
	ErrInvalidConfig   = errors.New("invalid render configuration")
	ErrArenaExhausted  = errors.New("per-frame uniform arena exhausted")
	ErrUnknown         = errors.New("unknown")
)
