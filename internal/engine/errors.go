package engine

import "errors"

// Sentinel errors for the parsing layers in front of the engine. Engine
// commands themselves report no-ops as false results, never as errors.
var (
	ErrUnknownUpgrade     = errors.New("unknown upgrade kind")
	ErrUnknownLegacy      = errors.New("unknown legacy upgrade kind")
	ErrUnknownAchievement = errors.New("unknown achievement")
	ErrInvalidQuantity    = errors.New("invalid quantity selector")
)
