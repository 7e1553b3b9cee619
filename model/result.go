package model

import "strconv"

// Result is the outcome code of an action primitive. The values mirror the
// engine's return codes so they can be logged and compared directly.
type Result int

const (
	NoOp               Result = 1 // nothing attempted, e.g. already in range
	OK                 Result = 0
	ErrNotOwner        Result = -1
	ErrNoPath          Result = -2
	ErrNameExists      Result = -3
	ErrBusy            Result = -4
	ErrNotFound        Result = -5
	ErrNotEnoughEnergy Result = -6
	ErrInvalidTarget   Result = -7
	ErrFull            Result = -8
	ErrNotInRange      Result = -9
	ErrInvalidArgs     Result = -10
	ErrTired           Result = -11
	ErrNoBodypart      Result = -12
	ErrNotAvailable    Result = -14

	// ErrStuck is synthetic: the movement supervisor reports it after
	// repeated attempts that did not change the unit's position.
	ErrStuck Result = -100
)

var resultNames = map[Result]string{
	NoOp:               "NO_OP",
	OK:                 "OK",
	ErrNotOwner:        "ERR_NOT_OWNER",
	ErrNoPath:          "ERR_NO_PATH",
	ErrNameExists:      "ERR_NAME_EXISTS",
	ErrBusy:            "ERR_BUSY",
	ErrNotFound:        "ERR_NOT_FOUND",
	ErrNotEnoughEnergy: "ERR_NOT_ENOUGH_ENERGY",
	ErrInvalidTarget:   "ERR_INVALID_TARGET",
	ErrFull:            "ERR_FULL",
	ErrNotInRange:      "ERR_NOT_IN_RANGE",
	ErrInvalidArgs:     "ERR_INVALID_ARGS",
	ErrTired:           "ERR_TIRED",
	ErrNoBodypart:      "ERR_NO_BODYPART",
	ErrNotAvailable:    "ERR_NOT_AVAILABLE",
	ErrStuck:           "ERR_STUCK",
}

func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return "RESULT(" + strconv.Itoa(int(r)) + ")"
}
