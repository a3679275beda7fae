package emulator

import (
	"errors"

	"github.com/ezrec/secure32/translate"
)

var f = translate.From

var (
	ErrConfigKey   = errors.New(f("unknown configuration key"))
	ErrClockDelay  = errors.New(f("clock delay invalid"))
	ErrClockSlider = errors.New(f("clock slider invalid"))
)

// ErrRuntime indicates the source location of a runtime fault.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
