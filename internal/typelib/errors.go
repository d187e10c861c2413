package typelib

import (
	"errors"
	"fmt"
)

// Returned by bridges for indices and positions outside the table.
var ErrIndexOutOfRange = errors.New("index out of range")

// A failure of the introspection bridge while reading a single entry.
type BridgeError struct {
	Library  string // name of the library being read
	Index    int    // entry index
	Position int    // member position, -1 when not reading a member
	Op       string // bridge operation that failed
	Err      error  // error reported by the bridge
}

func (e *BridgeError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s: entry %d: %s at position %d: %v", e.Library, e.Index, e.Op, e.Position, e.Err)
	}
	return fmt.Sprintf("%s: entry %d: %s: %v", e.Library, e.Index, e.Op, e.Err)
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

func newBridgeError(library *Library, index int, position int, op string, err error) error {
	return &BridgeError{
		Library:  library.Name(),
		Index:    index,
		Position: position,
		Op:       op,
		Err:      err,
	}
}
