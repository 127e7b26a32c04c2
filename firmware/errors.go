package firmware

import (
	"fmt"
	"strings"
)

// SignatureError indicates that a buffer parsed as an FX3 image does not
// start with the expected 'C','Y',*,0xB0 signature.
type SignatureError struct {
	// Got holds the first bytes of the buffer (zero-padded if shorter)
	Got [SignatureLength]byte
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid firmware signature % 02X: want 'C' 'Y' ?? B0", e.Got)
}

// TruncatedError indicates that an FX3 image ended before a segment header
// or a segment's declared payload could be fully read.
type TruncatedError struct {
	// Offset is the byte offset at which the shortage was detected
	Offset int

	// Need is the number of bytes required at Offset
	Need int

	// Have is the number of bytes actually remaining
	Have int

	// Segment is the index of the incomplete segment
	Segment int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("firmware image truncated: segment %d needs %d bytes at offset %d, %d remain",
		e.Segment, e.Need, e.Offset, e.Have)
}

// NotFoundError indicates that a named firmware resource was not found in
// any of the configured search directories.
type NotFoundError struct {
	Name string
	Dirs []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("firmware %q not found in %s", e.Name, strings.Join(e.Dirs, ", "))
}

// TooLargeError indicates that a firmware file exceeds the maximum size
// allowed for its container format.
type TooLargeError struct {
	Name string
	Size int64
	Max  int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("firmware %q is %d bytes, maximum is %d", e.Name, e.Size, e.Max)
}
