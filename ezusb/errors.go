package ezusb

import "fmt"

// Stage identifies which part of the install sequence a transfer belongs to.
type Stage string

const (
	StageResetAssert  Stage = "reset-assert"
	StageUpload       Stage = "upload"
	StageResetRelease Stage = "reset-release"
)

// TransferError indicates that a control transfer failed. The install is
// aborted at the first failed transfer: the device may hold anything between
// none and all of the image, so the only recovery is a re-scan.
type TransferError struct {
	// Stage is the install stage the failed transfer belonged to
	Stage Stage

	// Addr is the device address the transfer was directed at
	Addr uint32

	// Err is the underlying transport error
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("control transfer failed during %s at 0x%08X: %v", e.Stage, e.Addr, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
