package placegate

import (
	"fmt"
)

// SnapshotError reports a failed full-snapshot save. Exactly one of
// EncodeErr/StoreErr is set: a save fails either while encoding the
// snapshot or while writing the encoded blob, never both.
type SnapshotError struct {
	EncodeErr error
	StoreErr  error
}

func (e *SnapshotError) Error() string {
	switch {
	case e.EncodeErr != nil && e.StoreErr != nil:
		return fmt.Sprintf("snapshot save failed: encode and store failed: encode=%v; store=%v",
			e.EncodeErr, e.StoreErr)
	case e.EncodeErr != nil:
		return fmt.Sprintf("snapshot save: encode failed: %v", e.EncodeErr)
	case e.StoreErr != nil:
		return fmt.Sprintf("snapshot save: store failed: %v", e.StoreErr)
	default:
		return "snapshot save: unknown error"
	}
}

func (e *SnapshotError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.EncodeErr != nil {
		errs = append(errs, e.EncodeErr)
	}
	if e.StoreErr != nil {
		errs = append(errs, e.StoreErr)
	}
	return errs
}
