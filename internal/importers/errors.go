package importers

import "fmt"

// MalformedRecordError reports an item that lacks a required field. Only the
// affected record is skipped.
type MalformedRecordError struct {
	RecordType string
	Index      int // position among items of RecordType
	ID         string
	Field      string
	Err        error
}

func (e *MalformedRecordError) Error() string {
	ref := fmt.Sprintf("%s #%d", e.RecordType, e.Index)
	if e.ID != "" {
		ref = fmt.Sprintf("%s %s", e.RecordType, e.ID)
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed record %s: %s: %v", ref, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed record %s: missing %s", ref, e.Field)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
