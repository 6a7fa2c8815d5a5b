package prompt

import (
	"fmt"

	"github.com/modalityml/omnitok/vocab"
)

// UnsupportedModeError reports a Mode value outside the known set.
type UnsupportedModeError struct {
	Mode Mode
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("conversation mode %s is not supported", e.Mode)
}

// MalformedConversationError reports a structurally invalid conversation.
type MalformedConversationError struct {
	Reason string
}

func (e *MalformedConversationError) Error() string {
	return "malformed conversation: " + e.Reason
}

// TruncatedSegmentError reports a modality segment whose begin delimiter was
// never closed before the sequence ended. Segments completed before the
// truncation point are still returned alongside it.
type TruncatedSegmentError struct {
	Modality vocab.Modality
	Start    int
}

func (e *TruncatedSegmentError) Error() string {
	return fmt.Sprintf("%s segment opened at position %d was never closed", e.Modality, e.Start)
}
