package prompt

import (
	"github.com/modalityml/omnitok/vocab"
)

// Run is one maximal homogeneous stretch of a generated sequence: either
// consecutive text ids or one delimiter-bounded modality segment with its
// delimiters stripped and ids mapped back to local codes.
type Run struct {
	IsText   bool
	Modality vocab.Modality
	TextIDs  []int64
	Codes    []int
}

// Split partitions a generated id sequence into runs. Delimiters are
// structural: an end with no matching begin, a code outside any segment, or a
// code from another modality inside a segment fails with UnknownTokenError.
// A begin that is never closed returns the runs completed so far together
// with TruncatedSegmentError.
func Split(ids []int64, table *vocab.Table) ([]Run, error) {
	var runs []Run
	var text []int64
	flushText := func() {
		if len(text) > 0 {
			runs = append(runs, Run{IsText: true, TextIDs: text})
			text = nil
		}
	}

	i := 0
	for i < len(ids) {
		id := ids[i]
		if table.IsText(id) {
			text = append(text, id)
			i++
			continue
		}
		m, begin, ok := table.DelimiterOf(id)
		if !ok || !begin {
			// Either a bare modality code or a stray end delimiter;
			// neither is meaningful outside an open segment.
			return nil, &vocab.UnknownTokenError{ID: id}
		}
		flushText()

		start := i
		i++
		var codes []int
		closed := false
		for i < len(ids) {
			id = ids[i]
			if dm, dbegin, dok := table.DelimiterOf(id); dok {
				if dm != m || dbegin {
					return nil, &vocab.UnknownTokenError{ID: id}
				}
				closed = true
				i++
				break
			}
			code, cm, err := table.ToLocal(id)
			if err != nil {
				return nil, err
			}
			if cm != m {
				return nil, &vocab.UnknownTokenError{ID: id}
			}
			codes = append(codes, code)
			i++
		}
		if !closed {
			return runs, &TruncatedSegmentError{Modality: m, Start: start}
		}
		runs = append(runs, Run{Modality: m, Codes: codes})
	}
	flushText()
	return runs, nil
}
