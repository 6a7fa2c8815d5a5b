// Package vocab maps modality-local code indices into disjoint ranges of the
// global vocabulary shared with text tokens, and defines the reserved
// delimiter ids that mark modality segment boundaries.
package vocab

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Modality identifies a non-text codebook modality.
type Modality int

const (
	Image Modality = iota
	Speech
)

const modalityCount = 2

func (m Modality) String() string {
	switch m {
	case Image:
		return "image"
	case Speech:
		return "speech"
	}
	return fmt.Sprintf("modality(%d)", int(m))
}

// Range is a contiguous block of global ids assigned to one codebook.
type Range struct {
	Offset int64 `json:"offset"`
	Size   int64 `json:"size"`
}

func (r Range) contains(id int64) bool {
	return id >= r.Offset && id < r.Offset+r.Size
}

// Delimiters are the reserved begin/end ids of one modality.
type Delimiters struct {
	Begin int64 `json:"begin"`
	End   int64 `json:"end"`
}

// Config fixes the vocabulary layout. It is supplied at process
// configuration time; the values are load-bearing for interoperability with a
// specific pretrained sequence model and are never inferred.
type Config struct {
	TextSize         int64      `json:"text_size"`
	Image            Range      `json:"image"`
	Speech           Range      `json:"speech"`
	ImageDelimiters  Delimiters `json:"image_delimiters"`
	SpeechDelimiters Delimiters `json:"speech_delimiters"`
}

// DefaultConfig returns the layout used by the tests and examples: a 32000
// token text vocabulary, four delimiter ids directly after it, then the image
// and speech code ranges.
func DefaultConfig() Config {
	return Config{
		TextSize:         32000,
		ImageDelimiters:  Delimiters{Begin: 32000, End: 32001},
		SpeechDelimiters: Delimiters{Begin: 32002, End: 32003},
		Image:            Range{Offset: 32004, Size: 8192},
		Speech:           Range{Offset: 40196, Size: 1024},
	}
}

// ParseConfig reads a Config from JSON bytes.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := jsoniter.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing vocabulary config: %w", err)
	}
	return cfg, nil
}

// Table is the validated, immutable form of a Config. It is safe for
// concurrent reads; nothing mutates it after construction.
type Table struct {
	textSize int64
	ranges   [modalityCount]Range
	delims   [modalityCount]Delimiters
}

// NewTable validates the config and builds the lookup table. Ranges must be
// pairwise disjoint, disjoint from the text vocabulary and from every
// delimiter id.
func NewTable(cfg Config) (*Table, error) {
	t := &Table{textSize: cfg.TextSize}
	t.ranges[Image] = cfg.Image
	t.ranges[Speech] = cfg.Speech
	t.delims[Image] = cfg.ImageDelimiters
	t.delims[Speech] = cfg.SpeechDelimiters

	if cfg.TextSize <= 0 {
		return nil, fmt.Errorf("text vocabulary size must be positive, got %d", cfg.TextSize)
	}

	var blocks [][2]int64 // half-open [start, end) intervals
	blocks = append(blocks, [2]int64{0, cfg.TextSize})
	for m := Modality(0); m < modalityCount; m++ {
		r := t.ranges[m]
		if r.Size <= 0 {
			return nil, fmt.Errorf("%s codebook range size must be positive, got %d", m, r.Size)
		}
		blocks = append(blocks, [2]int64{r.Offset, r.Offset + r.Size})
		for _, d := range []int64{t.delims[m].Begin, t.delims[m].End} {
			blocks = append(blocks, [2]int64{d, d + 1})
		}
		if t.delims[m].Begin == t.delims[m].End {
			return nil, fmt.Errorf("%s begin and end delimiters collide at %d", m, t.delims[m].Begin)
		}
	}
	for i := range blocks {
		for j := i + 1; j < len(blocks); j++ {
			if blocks[i][0] < blocks[j][1] && blocks[j][0] < blocks[i][1] {
				return nil, fmt.Errorf("vocabulary blocks [%d,%d) and [%d,%d) overlap",
					blocks[i][0], blocks[i][1], blocks[j][0], blocks[j][1])
			}
		}
	}
	return t, nil
}

// TextSize returns the size of the text vocabulary.
func (t *Table) TextSize() int64 {
	return t.textSize
}

// CodebookSize returns the number of codes registered for a modality.
func (t *Table) CodebookSize(m Modality) int64 {
	return t.ranges[m].Size
}

// ToGlobal maps a modality-local code index to its global id.
func (t *Table) ToGlobal(code int, m Modality) (int64, error) {
	r := t.ranges[m]
	if code < 0 || int64(code) >= r.Size {
		return 0, &RangeOverflowError{Code: code, Modality: m, Size: r.Size}
	}
	return r.Offset + int64(code), nil
}

// ToLocal maps a global id back to its modality-local code index. It fails
// for ids that fall in no registered codebook range; delimiter and text ids
// are not codes and are rejected here.
func (t *Table) ToLocal(id int64) (int, Modality, error) {
	for m := Modality(0); m < modalityCount; m++ {
		if t.ranges[m].contains(id) {
			return int(id - t.ranges[m].Offset), m, nil
		}
	}
	return 0, 0, &UnknownTokenError{ID: id}
}

// IsText reports whether a global id belongs to the text vocabulary.
func (t *Table) IsText(id int64) bool {
	return id >= 0 && id < t.textSize
}

// Begin returns the begin delimiter id of a modality.
func (t *Table) Begin(m Modality) int64 {
	return t.delims[m].Begin
}

// End returns the end delimiter id of a modality.
func (t *Table) End(m Modality) int64 {
	return t.delims[m].End
}

// DelimiterOf reports whether id is a reserved delimiter, and if so for which
// modality and whether it marks a segment start.
func (t *Table) DelimiterOf(id int64) (m Modality, begin bool, ok bool) {
	for m := Modality(0); m < modalityCount; m++ {
		switch id {
		case t.delims[m].Begin:
			return m, true, true
		case t.delims[m].End:
			return m, false, true
		}
	}
	return 0, false, false
}

// RangeOverflowError reports a local code outside its modality's codebook.
type RangeOverflowError struct {
	Code     int
	Modality Modality
	Size     int64
}

func (e *RangeOverflowError) Error() string {
	return fmt.Sprintf("code %d out of range for %s codebook of size %d", e.Code, e.Modality, e.Size)
}

// UnknownTokenError reports a global id that falls in no registered range.
// It indicates a configuration or model-vocabulary mismatch.
type UnknownTokenError struct {
	ID int64
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("global id %d is not in any registered vocabulary range", e.ID)
}
