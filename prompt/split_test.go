package prompt

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modalityml/omnitok/vocab"
)

func testTable(t *testing.T) *vocab.Table {
	table, err := vocab.NewTable(vocab.DefaultConfig())
	require.NoError(t, err)
	return table
}

func TestSplitMixedSequence(t *testing.T) {
	table := testTable(t)
	ids := []int64{
		5, 6, // text
		32000, 32004 + 1, 32004 + 2, 32001, // image segment, codes 1 2
		7, // text
		32002, 40196 + 9, 32003, // speech segment, code 9
	}

	runs, err := Split(ids, table)
	require.NoError(t, err)
	require.Len(t, runs, 4)

	assert.True(t, runs[0].IsText)
	assert.Equal(t, []int64{5, 6}, runs[0].TextIDs)

	assert.False(t, runs[1].IsText)
	assert.Equal(t, vocab.Image, runs[1].Modality)
	assert.Equal(t, []int{1, 2}, runs[1].Codes)

	assert.True(t, runs[2].IsText)
	assert.Equal(t, []int64{7}, runs[2].TextIDs)

	assert.Equal(t, vocab.Speech, runs[3].Modality)
	assert.Equal(t, []int{9}, runs[3].Codes)
}

func TestSplitEmptySequence(t *testing.T) {
	runs, err := Split(nil, testTable(t))
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSplitEmptySegment(t *testing.T) {
	runs, err := Split([]int64{32000, 32001}, testTable(t))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, vocab.Image, runs[0].Modality)
	assert.Empty(t, runs[0].Codes)
}

func TestSplitTruncatedSegmentKeepsCompletedRuns(t *testing.T) {
	table := testTable(t)
	ids := []int64{
		5,                 // text
		32002, 40196 + 1, // speech begin, one code, no end
	}

	runs, err := Split(ids, table)
	var truncErr *TruncatedSegmentError
	require.ErrorAs(t, err, &truncErr)
	assert.Equal(t, vocab.Speech, truncErr.Modality)
	assert.Equal(t, 1, truncErr.Start)

	require.Len(t, runs, 1)
	assert.True(t, runs[0].IsText)
	assert.Equal(t, []int64{5}, runs[0].TextIDs)
}

func TestSplitRejectsMalformedIDs(t *testing.T) {
	table := testTable(t)
	tests := []struct {
		name string
		ids  []int64
	}{
		{"stray end delimiter", []int64{32001}},
		{"bare modality code", []int64{32004 + 1}},
		{"cross-modality code in segment", []int64{32000, 40196 + 1, 32001}},
		{"nested begin delimiter", []int64{32000, 32000, 32001}},
		{"wrong end delimiter", []int64{32000, 32004 + 1, 32003}},
		{"unassigned id", []int64{99999}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.ids, table)
			var unknownErr *vocab.UnknownTokenError
			assert.ErrorAs(t, err, &unknownErr)
		})
	}
}

func TestRenderThenSplitRecoversSegments(t *testing.T) {
	r := testRenderer(t)
	conv := Conversation{
		Mode: ModeStandard,
		Messages: []Message{
			{Role: RoleUser, Segments: []Segment{
				Text("describe"),
				Image(image.NewRGBA(image.Rect(0, 0, 2, 2))),
				Speech([]float32{0.5}),
			}},
		},
	}

	ids, err := r.Render(conv)
	require.NoError(t, err)

	runs, err := Split(ids, r.Vocab)
	require.NoError(t, err)

	var imageRuns, speechRuns []Run
	for _, run := range runs {
		if run.IsText {
			continue
		}
		switch run.Modality {
		case vocab.Image:
			imageRuns = append(imageRuns, run)
		case vocab.Speech:
			speechRuns = append(speechRuns, run)
		}
	}
	require.Len(t, imageRuns, 1)
	assert.Equal(t, []int{3, 1}, imageRuns[0].Codes)
	require.Len(t, speechRuns, 1)
	assert.Equal(t, []int{5}, speechRuns[0].Codes)
}
