package prompt

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modalityml/omnitok/vocab"
)

// byteTextEncoder tokenizes one id per byte, which keeps test prompts easy to
// reconstruct by hand.
type byteTextEncoder struct{}

func (byteTextEncoder) Encode(s string) ([]int64, error) {
	ids := make([]int64, len(s))
	for i := 0; i < len(s); i++ {
		ids[i] = int64(s[i])
	}
	return ids, nil
}

func (byteTextEncoder) Decode(ids []int64) (string, error) {
	out := make([]byte, len(ids))
	for i, id := range ids {
		out[i] = byte(id)
	}
	return string(out), nil
}

type fixedEncoder struct {
	codes []int
}

func (f fixedEncoder) Encode(_ image.Image) ([]int, error) {
	return f.codes, nil
}

type fixedSpeechEncoder struct {
	codes []int
}

func (f fixedSpeechEncoder) Encode(_ []float32) ([]int, error) {
	return f.codes, nil
}

func testRenderer(t *testing.T) *Renderer {
	table, err := vocab.NewTable(vocab.DefaultConfig())
	require.NoError(t, err)
	return &Renderer{
		Text:   byteTextEncoder{},
		Image:  fixedEncoder{codes: []int{3, 1}},
		Speech: fixedSpeechEncoder{codes: []int{5}},
		Vocab:  table,
	}
}

func textIDs(s string) []int64 {
	ids, _ := byteTextEncoder{}.Encode(s)
	return ids
}

func TestRenderStandard(t *testing.T) {
	r := testRenderer(t)
	conv := Conversation{
		Mode: ModeStandard,
		Messages: []Message{
			{Role: RoleUser, Segments: []Segment{
				Text("hi"),
				Image(image.NewRGBA(image.Rect(0, 0, 1, 1))),
			}},
		},
	}

	ids, err := r.Render(conv)
	require.NoError(t, err)

	var want []int64
	want = append(want, textIDs("<|im_start|>user\n")...)
	want = append(want, textIDs("hi")...)
	want = append(want, 32000, 32004+3, 32004+1, 32001)
	want = append(want, textIDs("<|im_end|>\n")...)
	want = append(want, textIDs("<|im_start|>assistant\n")...)
	assert.Equal(t, want, ids)
}

func TestRenderVoicePrependsPreamble(t *testing.T) {
	r := testRenderer(t)
	conv := Conversation{
		Mode: ModeVoice,
		Messages: []Message{
			{Role: RoleUser, Segments: []Segment{Speech([]float32{0.1, 0.2})}},
		},
	}

	ids, err := r.Render(conv)
	require.NoError(t, err)

	var want []int64
	want = append(want, textIDs("<|im_start|>system\nThis is a voice conversation. Respond with speech.<|im_end|>\n")...)
	want = append(want, textIDs("[user]: ")...)
	want = append(want, 32002, 40196+5, 32003)
	want = append(want, textIDs(" <eot>\n")...)
	want = append(want, textIDs("[assistant]: ")...)
	assert.Equal(t, want, ids)
}

func TestRenderIsDeterministic(t *testing.T) {
	r := testRenderer(t)
	conv := Conversation{
		Mode: ModeStandard,
		Messages: []Message{
			{Role: RoleSystem, Segments: []Segment{Text("be brief")}},
			{Role: RoleUser, Segments: []Segment{Text("ok"), Speech([]float32{1})}},
		},
	}

	first, err := r.Render(conv)
	require.NoError(t, err)
	second, err := r.Render(conv)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderUnsupportedMode(t *testing.T) {
	r := testRenderer(t)
	conv := Conversation{
		Mode: Mode(9),
		Messages: []Message{
			{Role: RoleUser, Segments: []Segment{Text("hi")}},
		},
	}

	_, err := r.Render(conv)
	var modeErr *UnsupportedModeError
	require.ErrorAs(t, err, &modeErr)
	assert.Equal(t, Mode(9), modeErr.Mode)
}

func TestConversationValidate(t *testing.T) {
	tests := []struct {
		name string
		conv Conversation
	}{
		{"no messages", Conversation{}},
		{"unknown role", Conversation{Messages: []Message{
			{Role: "narrator", Segments: []Segment{Text("hi")}},
		}}},
		{"no segments", Conversation{Messages: []Message{
			{Role: RoleUser},
		}}},
		{"nil image", Conversation{Messages: []Message{
			{Role: RoleUser, Segments: []Segment{{Type: SegmentImage}}},
		}}},
		{"empty speech", Conversation{Messages: []Message{
			{Role: RoleUser, Segments: []Segment{{Type: SegmentSpeech}}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conv.Validate()
			var malErr *MalformedConversationError
			assert.True(t, errors.As(err, &malErr), "got %v", err)
		})
	}

	valid := Conversation{Messages: []Message{
		{Role: RoleAssistant, Segments: []Segment{Text("")}},
	}}
	assert.NoError(t, valid.Validate())
}
