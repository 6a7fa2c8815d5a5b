// Package prompt serializes multimodal conversations into flat token
// sequences for the sequence model, and splits generated sequences back into
// per-modality segments.
package prompt

import (
	"fmt"
	"image"

	"github.com/modalityml/omnitok/chatTemplates"
	"github.com/modalityml/omnitok/vocab"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Mode selects the conversation framing. The set of modes is closed; adding
// one means teaching every switch below about it.
type Mode int

const (
	ModeStandard Mode = iota
	ModeVoice
)

func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeVoice:
		return "voice"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// SegmentType discriminates the payload of a Segment.
type SegmentType int

const (
	SegmentText SegmentType = iota
	SegmentImage
	SegmentSpeech
)

// Segment is one homogeneous piece of message content. Exactly one payload
// field is set, selected by Type.
type Segment struct {
	Type   SegmentType
	Text   string
	Image  image.Image
	Speech []float32
}

// Text builds a text segment.
func Text(s string) Segment {
	return Segment{Type: SegmentText, Text: s}
}

// Image builds an image segment.
func Image(img image.Image) Segment {
	return Segment{Type: SegmentImage, Image: img}
}

// Speech builds a speech segment from mono float32 PCM.
func Speech(samples []float32) Segment {
	return Segment{Type: SegmentSpeech, Speech: samples}
}

// Message is one conversation turn.
type Message struct {
	Role     Role
	Segments []Segment
}

// Conversation is an ordered list of turns under one mode.
type Conversation struct {
	Mode     Mode
	Messages []Message
}

// Validate checks the conversation's structure before any model work runs.
func (c Conversation) Validate() error {
	if len(c.Messages) == 0 {
		return &MalformedConversationError{Reason: "conversation has no messages"}
	}
	for i, msg := range c.Messages {
		if !msg.Role.Valid() {
			return &MalformedConversationError{Reason: fmt.Sprintf("message %d has unknown role %q", i, msg.Role)}
		}
		if len(msg.Segments) == 0 {
			return &MalformedConversationError{Reason: fmt.Sprintf("message %d has no segments", i)}
		}
		for j, seg := range msg.Segments {
			switch seg.Type {
			case SegmentText:
			case SegmentImage:
				if seg.Image == nil {
					return &MalformedConversationError{Reason: fmt.Sprintf("message %d segment %d has no image", i, j)}
				}
			case SegmentSpeech:
				if len(seg.Speech) == 0 {
					return &MalformedConversationError{Reason: fmt.Sprintf("message %d segment %d has no samples", i, j)}
				}
			default:
				return &MalformedConversationError{Reason: fmt.Sprintf("message %d segment %d has unknown type %d", i, j, seg.Type)}
			}
		}
	}
	return nil
}

// TextEncoder tokenizes text into global ids.
type TextEncoder interface {
	Encode(text string) ([]int64, error)
}

// ImageEncoder quantizes an image into modality-local codes.
type ImageEncoder interface {
	Encode(img image.Image) ([]int, error)
}

// SpeechEncoder quantizes a waveform into modality-local codes.
type SpeechEncoder interface {
	Encode(samples []float32) ([]int, error)
}

// Renderer flattens a conversation into one global-id sequence. Render is
// pure: the same conversation always yields the same sequence, up to the
// determinism of the underlying encoders.
type Renderer struct {
	Text   TextEncoder
	Image  ImageEncoder
	Speech SpeechEncoder
	Vocab  *vocab.Table
}

func chromeFor(m Mode) (*chatTemplates.Chrome, error) {
	switch m {
	case ModeStandard:
		return chatTemplates.Standard(), nil
	case ModeVoice:
		return chatTemplates.Voice(), nil
	default:
		return nil, &UnsupportedModeError{Mode: m}
	}
}

// Render validates the conversation and serializes it: mode preamble, then
// per message the role header, each segment (modality segments wrapped in
// their begin/end delimiters), the footer, and finally the generation prompt.
func (r *Renderer) Render(conv Conversation) ([]int64, error) {
	if err := conv.Validate(); err != nil {
		return nil, err
	}
	chrome, err := chromeFor(conv.Mode)
	if err != nil {
		return nil, err
	}

	var ids []int64
	appendText := func(s string) error {
		if s == "" {
			return nil
		}
		textIDs, encErr := r.Text.Encode(s)
		if encErr != nil {
			return encErr
		}
		ids = append(ids, textIDs...)
		return nil
	}

	if err = appendText(chrome.Preamble); err != nil {
		return nil, err
	}
	for _, msg := range conv.Messages {
		header, headerErr := chrome.RenderHeader(string(msg.Role))
		if headerErr != nil {
			return nil, headerErr
		}
		if err = appendText(header); err != nil {
			return nil, err
		}
		for _, seg := range msg.Segments {
			switch seg.Type {
			case SegmentText:
				if err = appendText(seg.Text); err != nil {
					return nil, err
				}
			case SegmentImage:
				codes, encErr := r.Image.Encode(seg.Image)
				if encErr != nil {
					return nil, encErr
				}
				if ids, err = r.appendSegment(ids, codes, vocab.Image); err != nil {
					return nil, err
				}
			case SegmentSpeech:
				codes, encErr := r.Speech.Encode(seg.Speech)
				if encErr != nil {
					return nil, encErr
				}
				if ids, err = r.appendSegment(ids, codes, vocab.Speech); err != nil {
					return nil, err
				}
			}
		}
		if err = appendText(chrome.Footer); err != nil {
			return nil, err
		}
	}
	if err = appendText(chrome.GenerationPrompt); err != nil {
		return nil, err
	}
	return ids, nil
}

// appendSegment emits a delimiter-wrapped modality segment.
func (r *Renderer) appendSegment(ids []int64, codes []int, m vocab.Modality) ([]int64, error) {
	ids = append(ids, r.Vocab.Begin(m))
	for _, code := range codes {
		id, err := r.Vocab.ToGlobal(code, m)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return append(ids, r.Vocab.End(m)), nil
}
