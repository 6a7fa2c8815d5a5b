package omnitok

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/modalityml/omnitok/codecs"
	"github.com/modalityml/omnitok/prompt"
	"github.com/modalityml/omnitok/util"
)

// WriteSegments persists decoded segments under dir, one file per segment
// named {sampleID}_{kind}_{i} where i is the segment's position in the
// decoded sequence. Images become PNG, speech becomes 16-bit mono WAV at the
// given sample rate, text becomes plain UTF-8. It returns the written paths
// in segment order.
func WriteSegments(dir string, sampleID string, segments []prompt.Segment, sampleRate int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(segments))
	for i, seg := range segments {
		var path string
		switch seg.Type {
		case prompt.SegmentText:
			path = util.PathJoinSafe(dir, fmt.Sprintf("%s_text_%d.txt", sampleID, i))
			if err := util.WriteFileBytes(path, []byte(seg.Text)); err != nil {
				return nil, err
			}
		case prompt.SegmentImage:
			path = util.PathJoinSafe(dir, fmt.Sprintf("%s_image_%d.png", sampleID, i))
			var buf bytes.Buffer
			if err := png.Encode(&buf, seg.Image); err != nil {
				return nil, err
			}
			if err := util.WriteFileBytes(path, buf.Bytes()); err != nil {
				return nil, err
			}
		case prompt.SegmentSpeech:
			path = util.PathJoinSafe(dir, fmt.Sprintf("%s_speech_%d.wav", sampleID, i))
			if err := writeWAVFile(path, seg.Speech, sampleRate); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("segment %d has unknown type %d", i, seg.Type)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeWAVFile goes through os directly: the WAV encoder needs a seekable
// writer to patch up the header on close.
func writeWAVFile(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = codecs.WriteWAV(f, samples, sampleRate); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}
