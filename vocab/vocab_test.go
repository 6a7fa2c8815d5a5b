package vocab

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBijection(t *testing.T) {
	table, err := NewTable(DefaultConfig())
	require.NoError(t, err)

	for _, m := range []Modality{Image, Speech} {
		size := int(table.CodebookSize(m))
		for _, code := range []int{0, 1, size / 2, size - 1} {
			id, err := table.ToGlobal(code, m)
			require.NoError(t, err)

			gotCode, gotModality, err := table.ToLocal(id)
			require.NoError(t, err)
			assert.Equal(t, code, gotCode)
			assert.Equal(t, m, gotModality)
		}
	}
}

func TestRangeOverflow(t *testing.T) {
	table, err := NewTable(DefaultConfig())
	require.NoError(t, err)

	// one past the last valid index must fail, not clamp
	_, err = table.ToGlobal(int(table.CodebookSize(Image)), Image)
	var overflow *RangeOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, Image, overflow.Modality)

	_, err = table.ToGlobal(-1, Speech)
	assert.Error(t, err)
}

func TestUnknownToken(t *testing.T) {
	table, err := NewTable(DefaultConfig())
	require.NoError(t, err)

	for _, id := range []int64{-1, 12, table.Begin(Image), table.End(Speech), 1 << 40} {
		_, _, err := table.ToLocal(id)
		var unknown *UnknownTokenError
		if !errors.As(err, &unknown) {
			t.Fatalf("ToLocal(%d): expected UnknownTokenError, got %v", id, err)
		}
	}
}

func TestDisjointness(t *testing.T) {
	cfg := DefaultConfig()
	table, err := NewTable(cfg)
	require.NoError(t, err)

	seen := map[int64]string{}
	mark := func(id int64, what string) {
		if prev, ok := seen[id]; ok {
			t.Fatalf("id %d assigned to both %s and %s", id, prev, what)
		}
		seen[id] = what
	}
	for id := int64(0); id < cfg.TextSize; id += cfg.TextSize - 1 {
		mark(id, "text")
	}
	for _, m := range []Modality{Image, Speech} {
		mark(table.Begin(m), m.String()+" begin")
		mark(table.End(m), m.String()+" end")
		first, err := table.ToGlobal(0, m)
		require.NoError(t, err)
		last, err := table.ToGlobal(int(table.CodebookSize(m))-1, m)
		require.NoError(t, err)
		mark(first, m.String())
		mark(last, m.String())
	}
}

func TestNewTableRejectsOverlap(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"image range overlaps text", func(c *Config) { c.Image.Offset = 100 }},
		{"speech range overlaps image", func(c *Config) { c.Speech.Offset = c.Image.Offset + 1 }},
		{"delimiter inside code range", func(c *Config) { c.ImageDelimiters.Begin = c.Speech.Offset }},
		{"delimiters collide", func(c *Config) { c.SpeechDelimiters.End = c.SpeechDelimiters.Begin }},
		{"zero size range", func(c *Config) { c.Speech.Size = 0 }},
		{"zero text vocabulary", func(c *Config) { c.TextSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewTable(cfg)
			assert.Error(t, err)
		})
	}
}

func TestDelimiterOf(t *testing.T) {
	table, err := NewTable(DefaultConfig())
	require.NoError(t, err)

	m, begin, ok := table.DelimiterOf(table.Begin(Speech))
	require.True(t, ok)
	assert.Equal(t, Speech, m)
	assert.True(t, begin)

	m, begin, ok = table.DelimiterOf(table.End(Image))
	require.True(t, ok)
	assert.Equal(t, Image, m)
	assert.False(t, begin)

	_, _, ok = table.DelimiterOf(5)
	assert.False(t, ok)
}

func TestParseConfig(t *testing.T) {
	data := []byte(`{
		"text_size": 1000,
		"image": {"offset": 1010, "size": 16},
		"speech": {"offset": 1026, "size": 8},
		"image_delimiters": {"begin": 1000, "end": 1001},
		"speech_delimiters": {"begin": 1002, "end": 1003}
	}`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cfg.TextSize)

	table, err := NewTable(cfg)
	require.NoError(t, err)
	id, err := table.ToGlobal(3, Speech)
	require.NoError(t, err)
	assert.Equal(t, int64(1029), id)
}
