package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameRoundTripKeepsBoundaries(t *testing.T) {
	var buf bytes.Buffer
	msgs := [][]byte{[]byte("a"), bytes.Repeat([]byte{7}, 4096), []byte("tail")}
	for _, m := range msgs {
		if err := WriteFrame(&buf, m); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	for i, want := range msgs {
		got, err := ReadFrame(&buf, DefaultMaxFrame)
		if err != nil {
			t.Fatalf("frame %d: ReadFrame: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d: got %d bytes, want %d", i, len(got), len(want))
		}
	}
	if _, err := ReadFrame(&buf, DefaultMaxFrame); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after last frame, got %v", err)
	}
}

// 一次 Read 只返回一个字节时也必须拼出完整帧
func TestReadFrameFragmented(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("fragmented payload")); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrame(&oneByteReader{r: &buf}, DefaultMaxFrame)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(got) != "fragmented payload" {
		t.Fatalf("got %q", got)
	}
}

func TestReadFrameRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		max  int
		want error
	}{
		{"empty", []byte{0, 0, 0, 0}, 16, ErrEmptyFrame},
		{"too large", []byte{0, 0, 0, 17}, 16, ErrFrameTooLarge},
		{"truncated payload", []byte{0, 0, 0, 5, 'a', 'b'}, 16, io.ErrUnexpectedEOF},
		{"truncated header", []byte{0, 0}, 16, io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tt.raw), tt.max)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriteFrameRejectsEmpty(t *testing.T) {
	if err := WriteFrame(io.Discard, nil); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("got %v", err)
	}
}

type oneByteReader struct{ r io.Reader }

func (o *oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}
