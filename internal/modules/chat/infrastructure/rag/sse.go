package rag

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	FrameStart   = "start"
	FrameChunk   = "chunk"
	FrameSources = "sources"
	FrameDone    = "done"
	FrameError   = "error"
)

// Frame is one JSON payload of the upstream event stream.
type Frame struct {
	Type    string   `json:"type"`
	Content string   `json:"content,omitempty"`
	Sources []string `json:"sources,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ErrMalformedFrame wraps payloads that are not a known frame. The stream is
// still usable after it.
var ErrMalformedFrame = errors.New("malformed upstream frame")

// Decoder splits a text/event-stream body into the data payloads of its events.
// Multi-line data fields are joined with "\n"; comments and other fields are ignored.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next non-empty event payload, or io.EOF when the body ends.
func (d *Decoder) Next() ([]byte, error) {
	var (
		buf     bytes.Buffer
		hasData bool
	)
	for {
		line, err := d.r.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimRight(line, "\r\n")
			if line == "" {
				if hasData {
					return buf.Bytes(), nil
				}
			} else if data, ok := strings.CutPrefix(line, "data:"); ok {
				if hasData {
					buf.WriteByte('\n')
				}
				buf.WriteString(strings.TrimPrefix(data, " "))
				hasData = true
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) && hasData {
				// body ended without the trailing blank line
				return buf.Bytes(), nil
			}
			return nil, err
		}
	}
}

// ParseFrame decodes a payload into a Frame.
func ParseFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	switch f.Type {
	case FrameStart, FrameChunk, FrameSources, FrameDone, FrameError:
		return f, nil
	default:
		return Frame{}, fmt.Errorf("%w: unknown type %q", ErrMalformedFrame, f.Type)
	}
}
