// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"
)

// streamReadSize is how many bytes are pulled from the wire per read.
const streamReadSize = 4096

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader incrementally decodes a chunked UTF-8 text body. Network
// chunks can split multi-byte runes, so a partial rune at the end of a read
// is held back and prepended to the next one.
type StreamReader struct {
	reader io.Reader

	// Trailing bytes of an incomplete rune from the previous read.
	pending []byte

	accumulator strings.Builder
	chunkCount  int
}

// NewStreamReader creates a stream reader over the response body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: r}
}

// Process reads the stream until EOF, calling the callback with each decoded
// text chunk in arrival order. Blocks until the stream is complete or the
// context is cancelled.
func (s *StreamReader) Process(ctx context.Context, callback func(chunk string)) error {
	buf := make([]byte, streamReadSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := s.reader.Read(buf)
		if n > 0 {
			chunk := s.decode(buf[:n])
			if chunk != "" {
				s.accumulator.WriteString(chunk)
				s.chunkCount++
				callback(chunk)
			}
		}
		if err != nil {
			if err == io.EOF {
				// A dangling partial rune at EOF means a truncated
				// stream; the bytes are dropped rather than emitted
				// as replacement characters.
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// decode joins held-back bytes with the new read and returns the longest
// prefix that is complete UTF-8, holding back any trailing partial rune.
func (s *StreamReader) decode(data []byte) string {
	if len(s.pending) > 0 {
		data = append(s.pending, data...)
		s.pending = nil
	}

	// Walk back over at most a rune's worth of bytes looking for the start
	// of an incomplete trailing sequence.
	cut := len(data)
	for back := 1; back <= utf8.UTFMax && back <= len(data); back++ {
		b := data[len(data)-back]
		if utf8.RuneStart(b) {
			if !utf8.FullRune(data[len(data)-back:]) {
				cut = len(data) - back
			}
			break
		}
	}
	if cut < len(data) {
		s.pending = append([]byte(nil), data[cut:]...)
	}
	return string(data[:cut])
}

// Accumulated returns all text decoded so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// ChunkCount returns the number of non-empty chunks delivered.
func (s *StreamReader) ChunkCount() int {
	return s.chunkCount
}
