package capture

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"plate-stabilizer/internal/domain/plate"
)

const maxFrameLine = 4 * 1024 * 1024

// ReplaySource reads recorded detector output: one JSON frame per line.
type ReplaySource struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
	next    int64
}

// NewReplaySource wraps r. If r is an io.Closer it is closed with the source.
func NewReplaySource(r io.Reader) *ReplaySource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxFrameLine)
	src := &ReplaySource{scanner: sc}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}
	return src
}

func (s *ReplaySource) Read(ctx context.Context) (plate.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return plate.Frame{}, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return plate.Frame{}, fmt.Errorf("read frame: %w", err)
			}
			return plate.Frame{}, io.EOF
		}
		s.line++

		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var f plate.Frame
		if err := json.Unmarshal(line, &f); err != nil {
			return plate.Frame{}, fmt.Errorf("decode frame on line %d: %w", s.line, err)
		}
		s.next++
		if f.Index == 0 {
			f.Index = s.next
		}
		if f.CapturedAt.IsZero() {
			f.CapturedAt = time.Now()
		}
		return f, nil
	}
}

func (s *ReplaySource) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}
