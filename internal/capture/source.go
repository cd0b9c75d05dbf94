// Package capture delivers detector output to the frame worker, one frame
// at a time.
package capture

import (
	"context"

	"plate-stabilizer/internal/domain/plate"
)

// Source yields frames until it returns io.EOF.
type Source interface {
	Read(ctx context.Context) (plate.Frame, error)
	Close() error
}
