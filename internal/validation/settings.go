package validation

import (
	"errors"
	"fmt"
	"sync"

	"plate-stabilizer/internal/domain/plate"
)

var ErrUnknownPattern = errors.New("unknown pattern type")

// Settings holds the process-wide filter configuration. Readers get a copy;
// writers replace the whole value at once.
type Settings struct {
	mu  sync.RWMutex
	cfg plate.FilterConfig
}

func NewSettings(cfg plate.FilterConfig) (*Settings, error) {
	if err := CheckConfig(cfg); err != nil {
		return nil, err
	}
	return &Settings{cfg: cfg}, nil
}

func (s *Settings) Get() plate.FilterConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Settings) Set(cfg plate.FilterConfig) error {
	if err := CheckConfig(cfg); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

func CheckConfig(cfg plate.FilterConfig) error {
	if !cfg.ActivePattern.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPattern, cfg.ActivePattern)
	}
	return nil
}
