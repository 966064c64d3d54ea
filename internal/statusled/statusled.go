package statusled

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var openLineFn = openLine

// lineDriver is the minimal interface the heartbeat needs from a GPIO
// backend. Close should be best-effort and leave the LED off.
type lineDriver interface {
	SetValue(v int) error
	Close() error
}

type Config struct {
	Enable bool

	// Pin is BCM GPIO numbering.
	Pin int
	// Period is one full on/off cycle.
	Period time.Duration
}

// Service blinks a heartbeat LED while the logger is running. Purely
// observational; LED failures never disturb the logging loop.
type Service struct {
	cfg Config

	mu   sync.Mutex
	line lineDriver

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(cfg Config) *Service {
	if cfg.Pin == 0 {
		cfg.Pin = 17
	}
	if cfg.Period <= 0 {
		cfg.Period = 1 * time.Second
	}
	return &Service{cfg: cfg, stopCh: make(chan struct{})}
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("statusled: service is nil")
	}
	if !s.cfg.Enable {
		return nil
	}

	line, err := openLineFn(s.cfg.Pin)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.line = line
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.blink(ctx, line)
	}()

	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return nil
}

func (s *Service) blink(ctx context.Context, line lineDriver) {
	t := time.NewTicker(s.cfg.Period / 2)
	defer t.Stop()

	v := 1
	_ = line.SetValue(v)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-t.C:
			v = 1 - v
			_ = line.SetValue(v)
		}
	}
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()

	s.mu.Lock()
	line := s.line
	s.line = nil
	s.mu.Unlock()
	if line != nil {
		_ = line.Close()
	}
}
