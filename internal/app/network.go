package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jostojic/quotescreen/internal/region"
)

// NetworkStatus is what the control surface may reveal about the saved
// network. The password never leaves the region.
type NetworkStatus struct {
	SSID       string
	Configured bool
}

// SaveCredentials validates and writes the network credentials to the
// region header. Values longer than region.MaxCredentialLen are rejected.
func (s *Service) SaveCredentials(ctx context.Context, c region.Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := region.WriteCredentials(s.medium, c); err != nil {
		s.metrics.StorageError()
		return fmt.Errorf("saving credentials: %w", err)
	}

	s.logger.InfoContext(ctx, "network credentials saved", slog.Any("credentials", c))

	return nil
}

// Network returns the saved SSID and whether credentials were ever saved.
func (s *Service) Network(ctx context.Context) (NetworkStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, configured, err := region.ReadCredentials(s.medium)
	if err != nil {
		s.metrics.StorageError()
		return NetworkStatus{}, fmt.Errorf("reading credentials: %w", err)
	}

	return NetworkStatus{SSID: c.SSID, Configured: configured}, nil
}
