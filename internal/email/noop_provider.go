package email

import "realty_backend/internal/logger"

// NoopProvider logs instead of sending. Used when SMTP is not configured.
type NoopProvider struct{}

func NewNoopProvider() *NoopProvider {
	return &NoopProvider{}
}

func (p *NoopProvider) Send(to, subject, body string) error {
	logger.Info("email suppressed (no SMTP configured)", "to", to, "subject", subject)
	return nil
}
