package email

// Provider sends transactional mail (moderation decisions, receipts).
type Provider interface {
	Send(to, subject, body string) error
}
