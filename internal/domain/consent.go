package domain

// ConsentChoice is the user's answer to the one-time remember-me prompt.
type ConsentChoice string

const (
	// ConsentRemember extends the session to the long lifetime.
	ConsentRemember ConsentChoice = "remember"
	// ConsentForget keeps the short session lifetime. Only an explicit
	// negative answer lands here.
	ConsentForget ConsentChoice = "forget"
	// ConsentDismissed means the prompt was closed without choosing. The
	// prompt advertises remembering as its default, so dismissal counts as
	// consent to the extended lifetime.
	ConsentDismissed ConsentChoice = "dismissed"
)

// Extends reports whether the choice selects the extended session lifetime.
func (c ConsentChoice) Extends() bool {
	return c != ConsentForget
}
