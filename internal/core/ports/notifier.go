package ports

// Notifier is the fire-and-forget notification sink. Delivery failures are
// the implementation's problem, callers never check them.
type Notifier interface {
	Notify(title, body string)
}
