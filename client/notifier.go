package client

// Notifier receives the user-visible outcome of every session transition.
// Implementations surface toasts, log lines, whatever the host UI wants.
type Notifier interface {
	Success(message string)
	Error(message string)
	Info(message string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
func (nopNotifier) Info(string)    {}

// normalizeNotifier guards against nil so callers never have to check.
func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
