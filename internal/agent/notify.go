package agent

// NotifyLevel is the severity of a transient notification.
type NotifyLevel int

const (
	NotifyInfo NotifyLevel = iota
	NotifySuccess
	NotifyWarning
	NotifyError
)

func (l NotifyLevel) String() string {
	switch l {
	case NotifySuccess:
		return "success"
	case NotifyWarning:
		return "warning"
	case NotifyError:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows short-lived messages next to the transcript (toasts in
// the TUI, styled lines on stderr in the CLI).
type Notifier interface {
	Notify(level NotifyLevel, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(level NotifyLevel, message string)

func (f NotifierFunc) Notify(level NotifyLevel, message string) { f(level, message) }

type nopNotifier struct{}

func (nopNotifier) Notify(NotifyLevel, string) {}
