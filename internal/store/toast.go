package store

import "github.com/sirupsen/logrus"

type ToastVariant string

const (
	ToastDefault     ToastVariant = "default"
	ToastDestructive ToastVariant = "destructive"
)

type Toast struct {
	Title       string
	Description string
	Variant     ToastVariant
}

// Toaster surfaces user-facing messages. Failures are reported here and
// never returned as fatal.
type Toaster interface {
	Toast(t Toast)
}

// LogToaster writes toasts to the log.
type LogToaster struct{}

func (LogToaster) Toast(t Toast) {
	entry := logrus.WithField("toast", t.Title)
	if t.Variant == ToastDestructive {
		entry.Warn(t.Description)
		return
	}
	entry.Info(t.Description)
}
