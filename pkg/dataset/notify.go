package dataset

import "github.com/charmbracelet/log"

// Notifier surfaces user-facing notices about the dataset.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// LogNotifier writes notices to a logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) logger() *log.Logger {
	if n.Logger == nil {
		return log.Default()
	}
	return n.Logger
}

func (n LogNotifier) Info(msg string)  { n.logger().Info(msg) }
func (n LogNotifier) Warn(msg string)  { n.logger().Warn(msg) }
func (n LogNotifier) Error(msg string) { n.logger().Error(msg) }
