package cli

import "github.com/redcanaryco/vscode-attack/pkg/dataset"

// notifier surfaces dataset freshness notices on the terminal.
type notifier struct{}

func (notifier) Info(msg string)  { printInfo("%s", msg) }
func (notifier) Warn(msg string)  { printWarning("%s", msg) }
func (notifier) Error(msg string) { printError("%s", msg) }

var _ dataset.Notifier = notifier{}
