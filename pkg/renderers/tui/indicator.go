package tui

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Indicator shows progress while a prediction is in flight.
type Indicator interface {
	Start(message string)
	Stop()
}

type spinnerIndicator struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
}

// NewSpinner returns an Indicator backed by briandowns/spinner writing to w.
func NewSpinner(w io.Writer) Indicator {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	return &spinnerIndicator{spinner: s}
}

func (i *spinnerIndicator) Start(message string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.spinner.Suffix = " " + message
	i.spinner.Start()
}

func (i *spinnerIndicator) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.spinner.Stop()
}
