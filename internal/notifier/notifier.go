package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Notifier delivers report text somewhere.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Console writes each message as a line to W.
type Console struct {
	mu sync.Mutex
	W  io.Writer
}

// NewConsole creates a Console notifier.
func NewConsole(w io.Writer) *Console { return &Console{W: w} }

func (c *Console) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.W, text)
	return err
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
