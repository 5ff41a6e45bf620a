package shell

import (
	"context"
	"errors"
	"os/exec"
)

// Command like exec.Cmd, but with support:
// - io.Closer interface
// - Wait from multiple places
// - Done channel
// - parent context cancel kills the process
type Command struct {
	*exec.Cmd
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

var ErrEmptyCommand = errors.New("shell: empty command")

func NewCommand(ctx context.Context, s string) (*Command, error) {
	args := QuoteSplit(s)
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.SysProcAttr = procAttr
	return &Command{Cmd: cmd, ctx: ctx, cancel: cancel, done: make(chan struct{})}, nil
}

func (c *Command) Start() error {
	if err := c.Cmd.Start(); err != nil {
		c.cancel()
		return err
	}

	go func() {
		c.err = c.Cmd.Wait()
		close(c.done)
		c.cancel() // release context resources
	}()

	return nil
}

// Wait for process exit, safe to call from multiple goroutines
func (c *Command) Wait() error {
	<-c.done
	return c.err
}

func (c *Command) Run() error {
	if err := c.Start(); err != nil {
		return err
	}
	return c.Wait()
}

func (c *Command) Done() <-chan struct{} {
	return c.done
}

func (c *Command) Close() error {
	c.cancel()
	return nil
}
