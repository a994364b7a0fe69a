package sim

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/shlex"
)

// RunScript drives the pad from r, one command per line:
//
//	push <channel>
//	release <channel>
//	tap <channel> [hold]		push, wait hold (default 100ms), release
//	raw <channel> <value>
//	fail <channel> <message>	reads fail with message
//	ok <channel>			reads succeed again
//	sleep <duration>
//
// Words are split shell-style; # starts a comment.  RunScript stops at the
// first bad line, at EOF, or when ctx is done.
func (d *Driver) RunScript(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		words, err := shlex.Split(scanner.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if len(words) == 0 {
			continue
		}
		if err := d.run(ctx, words); err != nil {
			return fmt.Errorf("line %d: %s: %w", line, words[0], err)
		}
	}
	return scanner.Err()
}

func (d *Driver) run(ctx context.Context, words []string) error {
	cmd, args := words[0], words[1:]

	if cmd == "sleep" {
		if len(args) != 1 {
			return fmt.Errorf("want 1 argument, got %d", len(args))
		}
		dur, err := time.ParseDuration(args[0])
		if err != nil {
			return err
		}
		return sleep(ctx, dur)
	}

	if len(args) < 1 {
		return errors.New("missing channel")
	}
	channel, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	args = args[1:]

	switch cmd {
	case "push":
		return d.Touch(channel)
	case "release":
		return d.Untouch(channel)
	case "tap":
		hold := 100 * time.Millisecond
		if len(args) > 0 {
			if hold, err = time.ParseDuration(args[0]); err != nil {
				return err
			}
		}
		if err := d.Touch(channel); err != nil {
			return err
		}
		if err := sleep(ctx, hold); err != nil {
			return err
		}
		return d.Untouch(channel)
	case "raw":
		if len(args) != 1 {
			return errors.New("missing value")
		}
		value, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		return d.SetRaw(channel, uint16(value))
	case "fail":
		msg := "read failed"
		if len(args) > 0 {
			msg = args[0]
		}
		return d.FailReads(channel, errors.New(msg))
	case "ok":
		return d.FailReads(channel, nil)
	}

	return errors.New("unknown command")
}

func sleep(ctx context.Context, dur time.Duration) error {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
