package strategy

import (
	"bufio"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// Channel is the duplex message channel to the Strategy Engine: writes go
// out as lines, reads come back as lines through a background reader so a
// decision wait can be cut off at a deadline no matter how long the
// underlying read blocks.
type Channel struct {
	w     io.Writer
	lines chan string
}

// NewChannel wraps a byte-oriented duplex transport (subprocess pipes in
// production, io.Pipe in tests) in the line protocol.
func NewChannel(r io.Reader, w io.Writer) *Channel {
	c := &Channel{
		w:     w,
		lines: make(chan string, 16),
	}

	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			c.lines <- sc.Text()
		}
		close(c.lines)
	}()

	return c
}

// Send writes one outbound message. Delivery is at-most-once: a failed
// write is reported but never retried.
func (c *Channel) Send(msg string) error {
	_, err := io.WriteString(c.w, msg+"\n")
	return err
}

// SendInfo sends an INFO snapshot, first discarding any lines still
// buffered from before. A decision that arrives after its cycle's deadline
// answers a snapshot that no longer exists; it must not be mistaken for an
// answer to this one.
func (c *Channel) SendInfo(cash, price, shares decimal.Decimal) error {
	c.drainStale()
	return c.Send(Info(cash, price, shares))
}

// AwaitInstruction waits up to timeout for a BUY/SELL line. It reports
// false on timeout, on a malformed line (which consumes that cycle's
// read), or when the engine has gone away.
func (c *Channel) AwaitInstruction(timeout time.Duration) (Instruction, bool) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case line, ok := <-c.lines:
		if !ok {
			return Instruction{}, false
		}
		return ParseInstruction(line)
	case <-t.C:
		return Instruction{}, false
	}
}

func (c *Channel) drainStale() {
	for {
		select {
		case _, ok := <-c.lines:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
