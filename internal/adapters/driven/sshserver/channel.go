// Package sshserver implements the server-facing driven ports over SSH:
// the event channel that triggers remote operations and the snapshot
// provider that reads the server's information document.
package sshserver

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"
	"golang.org/x/time/rate"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
	"github.com/coursekit/coursekit-cli/internal/logger"
)

// Server-side paths, relative to the faculty home directory.
const (
	eventsLogPath    = ".coursekit/events.log"
	responsesLogPath = ".coursekit/responses.log"
	infoJSONPath     = ".coursekit/info.json"
)

// pollRate bounds how often the response log is re-read. Polling a remote
// file is the protocol; the limiter keeps it from hammering the server.
const pollRate = rate.Limit(2)

// Ensure Channel implements the interface.
var _ driven.ServerChannel = (*Channel)(nil)

// Config identifies the server and the credentials for the SSH session.
type Config struct {
	Host     string
	Port     int
	Username string

	// KeyFile is the private key used to authenticate. Required; the
	// channel holds a long-lived non-interactive session.
	KeyFile string

	// DialTimeout bounds the TCP connection attempt. Zero means 10s.
	DialTimeout time.Duration
}

// Channel is an SSH-backed driven.ServerChannel. Operations are requested
// by appending a line to the faculty event log on the server; the server
// reports progress by appending to the response log, which a background
// goroutine polls and fans out to the per-tag subscriptions.
//
// A Channel is single-use: Connect at most once, then Close.
type Channel struct {
	cfg Config

	mu           sync.Mutex
	client       *ssh.Client
	cancel       context.CancelFunc
	offset       int64
	closed       bool
	streamClosed bool
	subs         map[string][]chan driven.EventMessage
}

// NewChannel creates a channel. Connect must be called before use.
func NewChannel(cfg Config) *Channel {
	return &Channel{
		cfg:  cfg,
		subs: make(map[string][]chan driven.EventMessage),
	}
}

// Connect dials the server and starts the response log reader. The reader
// runs until Close is called or the connection drops, at which point every
// subscription is closed.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("channel closed")
	}
	if c.client != nil {
		c.mu.Unlock()
		return fmt.Errorf("already connected to %s", c.cfg.Host)
	}
	c.mu.Unlock()

	signer, err := loadSigner(c.cfg.KeyFile)
	if err != nil {
		return err
	}

	timeout := c.cfg.DialTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	sshCfg := &ssh.ClientConfig{
		User:            c.cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // host trust is established at account setup
		Timeout:         timeout,
	}

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		conn.Close()
		return fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}

	readCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.client = ssh.NewClient(sshConn, chans, reqs)
	c.cancel = cancel
	c.mu.Unlock()

	// New responses only: everything already in the log belongs to
	// earlier sessions.
	size, err := c.remoteFileSize(ctx, responsesLogPath)
	if err != nil {
		logger.Debug("response log not readable yet: %v", err)
	}
	c.mu.Lock()
	c.offset = size
	c.mu.Unlock()

	go c.readLoop(readCtx)

	logger.Info("connected to %s as %s", addr, c.cfg.Username)
	return nil
}

// Close tears down the connection and every subscription. The channel
// cannot be reconnected afterwards.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.closeSubsLocked()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// LogEvent appends one operation request to the faculty event log. Each
// line carries a unique event ID so the server can deduplicate replays.
func (c *Channel) LogEvent(ctx context.Context, tag, payload string) error {
	line := fmt.Sprintf("%d %s %s %s", time.Now().Unix(), uuid.NewString(), tag, payload)
	cmd := fmt.Sprintf("mkdir -p %s && printf '%%s\\n' %s >> %s",
		shellQuote(".coursekit"), shellQuote(line), shellQuote(eventsLogPath))

	if _, err := c.output(ctx, cmd); err != nil {
		return fmt.Errorf("log %s event: %w", tag, err)
	}
	logger.Debug("logged event: %s", line)
	return nil
}

// Subscribe returns the stream of status messages for one operation tag.
// Each subscription gets its own buffered channel, so concurrent pollers
// never consume each other's messages. On a channel whose connection is
// already gone the returned stream is closed immediately.
func (c *Channel) Subscribe(tag string) <-chan driven.EventMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := make(chan driven.EventMessage, 64)
	if c.streamClosed || c.closed {
		close(sub)
		return sub
	}
	c.subs[tag] = append(c.subs[tag], sub)
	return sub
}

// readLoop polls the response log and fans new complete lines out to the
// matching subscriptions. All subscriptions close when polling stops.
func (c *Channel) readLoop(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		c.closeSubsLocked()
		c.mu.Unlock()
	}()

	limiter := rate.NewLimiter(pollRate, 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		chunk, err := c.readNewResponses(ctx)
		if err != nil {
			logger.Warn("response log poll failed: %v", err)
			return
		}

		for _, line := range chunk {
			msg, ok := parseResponseLine(line)
			if !ok {
				logger.Debug("unparseable response line: %q", line)
				continue
			}
			c.dispatch(msg)
		}
	}
}

// dispatch delivers one message to every subscription for its tag. A
// subscription whose poller stopped draining keeps its buffered backlog;
// anything beyond that is dropped rather than stalling the read loop.
func (c *Channel) dispatch(msg driven.EventMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streamClosed {
		return
	}
	for _, sub := range c.subs[msg.Tag] {
		select {
		case sub <- msg:
		default:
			logger.Debug("dropping %s message for a stalled subscriber", msg.Tag)
		}
	}
}

// closeSubsLocked closes every subscription exactly once. Callers hold mu.
func (c *Channel) closeSubsLocked() {
	if c.streamClosed {
		return
	}
	c.streamClosed = true
	for _, subs := range c.subs {
		for _, sub := range subs {
			close(sub)
		}
	}
	c.subs = nil
}

// readNewResponses returns the complete lines appended to the response log
// since the last read and advances the offset past them.
func (c *Channel) readNewResponses(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	offset := c.offset
	c.mu.Unlock()

	// tail -c is byte-addressed and 1-based.
	cmd := fmt.Sprintf("tail -c +%d %s 2>/dev/null || true", offset+1, shellQuote(responsesLogPath))
	out, err := c.output(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}

	// Only consume up to the last newline; a partial trailing line is
	// still being written and will be picked up next poll.
	end := strings.LastIndexByte(out, '\n')
	if end < 0 {
		return nil, nil
	}

	c.mu.Lock()
	c.offset = offset + int64(end) + 1
	c.mu.Unlock()

	lines := strings.Split(out[:end], "\n")
	parsed := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			parsed = append(parsed, line)
		}
	}
	return parsed, nil
}

// remoteFileSize returns the byte size of a remote file, zero if absent.
func (c *Channel) remoteFileSize(ctx context.Context, path string) (int64, error) {
	out, err := c.output(ctx,
		fmt.Sprintf("wc -c < %s 2>/dev/null || echo 0", shellQuote(path)))
	if err != nil {
		return 0, err
	}
	var size int64
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%d", &size); err != nil {
		return 0, fmt.Errorf("parse size of %s: %w", path, err)
	}
	return size, nil
}

// output runs one remote command and returns its stdout. Each command gets
// its own session; sessions are single-use in the SSH protocol.
func (c *Channel) output(ctx context.Context, cmd string) (string, error) {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		return "", domain.ErrNotConnected
	}

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.Output(cmd)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		// Closing the session unblocks the remote command.
		session.Close()
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("remote command: %w", res.err)
		}
		return string(res.out), nil
	}
}

// parseResponseLine decodes one response log line:
//
//	<timestamp> <TAG>_<TYPE> <optional message>
//
// e.g. "1709290800 PUBLISH_SUCCESS hw1 published".
func parseResponseLine(line string) (driven.EventMessage, bool) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 {
		return driven.EventMessage{}, false
	}

	event := fields[1]
	sep := strings.LastIndexByte(event, '_')
	if sep <= 0 || sep == len(event)-1 {
		return driven.EventMessage{}, false
	}

	msg := driven.EventMessage{
		Tag:  event[:sep],
		Type: event[sep+1:],
	}
	if len(fields) == 3 {
		msg.Message = fields[2]
	}
	return msg, true
}

// loadSigner reads and parses the SSH private key.
func loadSigner(keyFile string) (ssh.Signer, error) {
	if keyFile == "" {
		return nil, fmt.Errorf("%w: ssh key file is required", domain.ErrInvalidConfig)
	}
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key: %w", err)
	}
	return signer, nil
}

// shellQuote wraps s in single quotes, escaping any embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
