// Package sidecar spawns and supervises backend subprocesses that speak the
// protocol package's JSONL envelope wire format over stdin/stdout.
package sidecar

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/agentbackplane/abp/internal/apierr"
	"github.com/agentbackplane/abp/protocol"
)

// State is a sidecar process's current scheduling state.
type State string

const (
	StateIdle   State = "idle"
	StateBusy   State = "busy"
	StateFailed State = "failed"
)

// Options configures a new Process.
type Options struct {
	// Command is the executable name resolved via PATH, unless Path is set.
	Command string
	// Path overrides Command with an explicit executable path.
	Path string
	Args []string
	Cwd  string
	Env  map[string]string
	// HandshakeTimeout bounds how long Start waits for the sidecar's first
	// hello envelope. Defaults to 30s.
	HandshakeTimeout time.Duration
	Stderr           io.Writer
}

// Process supervises one spawned sidecar subprocess.
type Process struct {
	opts Options
	cmd  *exec.Cmd
	in   io.WriteCloser
	out  *bufio.Scanner

	mu    sync.Mutex
	state State
	hello *protocol.HelloPayload
}

func resolveHandshakeTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Start spawns the subprocess and blocks until it sends a hello envelope or
// the handshake timeout elapses. On success the returned Process is Idle.
func Start(ctx context.Context, opts Options) (*Process, error) {
	execPath := opts.Path
	if execPath == "" {
		resolved, err := exec.LookPath(opts.Command)
		if err != nil {
			return nil, apierr.Wrap(apierr.KindInternal, "sidecar: resolve executable", err)
		}
		execPath = resolved
	}
	for i, arg := range opts.Args {
		if _, err := trimNUL(arg); err != nil {
			return nil, apierr.Newf(apierr.KindValidation, "sidecar: arg %d: %v", i, err)
		}
	}

	cmd := exec.CommandContext(ctx, execPath, opts.Args...)
	cmd.Dir = opts.Cwd
	if len(opts.Env) > 0 {
		env := os.Environ()
		for k, v := range opts.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = env
	}
	if opts.Stderr != nil {
		cmd.Stderr = opts.Stderr
	} else {
		cmd.Stderr = os.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "sidecar: attach stdin", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "sidecar: attach stdout", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "sidecar: start process", err)
	}

	p := &Process{
		opts:  opts,
		cmd:   cmd,
		in:    stdin,
		out:   bufio.NewScanner(stdout),
		state: StateBusy,
	}
	p.out.Buffer(make([]byte, 64*1024), 8*1024*1024)

	if err := p.awaitHello(resolveHandshakeTimeout(opts.HandshakeTimeout)); err != nil {
		_ = p.Kill()
		return nil, err
	}

	p.mu.Lock()
	p.state = StateIdle
	p.mu.Unlock()
	return p, nil
}

func (p *Process) awaitHello(timeout time.Duration) error {
	type result struct {
		env protocol.Envelope
		err error
	}
	lineCh := make(chan result, 1)
	go func() {
		if !p.out.Scan() {
			err := p.out.Err()
			if err == nil {
				err = io.EOF
			}
			lineCh <- result{err: err}
			return
		}
		env, err := protocol.Decode(p.out.Bytes())
		lineCh <- result{env: env, err: err}
	}()

	select {
	case r := <-lineCh:
		if r.err != nil {
			return apierr.Wrap(apierr.KindProtocol, "sidecar: reading handshake", r.err)
		}
		if r.env.Tag != protocol.TagHello {
			return apierr.Newf(apierr.KindProtocol, "sidecar: expected hello envelope, got %q", r.env.Tag)
		}
		p.hello = r.env.Hello
		return nil
	case <-time.After(timeout):
		return apierr.New(apierr.KindTimeout, "sidecar: handshake timed out waiting for hello")
	}
}

// Hello returns the sidecar's handshake payload.
func (p *Process) Hello() *protocol.HelloPayload {
	return p.hello
}

// State returns the process's current scheduling state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Process) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Send writes one envelope to the subprocess's stdin.
func (p *Process) Send(env protocol.Envelope) error {
	line, err := protocol.Encode(env)
	if err != nil {
		return err
	}
	if _, err := p.in.Write(append(line, '\n')); err != nil {
		p.setState(StateFailed)
		return apierr.Wrap(apierr.KindInternal, "sidecar: write to stdin", err)
	}
	return nil
}

// Scan advances to the next stdout line, returning false once the child
// closes stdout or a read fails (Err then reports the failure, or nil at a
// clean EOF). Callers decode via protocol.Decode(p.Bytes()).
func (p *Process) Scan() bool { return p.out.Scan() }

// Bytes returns the most recently scanned line.
func (p *Process) Bytes() []byte { return p.out.Bytes() }

// Err returns the scanner's terminal error, if any.
func (p *Process) Err() error { return p.out.Err() }

// Kill closes stdin and terminates the child process if still running.
func (p *Process) Kill() error {
	_ = p.in.Close()
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// Wait blocks until the subprocess exits.
func (p *Process) Wait() error {
	return p.cmd.Wait()
}

// trimNUL guards against NUL bytes in subprocess arguments the same way the
// teacher's command builder does, since a NUL silently truncates argv
// entries on exec.
func trimNUL(s string) (string, error) {
	if strings.ContainsRune(s, '\x00') {
		return "", fmt.Errorf("sidecar: argument contains NUL byte")
	}
	return s, nil
}
