// Package policy compiles a contract.PolicyProfile into precompiled glob
// matchers and evaluates tool, path, and network access decisions against
// them, recording every decision through an optional Auditor.
package policy

import (
	"strings"
	"sync"

	"github.com/agentbackplane/abp/contract"
	"github.com/bmatcuk/doublestar/v4"
)

// Decision is the outcome of a single policy check.
type Decision struct {
	Allowed          bool   `json:"allowed"`
	Reason           string `json:"reason,omitempty"`
	RequiresApproval bool   `json:"requires_approval"`
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// Auditor receives every decision a Engine makes, keyed by the kind of
// check and the subject it was evaluated against. Test suites can supply a
// recording Auditor to assert policy outcomes without reaching into engine
// internals.
type Auditor interface {
	Record(check string, subject string, decision Decision)
}

// RecordingAuditor is an in-memory Auditor that retains every record in
// order, for use in tests.
type RecordingAuditor struct {
	mu      sync.Mutex
	Entries []AuditEntry
}

// AuditEntry is one record captured by RecordingAuditor.
type AuditEntry struct {
	Check    string
	Subject  string
	Decision Decision
}

// Record implements Auditor.
func (a *RecordingAuditor) Record(check, subject string, decision Decision) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, AuditEntry{Check: check, Subject: subject, Decision: decision})
}

// Engine evaluates access decisions against a precompiled policy profile.
// Every glob list is compiled once at construction so the per-call cost is
// a handful of pattern matches rather than a profile walk.
type Engine struct {
	allowedTools       globSet
	disallowedTools    globSet
	denyRead           globSet
	denyWrite          globSet
	allowNetwork       globSet
	denyNetwork        globSet
	requireApprovalFor globSet

	auditor Auditor
}

// Options configures a new Engine.
type Options struct {
	Profile contract.PolicyProfile
	Auditor Auditor
}

// New compiles profile into an Engine. It never fails: a malformed glob
// pattern is kept as given, and because matches ignores doublestar's
// ErrBadPattern it never matches anything, so every profile is
// constructible.
func New(opts Options) (*Engine, error) {
	p := opts.Profile
	return &Engine{
		allowedTools:       compileGlobs(p.AllowedTools),
		disallowedTools:    compileGlobs(p.DisallowedTools),
		denyRead:           compileGlobs(p.DenyRead),
		denyWrite:          compileGlobs(p.DenyWrite),
		allowNetwork:       compileGlobs(p.AllowNetwork),
		denyNetwork:        compileGlobs(p.DenyNetwork),
		requireApprovalFor: compileGlobs(p.RequireApprovalFor),
		auditor:            opts.Auditor,
	}, nil
}

// CanUseTool evaluates whether name may be invoked. Deny always overrides
// allow; an explicit "*" in allowed_tools widens the default allow without
// suppressing the deny list.
func (e *Engine) CanUseTool(name string) Decision {
	var d Decision
	switch {
	case e.disallowedTools.matches(name):
		d = deny("tool matches disallowed_tools")
	case e.allowedTools.empty() || e.allowedTools.matches(name):
		d = allow()
	default:
		d = deny("tool not in allowed_tools")
	}
	if d.Allowed && e.requireApprovalFor.matches(name) {
		d.RequiresApproval = true
	}
	e.record("can_use_tool", name, d)
	return d
}

// CanReadPath evaluates whether path may be read.
func (e *Engine) CanReadPath(path string) Decision {
	d := allow()
	if e.denyRead.matches(path) {
		d = deny("path matches deny_read")
	}
	e.record("can_read_path", path, d)
	return d
}

// CanWritePath evaluates whether path may be written.
func (e *Engine) CanWritePath(path string) Decision {
	d := allow()
	if e.denyWrite.matches(path) {
		d = deny("path matches deny_write")
	}
	e.record("can_write_path", path, d)
	return d
}

// CanAccessNetwork evaluates whether host may be reached. A non-empty
// allow_network list requires an explicit match even when deny_network does
// not mention host.
func (e *Engine) CanAccessNetwork(host string) Decision {
	var d Decision
	switch {
	case e.denyNetwork.matches(host):
		d = deny("host matches deny_network")
	case !e.allowNetwork.empty() && !e.allowNetwork.matches(host):
		d = deny("host not in allow_network")
	default:
		d = allow()
	}
	e.record("can_access_network", host, d)
	return d
}

func (e *Engine) record(check, subject string, d Decision) {
	if e.auditor != nil {
		e.auditor.Record(check, subject, d)
	}
}

// globSet is a precompiled set of glob patterns matched with doublestar,
// which supports the "**" recursive segment POSIX-style relative paths and
// tool identifiers both need.
type globSet []string

func compileGlobs(patterns []string) globSet {
	out := make(globSet, 0, len(patterns))
	for _, p := range patterns {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (g globSet) empty() bool { return len(g) == 0 }

func (g globSet) matches(subject string) bool {
	for _, pattern := range g {
		if pattern == "*" {
			return true
		}
		if ok, _ := doublestar.Match(pattern, subject); ok {
			return true
		}
	}
	return false
}
