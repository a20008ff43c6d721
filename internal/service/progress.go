package service

import (
	"sync"
	"time"
)

// NodeKind identifies which level of the draft tree a progress entry
// belongs to.
type NodeKind string

const (
	NodeSection  NodeKind = "section"
	NodeQuestion NodeKind = "question"
	NodeOption   NodeKind = "option"
)

// ProgressStatus is the lifecycle of one node during a save run.
type ProgressStatus string

const (
	StatusInProgress ProgressStatus = "in-progress"
	StatusSucceeded  ProgressStatus = "succeeded"
	StatusFailed     ProgressStatus = "failed"
)

// ProgressEntry is one row of the live save status list.
type ProgressEntry struct {
	NodeID      string         `json:"node_id"`
	NodeKind    NodeKind       `json:"node_kind"`
	DisplayName string         `json:"display_name"`
	Status      ProgressStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
}

// DefaultProgressClearDelay is how long a finished run stays visible
// before the reporter self-clears. Purely a UI affordance.
const DefaultProgressClearDelay = 2 * time.Second

// ProgressReporter keeps an ordered, mutable status list for one save run.
// Entries are keyed by node identifier: reporting the same node again
// updates its row in place instead of appending a duplicate. Consumers may
// poll Snapshot while a save is running.
type ProgressReporter struct {
	mu         sync.Mutex
	entries    []ProgressEntry
	index      map[string]int
	clearDelay time.Duration
	clearTimer *time.Timer
}

// NewProgressReporter creates a reporter. A non-positive clearDelay falls
// back to the default.
func NewProgressReporter(clearDelay time.Duration) *ProgressReporter {
	if clearDelay <= 0 {
		clearDelay = DefaultProgressClearDelay
	}
	return &ProgressReporter{
		index:      make(map[string]int),
		clearDelay: clearDelay,
	}
}

// Begin marks a node as in-progress, appending it on first sight.
func (p *ProgressReporter) Begin(nodeID string, kind NodeKind, displayName string) {
	p.upsert(ProgressEntry{
		NodeID:      nodeID,
		NodeKind:    kind,
		DisplayName: displayName,
		Status:      StatusInProgress,
	})
}

// Succeed marks a previously begun node as succeeded.
func (p *ProgressReporter) Succeed(nodeID string) {
	p.setStatus(nodeID, StatusSucceeded, "")
}

// Fail marks a previously begun node as failed.
func (p *ProgressReporter) Fail(nodeID string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	p.setStatus(nodeID, StatusFailed, msg)
}

// Snapshot returns a copy of the current list in report order.
func (p *ProgressReporter) Snapshot() []ProgressEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ProgressEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Finish schedules the self-clear once no entry is left in-progress.
func (p *ProgressReporter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, entry := range p.entries {
		if entry.Status == StatusInProgress {
			return
		}
	}
	if p.clearTimer != nil {
		p.clearTimer.Stop()
	}
	p.clearTimer = time.AfterFunc(p.clearDelay, p.Clear)
}

// Clear drops every entry. A new save run starts from an empty list.
func (p *ProgressReporter) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = nil
	p.index = make(map[string]int)
}

func (p *ProgressReporter) upsert(entry ProgressEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clearTimer != nil {
		p.clearTimer.Stop()
		p.clearTimer = nil
	}
	if i, ok := p.index[entry.NodeID]; ok {
		p.entries[i] = entry
		return
	}
	p.index[entry.NodeID] = len(p.entries)
	p.entries = append(p.entries, entry)
}

func (p *ProgressReporter) setStatus(nodeID string, status ProgressStatus, errMsg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i, ok := p.index[nodeID]
	if !ok {
		return
	}
	p.entries[i].Status = status
	p.entries[i].Error = errMsg
}
