package autoplay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	maxRecords     = 20
	summaryRecords = 5 // how many recent records Summary covers
)

// CycleRecord captures what happened in a single auto-player cycle.
type CycleRecord struct {
	At        time.Time `json:"at"`
	Phase     string    `json:"phase"`
	Clicks    int       `json:"clicks"`
	Actions   []string  `json:"actions,omitempty"`
	Succeeded int       `json:"succeeded"`
	Currency  string    `json:"currency"`
	Rank      string    `json:"rank"`
	Rationale string    `json:"rationale,omitempty"`
}

// CycleMemory manages a ring of recent cycle records, kept on disk so a
// restarted auto-player can report on its previous run.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`
	path    string
}

// LoadMemory reads the memory file. Returns empty memory if not found.
// An empty path keeps the memory in process only.
func LoadMemory(path string) *CycleMemory {
	if path == "" {
		return &CycleMemory{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &CycleMemory{path: path}
	}
	var mem CycleMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		slog.Warn("autoplay memory corrupted, starting fresh", "error", err)
		return &CycleMemory{path: path}
	}
	mem.path = path
	return &mem
}

// Save writes the memory to disk.
func (m *CycleMemory) Save() {
	if m.path == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal autoplay memory", "error", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		slog.Error("failed to write autoplay memory", "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Summary describes the last few cycles in one line for the log.
func (m *CycleMemory) Summary() string {
	if len(m.Records) == 0 {
		return "no cycles yet"
	}

	start := 0
	if len(m.Records) > summaryRecords {
		start = len(m.Records) - summaryRecords
	}
	recent := m.Records[start:]

	var clicks, actions, succeeded int
	for _, r := range recent {
		clicks += r.Clicks
		actions += len(r.Actions)
		succeeded += r.Succeeded
	}
	last := recent[len(recent)-1]

	var b strings.Builder
	fmt.Fprintf(&b, "last %d cycles: %d clicks, %d/%d actions ok", len(recent), clicks, succeeded, actions)
	fmt.Fprintf(&b, ", now %s with %s Respect", last.Rank, last.Currency)
	return b.String()
}
