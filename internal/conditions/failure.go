package conditions

import (
	"fmt"
	"sort"
	"strings"
)

// SourceStatus is the settled state of one source lookup.
type SourceStatus string

const (
	// SourceOK means the provider returned a usable reading.
	SourceOK SourceStatus = "ok"
	// SourceMissing means the provider answered but had nothing for the site.
	SourceMissing SourceStatus = "missing"
	// SourceErrored means the lookup failed or timed out.
	SourceErrored SourceStatus = "error"
)

// SourceReport is the per-source diagnostic attached to every gather, whether
// it succeeded or aborted.
type SourceReport struct {
	Status SourceStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// CriticalFailure aborts a gather when the mandatory tide reading cannot be
// obtained. It carries the diagnostics of every attempted source so operators
// can see what else was failing at the same time.
type CriticalFailure struct {
	Reason  string                  `json:"reason"`
	Sources map[string]SourceReport `json:"sources"`
}

func (e *CriticalFailure) Error() string {
	names := make([]string, 0, len(e.Sources))
	for name, rep := range e.Sources {
		if rep.Status != SourceOK {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s (degraded sources: %s)", e.Reason, strings.Join(names, ", "))
}
