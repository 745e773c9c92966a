package txui

import (
	"context"
	"log/slog"
	"time"
)

// Phase is a state of the request lifecycle. A page moves through the phases
// in order; a failing phase leaves the page in the last completed one.
type Phase int

const (
	PhaseNew Phase = iota
	PhaseTransactionResolved
	PhaseTreeAssigned
	PhaseComponentsInitialized
	PhaseEventsApplied
	PhaseRendered
	PhaseCleanedUp
)

var phaseNames = [...]string{
	PhaseNew:                   "new",
	PhaseTransactionResolved:   "transaction_resolved",
	PhaseTreeAssigned:          "tree_assigned",
	PhaseComponentsInitialized: "components_initialized",
	PhaseEventsApplied:         "events_applied",
	PhaseRendered:              "rendered",
	PhaseCleanedUp:             "cleaned_up",
}

func (ph Phase) String() string {
	if ph < 0 || int(ph) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[ph]
}

// step runs fn and advances the page to next on success. The duration is
// observed in the phase histogram and logged at Debug, or at Info when
// performance logging is enabled.
func (p *Page) step(ctx context.Context, next Phase, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	p.app.metrics.Phase.WithLabelValues(p.typ.name, next.String()).Observe(elapsed.Seconds())

	level := slog.LevelDebug
	if p.app.perfLog {
		level = slog.LevelInfo
	}
	p.log.Log(ctx, level, "phase",
		"phase", next.String(),
		"duration", elapsed,
		"ok", err == nil,
	)

	if err != nil {
		return err
	}
	p.phase = next
	return nil
}
