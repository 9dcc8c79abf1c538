// internal/core/pipeline_debug.go
// Pipeline-specific debugging and performance monitoring
package core

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineDebugger records per-step timings across runs. Enable it with -debug.
type PipelineDebugger struct {
	mu     sync.Mutex
	logger logrus.FieldLogger

	operations []StepOperation
	runTimes   []time.Duration
	runs       int
	failures   int

	lastInputSize string
	lastStepCount int
}

// StepOperation tracks one executed step
type StepOperation struct {
	Timestamp  time.Time
	Index      int
	Step       Step
	Handled    bool
	Duration   time.Duration
	OutputSize string
}

// maxOperations bounds the operation history kept in memory
const maxOperations = 500

func NewPipelineDebugger(logger logrus.FieldLogger) *PipelineDebugger {
	if logger == nil {
		logger = NopLogger()
	}
	return &PipelineDebugger{logger: logger}
}

func (pd *PipelineDebugger) LogRunStart(stepCount int, inputSize string) {
	pd.mu.Lock()
	defer pd.mu.Unlock()

	pd.lastInputSize = inputSize
	pd.lastStepCount = stepCount
	pd.logger.WithFields(logrus.Fields{
		"step_count": stepCount,
		"input_size": inputSize,
	}).Debug("PIPELINE Event: run_start")
}

func (pd *PipelineDebugger) LogStep(index int, step Step, handled bool, duration time.Duration, outputSize string) {
	pd.mu.Lock()
	defer pd.mu.Unlock()

	pd.operations = append(pd.operations, StepOperation{
		Timestamp:  time.Now(),
		Index:      index,
		Step:       step,
		Handled:    handled,
		Duration:   duration,
		OutputSize: outputSize,
	})
	if len(pd.operations) > maxOperations {
		pd.operations = pd.operations[len(pd.operations)-maxOperations:]
	}

	pd.logger.WithFields(logrus.Fields{
		"index":       index,
		"step":        step.Label(),
		"handled":     handled,
		"duration_ms": duration.Milliseconds(),
		"output_size": outputSize,
	}).Debug("PIPELINE Debug")
}

func (pd *PipelineDebugger) LogRunComplete(success bool, duration time.Duration) {
	pd.mu.Lock()
	defer pd.mu.Unlock()

	pd.runs++
	if !success {
		pd.failures++
	}
	pd.runTimes = append(pd.runTimes, duration)

	entry := pd.logger.WithFields(logrus.Fields{
		"success":     success,
		"duration_ms": duration.Milliseconds(),
	})
	if success {
		entry.Debug("PIPELINE Event: run_complete")
	} else {
		entry.Warn("PIPELINE Event: run_failed")
	}
}

// Operations returns a copy of the recorded step history.
func (pd *PipelineDebugger) Operations() []StepOperation {
	pd.mu.Lock()
	defer pd.mu.Unlock()

	out := make([]StepOperation, len(pd.operations))
	copy(out, pd.operations)
	return out
}

func (pd *PipelineDebugger) GetStats() map[string]interface{} {
	pd.mu.Lock()
	defer pd.mu.Unlock()

	stats := map[string]interface{}{
		"runs":             pd.runs,
		"failures":         pd.failures,
		"total_operations": len(pd.operations),
		"last_input_size":  pd.lastInputSize,
		"last_step_count":  pd.lastStepCount,
	}
	if pd.runs > 0 {
		stats["success_rate"] = float64(pd.runs-pd.failures) / float64(pd.runs)
		stats["avg_run_time"] = averageDuration(pd.runTimes)
	}

	perStep := make(map[string][]time.Duration)
	for _, op := range pd.operations {
		if op.Handled {
			perStep[op.Step.Label()] = append(perStep[op.Step.Label()], op.Duration)
		}
	}
	avg := make(map[string]time.Duration, len(perStep))
	for label, d := range perStep {
		avg[label] = averageDuration(d)
	}
	stats["avg_step_time"] = avg

	return stats
}

// PrintStatus writes a human-readable status block to w.
func (pd *PipelineDebugger) PrintStatus(w io.Writer) {
	stats := pd.GetStats()
	ops := pd.Operations()

	fmt.Fprintln(w, "\n=== PIPELINE DEBUG STATUS ===")
	fmt.Fprintf(w, "Runs: %d (failures: %d)\n", stats["runs"], stats["failures"])
	if avg, ok := stats["avg_run_time"]; ok {
		fmt.Fprintf(w, "Average Run Time: %v\n", avg)
	}

	fmt.Fprintln(w, "\nRecent Steps:")
	recent := 5
	if len(ops) < recent {
		recent = len(ops)
	}
	for _, op := range ops[len(ops)-recent:] {
		status := "APPLIED"
		if !op.Handled {
			status = "SKIPPED"
		}
		fmt.Fprintf(w, "  [%s] #%d %s - %s (%v)\n",
			op.Timestamp.Format("15:04:05.000"),
			op.Index,
			op.Step.Label(),
			status,
			op.Duration)
	}
}

func averageDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}
