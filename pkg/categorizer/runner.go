package categorizer

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/urlcat/pkg/telemetry/tracing"
)

// Task is a unit of batch work: the URLs of one input record.
// Seq numbers must start at 0 and be contiguous for in-order output.
type Task struct {
	Seq     int
	URLs    []string
	Payload any // Carried through to the outcome untouched
}

// Outcome is the evaluation of a Task. Results[i] and Errors[i] belong to URLs[i];
// exactly one of them is set.
type Outcome struct {
	Task    Task
	Results [][]Result
	Errors  []error
}

// Failed returns true if any URL of the task failed to evaluate.
func (o Outcome) Failed() bool {
	for _, err := range o.Errors {
		if err != nil {
			return true
		}
	}
	return false
}

// Runner evaluates tasks on a pool of workers.
type Runner struct {
	evaluator *Evaluator
	workers   int
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewRunner creates a runner. A workers value <= 0 uses one worker per CPU.
func NewRunner(evaluator *Evaluator, workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		evaluator: evaluator,
		workers:   workers,
		logger:    logger.With("component", "categorizer.runner"),
		tracer:    otel.Tracer("mercator-hq/urlcat/categorizer"),
	}
}

// Workers returns the size of the worker pool.
func (r *Runner) Workers() int {
	return r.workers
}

// Run consumes tasks until the channel is closed or ctx is cancelled and emits
// outcomes in Seq order. The returned channel is closed when all work is done.
func (r *Runner) Run(ctx context.Context, tasks <-chan Task) <-chan Outcome {
	ctx, span := r.tracer.Start(ctx, "categorizer.Run",
		trace.WithAttributes(tracing.AttrWorkers.Int(r.workers)),
	)

	unordered := make(chan Outcome, r.workers)
	ordered := make(chan Outcome, r.workers)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx, tasks, unordered)
		}()
	}

	go func() {
		wg.Wait()
		close(unordered)
	}()

	go func() {
		defer span.End()
		defer close(ordered)
		emitted := r.reorder(ctx, unordered, ordered)
		span.SetAttributes(tracing.AttrTasks.Int(emitted))
	}()

	return ordered
}

// work evaluates tasks until the input is drained or ctx is cancelled.
func (r *Runner) work(ctx context.Context, tasks <-chan Task, out chan<- Outcome) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			outcome := r.evaluate(task)
			select {
			case out <- outcome:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (r *Runner) evaluate(task Task) Outcome {
	outcome := Outcome{
		Task:    task,
		Results: make([][]Result, len(task.URLs)),
		Errors:  make([]error, len(task.URLs)),
	}
	for i, rawURL := range task.URLs {
		results, err := r.evaluator.Evaluate(rawURL)
		if err != nil {
			r.logger.Debug("url evaluation failed", "seq", task.Seq, "url", rawURL, "error", err)
			outcome.Errors[i] = err
			continue
		}
		outcome.Results[i] = results
	}
	return outcome
}

// reorder buffers out-of-order outcomes and forwards them by ascending Seq.
func (r *Runner) reorder(ctx context.Context, in <-chan Outcome, out chan<- Outcome) int {
	pending := make(map[int]Outcome)
	next := 0
	emitted := 0

	send := func(o Outcome) bool {
		select {
		case out <- o:
			emitted++
			return true
		case <-ctx.Done():
			return false
		}
	}

	for outcome := range in {
		pending[outcome.Task.Seq] = outcome
		for {
			o, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if !send(o) {
				return emitted
			}
		}
	}

	// Gaps remain only after cancellation or non-contiguous input.
	if len(pending) > 0 {
		seqs := make([]int, 0, len(pending))
		for seq := range pending {
			seqs = append(seqs, seq)
		}
		sort.Ints(seqs)
		r.logger.Warn("emitting outcomes out of sequence", "pending", len(seqs), "expected_seq", next)
		for _, seq := range seqs {
			if !send(pending[seq]) {
				return emitted
			}
		}
	}

	return emitted
}
