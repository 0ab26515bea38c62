package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Outcome is the terminal state of one work item.
type Outcome string

const (
	OutcomeIngested Outcome = "ingested"
	OutcomeSkipped  Outcome = "skipped"
)

// Event describes what happened to one work item of a pipeline run.
type Event struct {
	RunID      string    `json:"run_id,omitempty"`
	Job        string    `json:"job"`
	Item       string    `json:"item"`
	Index      int       `json:"index"`
	Total      int       `json:"total"`
	Outcome    Outcome   `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	Inserted   int       `json:"inserted"`
	Duplicates int       `json:"duplicates"`
	Rejected   int       `json:"rejected"`
	Time       time.Time `json:"time"`
}

// Summary aggregates the events of one driver run.
type Summary struct {
	Job           string `json:"job"`
	Items         int    `json:"items"`
	Ingested      int    `json:"ingested"`
	Skipped       int    `json:"skipped"`
	RowsInserted  int    `json:"rows_inserted"`
	RowsDuplicate int    `json:"rows_duplicate"`
	RowsRejected  int    `json:"rows_rejected"`
}

// Record folds one item event into the summary.
func (s *Summary) Record(e Event) {
	switch e.Outcome {
	case OutcomeIngested:
		s.Ingested++
	case OutcomeSkipped:
		s.Skipped++
	}
	s.RowsInserted += e.Inserted
	s.RowsDuplicate += e.Duplicates
	s.RowsRejected += e.Rejected
}

// Add merges another summary into s.
func (s *Summary) Add(o Summary) {
	s.Items += o.Items
	s.Ingested += o.Ingested
	s.Skipped += o.Skipped
	s.RowsInserted += o.RowsInserted
	s.RowsDuplicate += o.RowsDuplicate
	s.RowsRejected += o.RowsRejected
}

// Reporter receives lifecycle callbacks from pipeline drivers.
type Reporter interface {
	OnJobStart(job string, total int)
	OnItem(e Event)
	OnJobComplete(s Summary)
	OnJobError(job string, err error)
}

// Nop discards everything.
type Nop struct{}

func (Nop) OnJobStart(string, int)   {}
func (Nop) OnItem(Event)             {}
func (Nop) OnJobComplete(Summary)    {}
func (Nop) OnJobError(string, error) {}

// Multi fans callbacks out to several reporters in order.
type Multi []Reporter

func (m Multi) OnJobStart(job string, total int) {
	for _, r := range m {
		r.OnJobStart(job, total)
	}
}

func (m Multi) OnItem(e Event) {
	for _, r := range m {
		r.OnItem(e)
	}
}

func (m Multi) OnJobComplete(s Summary) {
	for _, r := range m {
		r.OnJobComplete(s)
	}
}

func (m Multi) OnJobError(job string, err error) {
	for _, r := range m {
		r.OnJobError(job, err)
	}
}

// WithRun stamps every item event with a run id before passing it on.
func WithRun(runID string, next Reporter) Reporter {
	return runStamp{runID: runID, Reporter: next}
}

type runStamp struct {
	runID string
	Reporter
}

func (r runStamp) OnItem(e Event) {
	e.RunID = r.runID
	r.Reporter.OnItem(e)
}

// LogReporter writes one structured log line per callback.
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter creates a reporter that logs through logger.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (l *LogReporter) OnJobStart(job string, total int) {
	l.logger.Info("job started", zap.String("job", job), zap.Int("total", total))
}

func (l *LogReporter) OnItem(e Event) {
	fields := []zap.Field{
		zap.String("job", e.Job),
		zap.String("item", e.Item),
		zap.Int("index", e.Index),
		zap.Int("total", e.Total),
	}
	if e.Outcome == OutcomeSkipped {
		l.logger.Warn("item skipped", append(fields, zap.String("reason", e.Reason))...)
		return
	}
	l.logger.Info("item ingested", append(fields,
		zap.Int("inserted", e.Inserted),
		zap.Int("duplicates", e.Duplicates),
		zap.Int("rejected", e.Rejected),
	)...)
}

func (l *LogReporter) OnJobComplete(s Summary) {
	l.logger.Info("job complete",
		zap.String("job", s.Job),
		zap.Int("items", s.Items),
		zap.Int("ingested", s.Ingested),
		zap.Int("skipped", s.Skipped),
		zap.Int("rows_inserted", s.RowsInserted),
		zap.Int("rows_duplicate", s.RowsDuplicate),
		zap.Int("rows_rejected", s.RowsRejected),
	)
}

func (l *LogReporter) OnJobError(job string, err error) {
	l.logger.Error("job failed", zap.String("job", job), zap.Error(err))
}

// Recorder keeps every callback in memory.
type Recorder struct {
	mu        sync.Mutex
	Started   []string
	Items     []Event
	Completed []Summary
	Errors    []error
}

func (r *Recorder) OnJobStart(job string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Started = append(r.Started, job)
}

func (r *Recorder) OnItem(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Items = append(r.Items, e)
}

func (r *Recorder) OnJobComplete(s Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Completed = append(r.Completed, s)
}

func (r *Recorder) OnJobError(_ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, err)
}

// Skipped returns the recorded events with a skipped outcome.
func (r *Recorder) Skipped() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.Items {
		if e.Outcome == OutcomeSkipped {
			out = append(out, e)
		}
	}
	return out
}
