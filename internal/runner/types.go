package runner

import (
	"fmt"
	"strings"

	"github.com/fortuna/bbref/internal/ingest/bbref"
)

// JobType enumerates the pipelines a run can execute.
type JobType string

const (
	JobTypeRoster      JobType = bbref.JobRoster
	JobTypeURLs        JobType = bbref.JobURLs
	JobTypePlayerStats JobType = bbref.JobPlayerStats
	JobTypeSchedule    JobType = bbref.JobSchedule
	JobTypeBoxScores   JobType = bbref.JobBoxScores
	JobTypeAdvanced    JobType = bbref.JobAdvanced
	// JobTypeAll runs every pipeline in dependency order.
	JobTypeAll JobType = "all"
)

// pipelineOrder is the order JobTypeAll walks. Later pipelines read what
// earlier ones stored.
var pipelineOrder = []JobType{
	JobTypeRoster,
	JobTypeURLs,
	JobTypePlayerStats,
	JobTypeSchedule,
	JobTypeBoxScores,
	JobTypeAdvanced,
}

// ParseJobType maps a command-line job name to its JobType.
func ParseJobType(s string) (JobType, error) {
	t := JobType(strings.ToLower(strings.TrimSpace(s)))
	if t == JobTypeAll {
		return t, nil
	}
	for _, known := range pipelineOrder {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown job type %q", s)
}

// JobStatus represents the lifecycle state of a run.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// JobSpec describes the work to be performed by the runner. Empty Teams and
// Months fall back to every franchise and every regular season month.
type JobSpec struct {
	Type    JobType
	Teams   []string
	Season  int
	Seasons []int
	Months  []string
}

func (s JobSpec) withDefaults() JobSpec {
	if len(s.Teams) == 0 {
		s.Teams = bbref.Teams
	}
	if len(s.Months) == 0 {
		s.Months = bbref.Months
	}
	if len(s.Seasons) == 0 && s.Season > 0 {
		s.Seasons = []int{s.Season}
	}
	return s
}

func (s JobSpec) validate() error {
	switch s.Type {
	case JobTypeRoster, JobTypeAll:
		if s.Season <= 0 {
			return fmt.Errorf("%s: season is required", s.Type)
		}
	case JobTypeSchedule:
		if len(s.Seasons) == 0 {
			return fmt.Errorf("%s: at least one season is required", s.Type)
		}
	case JobTypeURLs, JobTypePlayerStats, JobTypeBoxScores, JobTypeAdvanced:
	default:
		return fmt.Errorf("unsupported job type %q", s.Type)
	}
	return nil
}
