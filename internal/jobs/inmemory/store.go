package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/asharma-dev/statement-pipeline/internal/jobs"
)

// Store is an in-memory JobStore. Jobs are copied on save and load so
// workers and HTTP handlers never share mutable state.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]jobs.ParseStatementJob
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]jobs.ParseStatementJob)}
}

func (s *Store) SaveJob(ctx context.Context, job *jobs.ParseStatementJob) error {
	if job.JobID == "" {
		return fmt.Errorf("SaveJob: missing job id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = *job
	return nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ParseStatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("GetJob: job %q not found", jobID)
	}
	return &job, nil
}

func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ParseStatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*jobs.ParseStatementJob
	for id := range s.jobs {
		job := s.jobs[id]
		if filter.AccountID != "" && job.AccountID != filter.AccountID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		out = append(out, &job)
	}

	// Newest first.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

var _ jobs.JobStore = (*Store)(nil)
