package httpsrv

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tutils/tprime/counter"
	"github.com/tutils/tprime/prime"
)

// Job states
const (
	StatusRunning  = "running"
	StatusStopping = "stopping"
	StatusStopped  = "stopped"
	StatusDone     = "done"
	StatusFailed   = "failed"
)

const subscriberBuffer = 64

// JobInfo is the visible state of a background generation.
type JobInfo struct {
	ID       string          `json:"id"`
	Request  GenerateRequest `json:"request"`
	Status   string          `json:"status"`
	Attempts int             `json:"attempts"`
	Prime    string          `json:"prime,omitempty"`
	Error    string          `json:"error,omitempty"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
}

// StreamMessage is sent to stream subscribers. Candidate messages may be
// dropped for slow readers; the final done message is not.
type StreamMessage struct {
	Type      string   `json:"type"`
	Attempt   int      `json:"attempt,omitempty"`
	Candidate string   `json:"candidate,omitempty"`
	Accepted  bool     `json:"accepted,omitempty"`
	Job       *JobInfo `json:"job,omitempty"`
}

// Stream message types
const (
	MessageCandidate = "candidate"
	MessageDone      = "done"
)

type job struct {
	info     JobInfo
	cancel   context.CancelFunc
	done     chan struct{}
	finished bool
	subs     map[chan StreamMessage]struct{}
}

// JobManager runs generations in the background
type JobManager struct {
	mu        sync.Mutex
	jobs      map[string]*job
	counter   counter.Counter
	timeout   time.Duration
	retention time.Duration
}

// NewJobManager creates a new job manager. Every job counts its candidates
// on c and is cancelled after timeout, if positive. Finished jobs are
// forgotten once they are older than retention, if positive.
func NewJobManager(c counter.Counter, timeout, retention time.Duration) *JobManager {
	if c == nil {
		c = counter.Nop
	}
	return &JobManager{
		jobs:      make(map[string]*job),
		counter:   c,
		timeout:   timeout,
		retention: retention,
	}
}

// Start resolves req and starts generating in a new goroutine.
func (m *JobManager) Start(req GenerateRequest, l Limits) (JobInfo, error) {
	r, err := req.resolve(l)
	if err != nil {
		return JobInfo{}, err
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if m.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), m.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune(time.Now())

	j := &job{
		info: JobInfo{
			ID:      uuid.New().String()[:8],
			Request: req,
			Status:  StatusRunning,
			Started: time.Now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
		subs:   make(map[chan StreamMessage]struct{}),
	}
	m.jobs[j.info.ID] = j

	go m.run(ctx, j, r)

	return j.info, nil
}

func (m *JobManager) run(ctx context.Context, j *job, r run) {
	defer close(j.done)
	defer j.cancel()

	res, err := prime.Run(ctx, r.req,
		prime.WithCounter(m.counter),
		prime.WithPRNGOptions(r.prngOpts...),
		prime.WithObserver(func(e prime.Event) {
			m.publish(j, e)
		}))

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case err == nil:
		j.info.Status = StatusDone
		j.info.Prime = res.Prime.String()
		j.info.Attempts = res.Attempts
		log.Printf("[INFO] job %s found a %d-bit prime after %d candidates", j.info.ID, r.req.Bits, res.Attempts)
	case errors.Is(err, context.Canceled):
		j.info.Status = StatusStopped
		log.Printf("[INFO] job %s stopped after %d candidates", j.info.ID, j.info.Attempts)
	default:
		j.info.Status = StatusFailed
		j.info.Error = err.Error()
		log.Printf("[ERROR] job %s: %v", j.info.ID, err)
	}

	j.finished = true
	j.info.Finished = time.Now()
	info := j.info
	for ch := range j.subs {
		sendDone(ch, info)
		close(ch)
	}
	j.subs = nil
}

// sendDone queues the done message on ch, dropping the oldest candidate if
// the buffer is full. The caller holds the lock, so no other send races it.
func sendDone(ch chan StreamMessage, info JobInfo) {
	msg := StreamMessage{Type: MessageDone, Job: &info}
	for {
		select {
		case ch <- msg:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// prune forgets finished jobs older than the retention. The caller holds
// the lock.
func (m *JobManager) prune(now time.Time) {
	if m.retention <= 0 {
		return
	}
	for id, j := range m.jobs {
		if j.finished && now.Sub(j.info.Finished) >= m.retention {
			delete(m.jobs, id)
		}
	}
}

func (m *JobManager) publish(j *job, e prime.Event) {
	msg := StreamMessage{
		Type:      MessageCandidate,
		Attempt:   e.Attempt,
		Candidate: e.Candidate.String(),
		Accepted:  e.Accepted,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	j.info.Attempts = e.Attempt
	for ch := range j.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Get returns the state of the job with the given id.
func (m *JobManager) Get(id string) (JobInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return JobInfo{}, JobNotFound.New("%q", id)
	}
	return j.info, nil
}

// Wait blocks until the job ends or ctx is done.
func (m *JobManager) Wait(ctx context.Context, id string) (JobInfo, error) {
	m.mu.Lock()
	j, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return JobInfo{}, JobNotFound.New("%q", id)
	}

	select {
	case <-j.done:
	case <-ctx.Done():
		return JobInfo{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return j.info, nil
}

// Stop cancels a running job
func (m *JobManager) Stop(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return JobNotFound.New("%q", id)
	}
	if !j.finished {
		j.cancel()
		j.info.Status = StatusStopping
	}
	return nil
}

// Delete cancels a job and forgets it
func (m *JobManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return JobNotFound.New("%q", id)
	}
	j.cancel()
	delete(m.jobs, id)
	return nil
}

// StopAll cancels every job.
func (m *JobManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		j.cancel()
	}
}

// List returns all jobs, oldest first.
func (m *JobManager) List() []JobInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune(time.Now())

	jobs := make([]JobInfo, 0, len(m.jobs))
	for _, j := range m.jobs {
		jobs = append(jobs, j.info)
	}
	sort.Slice(jobs, func(i, k int) bool {
		if jobs[i].Started.Equal(jobs[k].Started) {
			return jobs[i].ID < jobs[k].ID
		}
		return jobs[i].Started.Before(jobs[k].Started)
	})
	return jobs
}

// Subscribe returns the candidate messages of a job. When the job ends the
// channel receives a done message with the final job state and is closed.
// A finished job yields only the done message. unsubscribe must be called
// when the caller stops reading.
func (m *JobManager) Subscribe(id string) (msgs <-chan StreamMessage, unsubscribe func(), err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, nil, JobNotFound.New("%q", id)
	}

	ch := make(chan StreamMessage, subscriberBuffer)
	if j.finished {
		sendDone(ch, j.info)
		close(ch)
		return ch, func() {}, nil
	}
	j.subs[ch] = struct{}{}

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := j.subs[ch]; ok {
			delete(j.subs, ch)
			close(ch)
		}
	}, nil
}
