// Package analysis runs the background document analysis pipeline. Analysis
// is mocked: after a simulated processing delay each document receives a
// fixed structured result. The pipeline is a bounded worker pool so a burst
// of uploads cannot spawn unbounded goroutines.
package analysis

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/nyayamitra/nyaya-mitra/internal/queue"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
	queue_publisher "github.com/nyayamitra/nyaya-mitra/internal/service"
)

// Result is the document analysis payload in its client-facing shape.
type Result struct {
	Summary         string              `json:"summary"`
	KeyPoints       []string            `json:"keyPoints"`
	Entities        map[string][]string `json:"entities"`
	LegalReferences []string            `json:"legalReferences"`
	ConfidenceScore float64             `json:"confidenceScore"`
	ProcessingTime  float64             `json:"processingTime"`
}

// MockResult returns the canned analysis every document receives until a
// real model is wired in.
func MockResult() Result {
	return Result{
		Summary: "This document appears to be a legal document containing important information about legal proceedings.",
		KeyPoints: []string{
			"Document contains legal terminology and references",
			"Multiple parties are mentioned in the document",
			"Specific dates and deadlines are referenced",
			"Legal procedures and requirements are outlined",
		},
		Entities: map[string][]string{
			"persons":       {"John Doe", "Jane Smith"},
			"organizations": {"Supreme Court", "District Court"},
			"dates":         {"2024-01-15", "2024-02-20"},
			"locations":     {"New Delhi", "Mumbai"},
		},
		LegalReferences: []string{"Section 420 IPC", "Article 21 of Constitution"},
		ConfidenceScore: 0.85,
		ProcessingTime:  2.1,
	}
}

// Job identifies one document waiting for analysis.
type Job struct {
	DocumentID uint64
	UserID     uint64
	Filename   string
}

// Analyzer owns the worker pool. Construct with NewAnalyzer, call Start
// once, Enqueue per upload, and Stop during shutdown to drain in-flight
// jobs.
type Analyzer struct {
	docs          *repository.DocumentRepo
	notifications *repository.NotificationRepo
	delay         time.Duration
	jobs          chan Job
	wg            sync.WaitGroup

	// publish is swapped out in tests; by default events go to RabbitMQ.
	publish func(context.Context, queue.DocumentAnalyzedEvent) error
}

func NewAnalyzer(docs *repository.DocumentRepo, notifications *repository.NotificationRepo, delay time.Duration) *Analyzer {
	return &Analyzer{
		docs:          docs,
		notifications: notifications,
		delay:         delay,
		jobs:          make(chan Job, 64),
		publish:       queue_publisher.PublishDocumentAnalyzed,
	}
}

// Start launches the worker goroutines.
func (a *Analyzer) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		a.wg.Add(1)
		go a.worker()
	}
}

// Stop closes the intake and waits for workers to finish the jobs already
// accepted. Call at most once, after all enqueuers have stopped.
func (a *Analyzer) Stop() {
	close(a.jobs)
	a.wg.Wait()
}

// Enqueue hands a document to the pool without blocking the request. When
// the buffer is full the document is marked failed immediately so the client
// sees a terminal status instead of a row stuck in processing.
func (a *Analyzer) Enqueue(job Job) {
	select {
	case a.jobs <- job:
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.docs.Fail(ctx, job.DocumentID, "analysis queue is full, please retry"); err != nil {
			log.Printf("analyzer: failed to mark overflow document %d: %v", job.DocumentID, err)
		}
	}
}

func (a *Analyzer) worker() {
	defer a.wg.Done()
	for job := range a.jobs {
		a.process(job)
	}
}

func (a *Analyzer) process(job Job) {
	time.Sleep(a.delay)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res := MockResult()
	up, err := marshalUpdate(res)
	if err == nil {
		err = a.docs.Complete(ctx, job.DocumentID, up)
	}
	if err != nil {
		log.Printf("analyzer: document %d failed: %v", job.DocumentID, err)
		if failErr := a.docs.Fail(ctx, job.DocumentID, err.Error()); failErr != nil {
			log.Printf("analyzer: could not record failure for document %d: %v", job.DocumentID, failErr)
		}
		_ = a.publish(ctx, queue.DocumentAnalyzedEvent{
			DocumentID:   job.DocumentID,
			UserID:       job.UserID,
			Filename:     job.Filename,
			Status:       "failed",
			ErrorMessage: err.Error(),
			FinishedAt:   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	// Notification insert is fire and forget.
	if err := a.notifications.Create(ctx, job.UserID,
		"Document Analysis Complete",
		"Your document \""+job.Filename+"\" has been analyzed successfully.",
		"success", "documents", "normal"); err != nil {
		log.Printf("analyzer: notification for document %d failed: %v", job.DocumentID, err)
	}

	_ = a.publish(ctx, queue.DocumentAnalyzedEvent{
		DocumentID: job.DocumentID,
		UserID:     job.UserID,
		Filename:   job.Filename,
		Status:     "completed",
		Confidence: res.ConfidenceScore,
		FinishedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

func marshalUpdate(res Result) (repository.AnalysisUpdate, error) {
	keyPoints, err := json.Marshal(res.KeyPoints)
	if err != nil {
		return repository.AnalysisUpdate{}, err
	}
	entities, err := json.Marshal(res.Entities)
	if err != nil {
		return repository.AnalysisUpdate{}, err
	}
	refs, err := json.Marshal(res.LegalReferences)
	if err != nil {
		return repository.AnalysisUpdate{}, err
	}
	full, err := json.Marshal(res)
	if err != nil {
		return repository.AnalysisUpdate{}, err
	}
	return repository.AnalysisUpdate{
		Summary:         res.Summary,
		KeyPoints:       string(keyPoints),
		Entities:        string(entities),
		LegalReferences: string(refs),
		Result:          string(full),
		Confidence:      res.ConfidenceScore,
		ProcessingTime:  res.ProcessingTime,
	}, nil
}
