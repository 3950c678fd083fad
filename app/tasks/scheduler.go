package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/rss-pull/app/database"
	"github.com/lysyi3m/rss-pull/app/feed"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	taskQueueSize = 300
	taskTimeout   = 5 * time.Minute
)

// ErrTaskPending is returned when a task of the same type for the same feed
// is already queued, running or waiting for a retry.
var ErrTaskPending = errors.New("task already pending")

// Deps are the collaborators every task is built from.
type Deps struct {
	ConfigCache   *feed.ConfigCache
	FeedRepo      database.FeedRepository
	ArticleRepo   database.ArticleRepository
	Fetcher       Fetcher
	Extractor     Extractor
	Callback      Callback
	ParserOptions []feed.Option
}

type Scheduler struct {
	deps        Deps
	parsers     map[feed.Format]*feed.Parser
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu      sync.Mutex
	pending map[string]bool
}

func NewScheduler(deps Deps, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if deps.Callback == nil {
		deps.Callback = LogCallback{}
	}

	parsers := make(map[feed.Format]*feed.Parser)
	for _, format := range []feed.Format{feed.FormatAuto, feed.FormatRSS2, feed.FormatAtom} {
		parsers[format] = feed.NewParser(format, deps.ParserOptions...)
	}

	return &Scheduler{
		deps:        deps,
		parsers:     parsers,
		interval:    interval,
		workerCount: max(workerCount, 1),
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, taskQueueSize),
		pending:     make(map[string]bool),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// EnqueueTask queues a task unless one of the same type for the same feed
// is still pending. The claim is released once the task finishes for good.
func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if !s.claim(task) {
		return ErrTaskPending
	}
	if err := s.enqueue(task); err != nil {
		s.release(task)
		return err
	}
	return nil
}

func pendingKey(taskType TaskType, feedName string) string {
	return string(taskType) + ":" + feedName
}

func (s *Scheduler) claim(task TaskInterface) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pendingKey(task.GetType(), task.GetFeedName())
	if s.pending[key] {
		return false
	}
	s.pending[key] = true
	return true
}

func (s *Scheduler) release(task TaskInterface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, pendingKey(task.GetType(), task.GetFeedName()))
}

func (s *Scheduler) isPending(taskType TaskType, feedName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[pendingKey(taskType, feedName)]
}

func (s *Scheduler) enqueue(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) EnqueueSync(feedConfig *feed.Config) (TaskInterface, error) {
	task := NewSyncFeedConfigTask(feedConfig.Name, feedConfig, s.deps.FeedRepo)
	return task, s.EnqueueTask(task)
}

func (s *Scheduler) EnqueueLoad(feedConfig *feed.Config) (TaskInterface, error) {
	task, err := s.newLoadTask(feedConfig)
	if err != nil {
		return nil, err
	}
	return task, s.EnqueueTask(task)
}

func (s *Scheduler) newLoadTask(feedConfig *feed.Config) (*LoadFeedTask, error) {
	format, err := feed.ParseFormat(feedConfig.Format)
	if err != nil {
		return nil, err
	}

	return NewLoadFeedTask(feedConfig.Name, feedConfig, s.deps.Fetcher, s.parsers[format],
		s.deps.FeedRepo, s.deps.ArticleRepo, s.deps.Callback), nil
}

func (s *Scheduler) enqueueStartupTasks() {
	feedConfigs := s.deps.ConfigCache.GetConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No feed configurations found")
		return
	}

	slog.Debug("Processing feed configurations", "count", len(feedConfigs))

	for _, feedConfig := range feedConfigs {
		if _, err := s.EnqueueSync(feedConfig); err != nil && !errors.Is(err, ErrTaskPending) {
			slog.Warn("Failed to enqueue SyncFeedConfigTask", "feed", feedConfig.Name, "error", err)
			continue
		}

		if !feedConfig.Settings.Enabled {
			slog.Debug("Feed disabled, skipping LoadFeedTask", "feed", feedConfig.Name)
			continue
		}

		if _, err := s.EnqueueLoad(feedConfig); err != nil && !errors.Is(err, ErrTaskPending) {
			slog.Warn("Failed to enqueue LoadFeedTask", "feed", feedConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	feedConfigs := s.deps.ConfigCache.GetEnabledConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No enabled feed configurations found")
		return
	}

	slog.Debug("Processing enabled feed configurations for task scheduling", "count", len(feedConfigs))

	now := time.Now().UTC()
	for _, feedConfig := range feedConfigs {
		stored, err := s.deps.FeedRepo.GetFeed(feedConfig.Name)
		if err != nil {
			slog.Warn("Failed to get feed from database, skipping", "feed", feedConfig.Name, "error", err)
			continue
		}
		if stored == nil {
			slog.Warn("Feed not found in database, skipping", "feed", feedConfig.Name)
			continue
		}

		if s.isPending(TaskTypeLoadFeed, feedConfig.Name) {
			slog.Debug("LoadFeedTask still pending, skipping", "feed", feedConfig.Name)
		} else if isDue(stored, now) {
			if _, err := s.EnqueueLoad(feedConfig); err != nil && !errors.Is(err, ErrTaskPending) {
				slog.Warn("Failed to enqueue LoadFeedTask", "feed", feedConfig.Name, "error", err)
			}
		} else {
			slog.Debug("Feed not due for refresh yet", "feed", feedConfig.Name, "next_fetch_at", stored.NextFetchAt)
		}

		if feedConfig.Settings.ExtractContent && s.deps.Extractor != nil {
			extractTask := NewExtractContentTask(feedConfig.Name, feedConfig, s.deps.Fetcher, s.deps.Extractor, s.deps.ArticleRepo)
			if err := s.EnqueueTask(extractTask); errors.Is(err, ErrTaskPending) {
				slog.Debug("ExtractContentTask still pending, skipping", "feed", feedConfig.Name)
			} else if err != nil {
				slog.Warn("Failed to enqueue ExtractContentTask", "feed", feedConfig.Name, "error", err)
			}
		}
	}
}

func isDue(stored *database.Feed, now time.Time) bool {
	return stored.NextFetchAt == nil || !stored.NextFetchAt.After(now)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.release(task)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		s.release(task)
		return
	}

	task.IncrementRetryCount()
	delay := retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "feed", task.GetFeedName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			s.release(task)
		case <-timer.C:
			if retryErr := s.enqueue(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				s.release(task)
			}
		}
	}()
}
