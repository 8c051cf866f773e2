package api

import (
	"context"
	"os"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"taskdeck-api/domain"
)

// ActivityQueue publishes activity records for downstream consumers.
type ActivityQueue interface {
	EnqueueActivity(ctx context.Context, act domain.Activity) error
}

var (
	activityOnce    sync.Once
	activityJobs    chan domain.Activity
	activityWG      sync.WaitGroup
	activityQueue   ActivityQueue
	activityLog     *log.Logger
	activityTimeout time.Duration
	handoffTimeout  time.Duration
	activityBG      = context.Background()
)

func initActivitySender(queue ActivityQueue, logger *log.Logger) {
	activityOnce.Do(func() {
		if logger == nil {
			panic("Logger is not initialized")
		}
		activityQueue = queue
		activityLog = logger

		workers := envInt("ACTIVITY_WORKERS", 8)
		buf := envInt("ACTIVITY_BUFFER", 1024)
		activityTimeout = envDur("ACTIVITY_TIMEOUT", 30*time.Second)
		handoffTimeout = envDur("ACTIVITY_HANDOFF_TIMEOUT", 5*time.Millisecond)

		activityJobs = make(chan domain.Activity, buf)
		for i := 0; i < workers; i++ {
			activityWG.Add(1)
			go activityWorker(i, activityJobs)
		}
		activityLog.Infof("activity sender started, workers: %d, buffer: %d, timeout: %v, handoff: %v", workers, buf, activityTimeout, handoffTimeout)
	})
}

// shutdownActivitySender stops worker goroutines and clears shared state. It is intended for tests.
func shutdownActivitySender() {
	if activityJobs != nil {
		close(activityJobs)
		activityJobs = nil
	}

	activityWG.Wait()

	activityQueue = nil
	activityLog = nil
	activityTimeout = 0
	handoffTimeout = 0
	activityOnce = sync.Once{}
	activityWG = sync.WaitGroup{}
}

func activityWorker(id int, jobs <-chan domain.Activity) {
	defer activityWG.Done()
	for act := range jobs {
		ctx, cancel := context.WithTimeout(activityBG, activityTimeout)
		err := activityQueue.EnqueueActivity(ctx, act)
		cancel()

		if err != nil {
			activityLog.Errorf("activity enqueue failed, err: %v, type: %s, user: %s, worker: %d", err, act.Type, act.UserEmail, id)
		}
	}
}

// publishActivity hands the record to a background worker. The queue is
// best-effort: when the buffer stays saturated past the handoff timeout the
// record is dropped with a warning, never blocking the request.
func publishActivity(act domain.Activity) {
	if activityJobs == nil || activityQueue == nil {
		return
	}
	act.Timestamp = nextTimestamp()

	if ok, closed := trySendActivity(activityJobs, act); ok || closed {
		return
	}

	if handoffTimeout <= 0 {
		dropActivity(act)
		return
	}

	timer := time.NewTimer(handoffTimeout)
	defer timer.Stop()

	if ok, _ := sendActivityWithTimer(activityJobs, act, timer.C); !ok {
		dropActivity(act)
	}
}

func dropActivity(act domain.Activity) {
	if activityLog != nil {
		activityLog.Warnf("activity buffer saturated, dropping record, type: %s, user: %s", act.Type, act.UserEmail)
	}
}

func trySendActivity(ch chan domain.Activity, act domain.Activity) (ok bool, closed bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			closed = true
		}
	}()

	select {
	case ch <- act:
		return true, false
	default:
		return false, false
	}
}

func sendActivityWithTimer(ch chan domain.Activity, act domain.Activity, timer <-chan time.Time) (ok bool, closed bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			closed = true
		}
	}()

	select {
	case ch <- act:
		return true, false
	case <-timer:
		return false, false
	}
}

func envInt(name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDur(name string, def time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
