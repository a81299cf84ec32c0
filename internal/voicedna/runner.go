package voicedna

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"socialbot-gateway/pkg/models"
)

var ErrQueueFull = errors.New("voice dna queue is full")

// ProfileStore is the persistence the runner needs.
type ProfileStore interface {
	Samples(ctx context.Context, id string) ([]string, error)
	SetStatus(ctx context.Context, id string, status models.VoiceDNAStatus, fp *models.VoiceFingerprint, errMsg string) (models.VoiceDNAProfile, error)
}

// Notifier receives every status change and the notifications it creates.
type Notifier interface {
	NotifyVoiceDNA(p models.VoiceDNAProfile)
	NotifyNotification(n models.Notification)
}

// NotificationStore persists the "voice DNA ready" notification.
type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
}

// Runner analyzes queued profiles on a small worker pool, moving each
// through queued → analyzing → ready | failed.
type Runner struct {
	store         ProfileStore
	notifications NotificationStore
	notifier      Notifier
	analyzer      *Analyzer
	// delay is how long a profile stays in analyzing before the result is
	// written, so clients polling the status see the transition.
	delay time.Duration

	jobs chan string
	wg   sync.WaitGroup
}

func NewRunner(store ProfileStore, notifications NotificationStore, notifier Notifier, analyzer *Analyzer, delay time.Duration) *Runner {
	return &Runner{
		store:         store,
		notifications: notifications,
		notifier:      notifier,
		analyzer:      analyzer,
		delay:         delay,
		jobs:          make(chan string, 100),
	}
}

// Start launches workers that stop when ctx is done.
func (r *Runner) Start(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-r.jobs:
					r.Process(ctx, id)
				}
			}
		}()
	}
}

// Wait blocks until every worker has exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Enqueue schedules a profile for analysis without blocking.
func (r *Runner) Enqueue(id string) error {
	select {
	case r.jobs <- id:
		return nil
	default:
		return ErrQueueFull
	}
}

// Process runs one analysis synchronously.
func (r *Runner) Process(ctx context.Context, id string) {
	log := logrus.WithField("profile_id", id)

	p, err := r.store.SetStatus(ctx, id, models.VoiceDNAAnalyzing, nil, "")
	if err != nil {
		log.Errorf("mark analyzing: %v", err)
		return
	}
	r.push(p)

	if r.delay > 0 {
		select {
		case <-ctx.Done():
			r.fail(context.Background(), id, "analysis cancelled")
			return
		case <-time.After(r.delay):
		}
	}

	samples, err := r.store.Samples(ctx, id)
	if err != nil {
		r.fail(ctx, id, fmt.Sprintf("load samples: %v", err))
		return
	}
	fp, err := r.analyzer.Analyze(samples)
	if err != nil {
		r.fail(ctx, id, err.Error())
		return
	}

	p, err = r.store.SetStatus(ctx, id, models.VoiceDNAReady, &fp, "")
	if err != nil {
		log.Errorf("mark ready: %v", err)
		return
	}
	log.Infof("voice dna ready with tones %v", fp.ToneTags)
	r.push(p)
	r.notify(ctx, models.Notification{
		Type:  models.NotificationVoiceDNAReady,
		Title: "Voice DNA ready",
		Body:  fmt.Sprintf("Your brand voice analysis finished with %d samples.", p.SampleCount),
		Link:  "/intelligence/voice-dna/" + id,
	})
}

func (r *Runner) fail(ctx context.Context, id, reason string) {
	logrus.WithField("profile_id", id).Warnf("voice dna failed: %s", reason)
	p, err := r.store.SetStatus(ctx, id, models.VoiceDNAFailed, nil, reason)
	if err != nil {
		logrus.WithField("profile_id", id).Errorf("mark failed: %v", err)
		return
	}
	r.push(p)
}

func (r *Runner) push(p models.VoiceDNAProfile) {
	if r.notifier != nil {
		r.notifier.NotifyVoiceDNA(p)
	}
}

func (r *Runner) notify(ctx context.Context, n models.Notification) {
	if r.notifications == nil {
		return
	}
	created, err := r.notifications.Create(ctx, n)
	if err != nil {
		logrus.Errorf("create notification: %v", err)
		return
	}
	if r.notifier != nil {
		r.notifier.NotifyNotification(created)
	}
}
