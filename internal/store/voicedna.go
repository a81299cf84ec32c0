package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"socialbot-gateway/pkg/models"
)

const VoiceDNAPollInterval = 3 * time.Second

type VoiceDNAAPI interface {
	VoiceDNAStatus(ctx context.Context, id string) (models.VoiceDNAProfile, error)
}

// VoiceDNAWatcher follows one analysis until it is ready or failed. Polling
// and pushed events feed the same transition, so whichever arrives first
// wins and the other is a no-op.
type VoiceDNAWatcher struct {
	api      VoiceDNAAPI
	id       string
	interval time.Duration
	onChange func(models.VoiceDNAProfile)

	mu      sync.Mutex
	profile models.VoiceDNAProfile
	done    chan struct{}
	closed  bool
}

func NewVoiceDNAWatcher(api VoiceDNAAPI, id string, onChange func(models.VoiceDNAProfile)) *VoiceDNAWatcher {
	return &VoiceDNAWatcher{
		api:      api,
		id:       id,
		interval: VoiceDNAPollInterval,
		onChange: onChange,
		profile:  models.VoiceDNAProfile{ID: id, Status: models.VoiceDNAQueued},
		done:     make(chan struct{}),
	}
}

// Done is closed once a terminal status has been observed.
func (w *VoiceDNAWatcher) Done() <-chan struct{} { return w.done }

func (w *VoiceDNAWatcher) Profile() models.VoiceDNAProfile {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.profile
}

// Run polls until a terminal status or ctx is done.
func (w *VoiceDNAWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *VoiceDNAWatcher) poll(ctx context.Context) {
	p, err := w.api.VoiceDNAStatus(ctx, w.id)
	if err != nil {
		logrus.WithField("profile_id", w.id).Debugf("voice dna poll: %v", err)
		return
	}
	w.Update(p)
}

// HandleEvent applies a pushed voice_dna_status event for this profile.
func (w *VoiceDNAWatcher) HandleEvent(ev models.RealtimeEvent) {
	if ev.Channel != models.ChannelVoiceDNAStatus {
		return
	}
	var p models.VoiceDNAProfile
	if err := json.Unmarshal(ev.Data, &p); err != nil || p.ID != w.id {
		return
	}
	w.Update(p)
}

// Update records a status. Anything after the first terminal status, and
// repeats of the current status, are ignored.
func (w *VoiceDNAWatcher) Update(p models.VoiceDNAProfile) bool {
	w.mu.Lock()
	if w.closed || p.Status == "" || (p.Status == w.profile.Status && !p.Status.IsTerminal()) {
		w.mu.Unlock()
		return false
	}
	w.profile = p
	if p.Status.IsTerminal() {
		w.closed = true
		close(w.done)
	}
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(p)
	}
	return true
}
