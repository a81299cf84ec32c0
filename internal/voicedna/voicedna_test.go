package voicedna

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbot-gateway/pkg/models"
)

var playfulSamples = []string{
	"OMG thank you so much!! 💕\n- Mia",
	"Hey you! New drop is live, go check it!! ✨\n- Mia",
	"haha love this, gonna repost! 🙌",
}

var formalSamples = []string{
	"Thank you for contacting our customer service team regarding your recent order and delivery schedule.",
	"We have reviewed your request carefully and will send the requested documentation within two business days.",
	"Please let us know whether the proposed arrangement meets the requirements of your organisation.",
}

func TestAnalyze_Playful(t *testing.T) {
	fp, err := NewAnalyzer(3).Analyze(playfulSamples)
	require.NoError(t, err)

	assert.Greater(t, fp.EmojiRate, 0.5)
	assert.Less(t, fp.Formality, 0.4)
	assert.Contains(t, fp.ToneTags, "casual")
	assert.Contains(t, fp.ToneTags, "emojis_ok")
	assert.Contains(t, fp.ToneTags, "enthusiastic")
	assert.Equal(t, []string{"- Mia"}, fp.Signoffs)
	for _, tag := range fp.ToneTags {
		assert.True(t, ToneTags[tag], "tag %q outside whitelist", tag)
	}
}

func TestAnalyze_Formal(t *testing.T) {
	fp, err := NewAnalyzer(3).Analyze(formalSamples)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, fp.Formality, 0.65)
	assert.Contains(t, fp.ToneTags, "formal")
	assert.Contains(t, fp.ToneTags, "no_emojis")
	assert.NotContains(t, fp.ToneTags, "casual")
	assert.Len(t, fp.TopWords, 5)
}

func TestAnalyze_NotEnoughSamples(t *testing.T) {
	_, err := NewAnalyzer(3).Analyze([]string{"hi", "  "})
	assert.True(t, errors.Is(err, ErrNotEnoughSamples))
}

func TestAdjust(t *testing.T) {
	fp := models.VoiceFingerprint{Formality: 0.9, ToneTags: []string{"formal", "no_emojis"}}

	out, err := Adjust(fp, models.VoiceDNAAdjustRequest{
		Traits:   map[string]float64{TraitFormality: 0.5},
		AddTones: []string{"Casual", "emojis_ok"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Formality)
	assert.ElementsMatch(t, []string{"casual", "emojis_ok"}, out.ToneTags)
	assert.Equal(t, 0.5, out.Adjustments[TraitFormality])
	assert.Equal(t, []string{"formal", "no_emojis"}, fp.ToneTags, "input must not be mutated")

	_, err = Adjust(fp, models.VoiceDNAAdjustRequest{AddTones: []string{"sarcastic"}})
	assert.Error(t, err)
	_, err = Adjust(fp, models.VoiceDNAAdjustRequest{Traits: map[string]float64{"charm": 0.1}})
	assert.Error(t, err)
	_, err = Adjust(fp, models.VoiceDNAAdjustRequest{Traits: map[string]float64{TraitFormality: 2}})
	assert.Error(t, err)
}

func TestExampleReplies(t *testing.T) {
	replies := ExampleReplies(models.VoiceFingerprint{ExclamationRate: 1, EmojiRate: 1, Signoffs: []string{"- Mia"}})
	require.Len(t, replies, 3)
	assert.Equal(t, "Thanks so much for reaching out! ✨", replies[0])
	assert.Contains(t, replies[2], "- Mia")
}

type fakeStore struct {
	mu       sync.Mutex
	samples  []string
	statuses []models.VoiceDNAStatus
	fp       *models.VoiceFingerprint
}

func (s *fakeStore) Samples(context.Context, string) ([]string, error) {
	return s.samples, nil
}

func (s *fakeStore) SetStatus(_ context.Context, id string, status models.VoiceDNAStatus, fp *models.VoiceFingerprint, errMsg string) (models.VoiceDNAProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	if fp != nil {
		s.fp = fp
	}
	return models.VoiceDNAProfile{ID: id, Status: status, Fingerprint: s.fp, Error: errMsg, SampleCount: len(s.samples)}, nil
}

type fakeNotifier struct {
	profiles      []models.VoiceDNAProfile
	notifications []models.Notification
}

func (n *fakeNotifier) NotifyVoiceDNA(p models.VoiceDNAProfile)   { n.profiles = append(n.profiles, p) }
func (n *fakeNotifier) NotifyNotification(x models.Notification) { n.notifications = append(n.notifications, x) }

type fakeNotifications struct{}

func (fakeNotifications) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	n.ID = 1
	return n, nil
}

func TestRunner_ProcessReady(t *testing.T) {
	store := &fakeStore{samples: playfulSamples}
	notifier := &fakeNotifier{}
	r := NewRunner(store, fakeNotifications{}, notifier, NewAnalyzer(3), 0)

	r.Process(context.Background(), "vdna_1")

	assert.Equal(t, []models.VoiceDNAStatus{models.VoiceDNAAnalyzing, models.VoiceDNAReady}, store.statuses)
	require.Len(t, notifier.profiles, 2)
	assert.NotNil(t, notifier.profiles[1].Fingerprint)
	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, models.NotificationVoiceDNAReady, notifier.notifications[0].Type)
}

func TestRunner_ProcessFailed(t *testing.T) {
	store := &fakeStore{samples: []string{"only one"}}
	notifier := &fakeNotifier{}
	r := NewRunner(store, fakeNotifications{}, notifier, NewAnalyzer(3), 0)

	r.Process(context.Background(), "vdna_1")

	assert.Equal(t, []models.VoiceDNAStatus{models.VoiceDNAAnalyzing, models.VoiceDNAFailed}, store.statuses)
	assert.Contains(t, notifier.profiles[1].Error, "not enough writing samples")
	assert.Empty(t, notifier.notifications)
}

func TestRunner_EnqueueFull(t *testing.T) {
	r := NewRunner(&fakeStore{}, nil, nil, NewAnalyzer(1), 0)
	for i := 0; i < cap(r.jobs); i++ {
		require.NoError(t, r.Enqueue("vdna"))
	}
	assert.ErrorIs(t, r.Enqueue("vdna"), ErrQueueFull)
}
