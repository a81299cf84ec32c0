// Package store holds client-side application state: the stores behind
// each screen and the persisted login session.
package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"socialbot-gateway/internal/client"
	"socialbot-gateway/pkg/models"
)

// AppState is built once and handed to whatever drives the client.
type AppState struct {
	Client   *client.Client
	Sessions *SessionRepository
	Toaster  Toaster

	Automations   *AutomationStore
	Notifications *NotificationStore
	Credits       *CreditStore
	Memory        *MemoryStore
}

// NewAppState wires the stores to the client. A 401 from any call clears the
// persisted session.
func NewAppState(c *client.Client, sessions *SessionRepository, toaster Toaster) *AppState {
	if toaster == nil {
		toaster = LogToaster{}
	}
	c.OnUnauthorized = func() {
		if err := sessions.Clear(); err != nil {
			logrus.Errorf("clear session after 401: %v", err)
		}
		toaster.Toast(Toast{Title: "Signed out", Description: "Your session is no longer valid. Log in again.", Variant: ToastDestructive})
	}
	return &AppState{
		Client:        c,
		Sessions:      sessions,
		Toaster:       toaster,
		Automations:   NewAutomationStore(c, toaster),
		Notifications: NewNotificationStore(c, toaster),
		Credits:       NewCreditStore(c, toaster),
		Memory:        NewMemoryStore(c, toaster),
	}
}

// Login verifies the token with the server and persists the session.
func (a *AppState) Login(ctx context.Context, token string) (models.User, error) {
	a.Client.SetToken(token)
	user, err := a.Client.Me(ctx)
	if err != nil {
		return models.User{}, err
	}
	if err := a.Sessions.Save(Session{User: user, Authenticated: true}); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// RequireSession loads the session and fails when it is missing or idle
// for too long; otherwise it records activity.
func (a *AppState) RequireSession() (Session, error) {
	s, err := a.Sessions.Load()
	if err != nil {
		return Session{}, err
	}
	if !s.Authenticated {
		return Session{}, fmt.Errorf("not logged in, run the login command first")
	}
	if err := a.Sessions.Touch(); err != nil {
		logrus.Warnf("touch session: %v", err)
	}
	return s, nil
}

func (a *AppState) Logout() error {
	return a.Sessions.Clear()
}
