// Package session owns the client-side login state: the persisted session
// record and the state machine driven by login, registration and logout.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/looplab/fsm"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/transportease/internal/auth"
	"github.com/ukydev/transportease/internal/client"
	"github.com/ukydev/transportease/internal/models"
)

// State of the facade.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateError          State = "error"
)

const (
	eventBegin   = "begin"
	eventSucceed = "succeed"
	eventFail    = "fail"
	eventLogout  = "logout"
)

const (
	loginFallback    = "Login failed"
	registerFallback = "Registration failed"
)

var allStates = []string{
	string(StateAnonymous),
	string(StateAuthenticating),
	string(StateAuthenticated),
	string(StateError),
}

// Authenticator performs the login and registration calls.
// *client.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, role models.Role, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	RegisterOwner(ctx context.Context, req models.OwnerRegisterRequest) (*models.AuthResponse, error)
}

// Snapshot is what subscribers receive on every state change.
type Snapshot struct {
	State State
	User  *models.User
	Error string
}

// Facade wraps the auth endpoints and persists the resulting session.
// It is safe for concurrent use.
type Facade struct {
	api   Authenticator
	store Store
	log   log.FieldLogger
	now   func() time.Time

	mu      sync.Mutex
	machine *fsm.FSM
	user    *models.User
	lastErr string

	subMu   sync.Mutex
	subs    map[uint64]func(Snapshot)
	nextSub uint64
}

// Option configures a Facade.
type Option func(*Facade)

func WithLogger(l log.FieldLogger) Option {
	return func(f *Facade) { f.log = l }
}

// WithClock overrides the clock used to check stored token expiry.
func WithClock(now func() time.Time) Option {
	return func(f *Facade) { f.now = now }
}

// NewFacade creates a facade and hydrates it from store. A record that
// cannot be parsed, carries an unknown role or an expired token is removed
// and the facade starts anonymous.
func NewFacade(api Authenticator, store Store, opts ...Option) *Facade {
	f := &Facade{
		api:   api,
		store: store,
		log:   log.StandardLogger(),
		now:   time.Now,
		subs:  make(map[uint64]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(f)
	}

	initial := StateAnonymous
	if u := f.hydrate(); u != nil {
		f.user = u
		initial = StateAuthenticated
	}

	f.machine = fsm.NewFSM(
		string(initial),
		fsm.Events{
			{Name: eventBegin, Src: allStates, Dst: string(StateAuthenticating)},
			{Name: eventSucceed, Src: allStates, Dst: string(StateAuthenticated)},
			{Name: eventFail, Src: allStates, Dst: string(StateError)},
			{Name: eventLogout, Src: allStates, Dst: string(StateAnonymous)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				f.log.WithFields(log.Fields{
					"event": e.Event,
					"from":  e.Src,
					"to":    e.Dst,
				}).Debug("Session state changed")
			},
		},
	)
	return f
}

func (f *Facade) hydrate() *models.User {
	u, err := f.store.Load()
	switch {
	case errors.Is(err, ErrNoSession):
		return nil
	case err != nil:
		f.discard(err, "Discarding unreadable session")
		return nil
	}

	if !models.IsValidRole(u.Role) {
		f.discard(nil, "Discarding session with invalid role")
		return nil
	}
	if u.Token != "" && errors.Is(auth.CheckExpiry(u.Token, f.now()), auth.ErrExpiredToken) {
		f.discard(auth.ErrExpiredToken, "Discarding expired session")
		return nil
	}
	return u
}

func (f *Facade) discard(cause error, msg string) {
	entry := f.log.WithField("store", "session")
	if cause != nil {
		entry = entry.WithError(cause)
	}
	entry.Debug(msg)
	if err := f.store.Clear(); err != nil {
		f.log.WithError(err).Warn("Failed to clear session")
	}
}

// State returns the current state.
func (f *Facade) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State(f.machine.Current())
}

// Current returns a copy of the signed-in user, or nil.
func (f *Facade) Current() *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyUser(f.user)
}

// LastError returns the message of the last failed attempt.
func (f *Facade) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Snapshot returns the current state, user and error message.
func (f *Facade) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Facade) snapshotLocked() Snapshot {
	return Snapshot{
		State: State(f.machine.Current()),
		User:  copyUser(f.user),
		Error: f.lastErr,
	}
}

// Subscribe registers fn for state changes. The returned func removes it.
// fn runs on the goroutine that caused the change and must not block.
func (f *Facade) Subscribe(fn func(Snapshot)) (cancel func()) {
	f.subMu.Lock()
	defer f.subMu.Unlock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			f.subMu.Lock()
			defer f.subMu.Unlock()
			delete(f.subs, id)
		})
	}
}

func (f *Facade) notify(s Snapshot) {
	f.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// transition fires event and notifies subscribers when the state changed.
// mutate runs under the lock before the event.
func (f *Facade) transition(ctx context.Context, event string, mutate func()) {
	f.mu.Lock()
	if mutate != nil {
		mutate()
	}
	before := f.machine.Current()
	err := f.machine.Event(context.WithoutCancel(ctx), event)
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		f.log.WithError(err).WithField("event", event).Warn("Unexpected session transition")
	}
	snap := f.snapshotLocked()
	changed := before != f.machine.Current() || mutate != nil
	f.mu.Unlock()

	if changed {
		f.notify(snap)
	}
}

// Login signs in with email and password against the role's endpoint.
// Validation failures return a *auth.ValidationError and leave the state
// untouched.
func (f *Facade) Login(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	if err := validateRole(role); err != nil {
		return nil, err
	}
	req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := auth.Validate(req); err != nil {
		return nil, err
	}

	f.transition(ctx, eventBegin, nil)
	resp, err := f.api.Login(ctx, role, req)
	if err != nil {
		return nil, f.fail(ctx, err, loginFallback)
	}
	return f.complete(ctx, resp, role, req.Email, usernameFromEmail(req.Email))
}

// Register creates an account with the minimum fields for role and signs
// in with it. Owners are registered with username as their name.
func (f *Facade) Register(ctx context.Context, username, email, password string, role models.Role) (*models.User, error) {
	if err := validateRole(role); err != nil {
		return nil, err
	}
	if role == models.RoleOwner {
		return f.RegisterOwner(ctx, models.OwnerRegisterRequest{
			Name:     username,
			Email:    email,
			Password: password,
		})
	}
	return f.RegisterUser(ctx, models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
}

// RegisterUser registers a traveller.
func (f *Facade) RegisterUser(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := auth.Validate(req); err != nil {
		return nil, err
	}

	f.transition(ctx, eventBegin, nil)
	resp, err := f.api.Register(ctx, req)
	if err != nil {
		return nil, f.fail(ctx, err, registerFallback)
	}

	name := req.Username
	if name == "" {
		name = strings.TrimSpace(req.FirstName + " " + req.LastName)
	}
	return f.complete(ctx, resp, models.RoleUser, req.Email, name)
}

// RegisterOwner registers a vehicle owner.
func (f *Facade) RegisterOwner(ctx context.Context, req models.OwnerRegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := auth.Validate(req); err != nil {
		return nil, err
	}

	f.transition(ctx, eventBegin, nil)
	resp, err := f.api.RegisterOwner(ctx, req)
	if err != nil {
		return nil, f.fail(ctx, err, registerFallback)
	}
	return f.complete(ctx, resp, models.RoleOwner, req.Email, req.Name)
}

// Logout clears the persisted session and returns to anonymous. The state
// changes even when the store fails to clear.
func (f *Facade) Logout() error {
	err := f.store.Clear()
	if err != nil {
		f.log.WithError(err).Warn("Failed to clear session")
	}
	f.transition(context.Background(), eventLogout, func() {
		f.user = nil
		f.lastErr = ""
	})
	return err
}

func (f *Facade) complete(ctx context.Context, resp *models.AuthResponse, role models.Role, email, username string) (*models.User, error) {
	u := &models.User{
		ID:       resp.ID,
		Username: resp.Username,
		Email:    resp.Email,
		Role:     role,
		Token:    resp.Token,
	}
	if u.Email == "" {
		u.Email = email
	}
	if u.Username == "" {
		u.Username = username
	}
	if u.ID == "" {
		u.ID = u.Email
	}
	if serverRole, ok := models.ParseRole(resp.Role); ok && serverRole != role {
		f.log.WithFields(log.Fields{
			"requested": role,
			"returned":  serverRole,
		}).Warn("API returned a different role")
	}

	if err := f.store.Save(u); err != nil {
		return nil, f.fail(ctx, err, "Failed to save session")
	}

	f.transition(ctx, eventSucceed, func() {
		f.user = u
		f.lastErr = ""
	})
	f.log.WithFields(log.Fields{
		"email": u.Email,
		"role":  u.Role,
	}).Info("Signed in")
	return copyUser(u), nil
}

// fail moves to the error state. The message is the API's when it sent one.
func (f *Facade) fail(ctx context.Context, err error, fallback string) error {
	msg := fallback
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	f.log.WithError(err).Warn(fallback)
	f.transition(ctx, eventFail, func() {
		f.lastErr = msg
	})
	return err
}

func validateRole(role models.Role) error {
	if models.IsValidRole(role) {
		return nil
	}
	verr := &auth.ValidationError{}
	verr.Add("role", "Role must be user or owner")
	return verr
}

func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
