// Package session is the single writer of the client's authentication state.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"dokta/client"
	"dokta/models"
	"dokta/phone"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const logoutTimeout = 5 * time.Second

// Session is the current token and profile. The zero value is signed out.
type Session struct {
	Token string
	User  *models.User
}

// Authenticated reports whether the session carries a token and a user.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Store owns the session. Other components read it through client.TokenSource
// or Subscribe and never write it.
type Store struct {
	api    *client.Client
	kv     KeyValueStore
	logger *zap.Logger

	mu      sync.RWMutex
	current Session
	subs    map[int]func(Session)
	nextSub int
}

func New(api *client.Client, kv KeyValueStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{api: api, kv: kv, logger: logger, subs: map[int]func(Session){}}
}

func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token satisfies client.TokenSource.
func (s *Store) Token() string {
	return s.Current().Token
}

// Subscribe registers fn for every session change and returns its canceller.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) publish(next Session) {
	s.mu.Lock()
	s.current = next
	subs := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(next)
	}
}

// Restore loads a persisted session. Missing data leaves the store signed out;
// corrupt data is discarded.
func (s *Store) Restore() Session {
	token, okTok, err := s.kv.Get(KeyToken)
	if err != nil {
		s.logger.Warn("session: cannot read stored token, discarding", zap.Error(err))
		s.clearStorage()
		return Session{}
	}
	rawUser, okUser, err := s.kv.Get(KeyUser)
	if err != nil || !okTok || !okUser || token == "" {
		if err != nil {
			s.logger.Warn("session: cannot read stored user, discarding", zap.Error(err))
			s.clearStorage()
		}
		return Session{}
	}
	var u models.User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil || u.ID == "" {
		s.logger.Warn("session: stored user is corrupt, discarding", zap.Error(err))
		s.clearStorage()
		return Session{}
	}
	sess := Session{Token: token, User: &u}
	s.publish(sess)
	return sess
}

func (s *Store) persist(sess Session) error {
	raw, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	if err := s.kv.Set(KeyToken, sess.Token); err != nil {
		return err
	}
	return s.kv.Set(KeyUser, string(raw))
}

func (s *Store) clearStorage() {
	if err := s.kv.Delete(KeyToken, KeyUser); err != nil {
		s.logger.Error("session: failed to clear storage", zap.Error(err))
	}
}

func (s *Store) accept(resp models.TokenResponse) (*models.User, error) {
	if resp.AccessToken == "" {
		return nil, &client.AuthError{Message: "réponse d'authentification invalide"}
	}
	u := resp.UserData
	sess := Session{Token: resp.AccessToken, User: &u}
	if err := s.persist(sess); err != nil {
		// The session stays usable in memory even when it cannot be saved.
		s.logger.Error("session: failed to persist session", zap.Error(err))
	}
	s.publish(sess)
	return &u, nil
}

func authFailure(err error, fallback string) error {
	var se *client.StatusError
	if errors.As(err, &se) && se.Status >= 400 && se.Status < 500 {
		msg := se.Message
		if msg == "" {
			msg = fallback
		}
		return &client.AuthError{Message: msg, Err: err}
	}
	return err
}

// Login authenticates with a phone number and password.
func (s *Store) Login(ctx context.Context, tel, password string) (*models.User, error) {
	canonical, err := phone.Parse(tel)
	if err != nil {
		return nil, &client.ValidationError{Field: "telephone", Message: "Numéro de téléphone invalide (+237 suivi de 9 chiffres)"}
	}
	if password == "" {
		return nil, &client.ValidationError{Field: "mot_de_passe", Message: "Le mot de passe est requis"}
	}

	var resp models.TokenResponse
	err = s.api.Post(ctx, "/api/auth/login", models.LoginRequest{Telephone: canonical, MotDePasse: password}, &resp)
	if err != nil {
		return nil, authFailure(err, "Numéro de téléphone ou mot de passe incorrect")
	}
	return s.accept(resp)
}

// Register validates the role-specific profile locally and creates the account.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		var fe *models.FieldError
		if errors.As(err, &fe) {
			return nil, &client.ValidationError{Field: fe.Field, Message: fe.Message}
		}
		return nil, &client.ValidationError{Message: err.Error()}
	}
	if req.TypeUtilisateur == models.UserTypeDoctor && strings.TrimSpace(req.Diplomes) == "" {
		return nil, &client.ValidationError{Field: "diplomes", Message: "Les diplômes sont requis"}
	}

	var resp models.TokenResponse
	if err := s.api.Post(ctx, "/api/auth/register", req, &resp); err != nil {
		return nil, authFailure(err, "Inscription refusée")
	}
	return s.accept(resp)
}

// Logout asks the backend to revoke the token, then forgets the session
// locally. A failed revocation is only logged; Logout never fails.
func (s *Store) Logout(ctx context.Context) {
	if s.Current().Authenticated() {
		ctx, cancel := context.WithTimeout(ctx, logoutTimeout)
		if err := s.api.Post(ctx, "/api/auth/logout", nil, nil); err != nil {
			s.logger.Warn("session: token revocation failed", zap.Error(err))
		}
		cancel()
	}
	s.clearStorage()
	s.publish(Session{})
}

// UpdateProfile sends a partial update, then stores the canonical profile.
func (s *Store) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	cur := s.Current()
	if !cur.Authenticated() {
		return nil, &client.AuthError{Message: "Vous devez être connecté pour modifier votre profil"}
	}
	if upd.Age != nil {
		if err := models.ValidateAge(*upd.Age); err != nil {
			return nil, &client.ValidationError{Field: "age", Message: "L'âge doit être compris entre 1 et 120"}
		}
	}
	if upd.Tarif != nil && *upd.Tarif < models.MinimumDoctorFee {
		return nil, &client.ValidationError{Field: "tarif", Message: fmt.Sprintf("Le tarif minimum est de %d FCFA", models.MinimumDoctorFee)}
	}

	if err := s.api.Put(ctx, "/api/auth/profile", upd, nil); err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) {
			return nil, &client.AuthError{Message: "Session expirée", Err: err}
		}
		var ne *client.NetworkError
		if errors.As(err, &ne) {
			return nil, err
		}
		return nil, &client.SaveError{Op: "update profile", Err: err}
	}
	return s.Refresh(ctx)
}

// Refresh re-fetches the profile for the current token.
func (s *Store) Refresh(ctx context.Context) (*models.User, error) {
	cur := s.Current()
	if !cur.Authenticated() {
		return nil, &client.AuthError{Message: "Vous devez être connecté"}
	}
	var u models.User
	if err := s.api.Get(ctx, "/api/auth/me", nil, &u); err != nil {
		return nil, authFailure(err, "Session expirée")
	}
	next := Session{Token: cur.Token, User: &u}
	if err := s.persist(next); err != nil {
		s.logger.Error("session: failed to persist profile", zap.Error(err))
	}
	s.publish(next)
	return &u, nil
}
