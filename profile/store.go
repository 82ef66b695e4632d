// Package profile owns the search profiles, the active-profile pointer and
// their persistence through a kv.Gateway.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"search-launcher/kv"
)

// Store serializes every operation on the profile list behind one mutex and
// rewrites the whole record on each mutation.
type Store struct {
	mu      sync.Mutex
	gw      kv.Gateway
	key     string
	log     *zap.Logger
	genID   func() string
	state   State
	editing *Profile
}

type Option func(*Store)

// WithKey overrides the storage key (DefaultKey otherwise).
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithIDGenerator replaces the raw token source used for new profiles.
// Collisions with existing ids are still rejected by the store.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.genID = gen }
}

func NewStore(gw kv.Gateway, opts ...Option) *Store {
	s := &Store{
		gw:    gw,
		key:   DefaultKey,
		log:   zap.NewNop(),
		genID: RandomID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load rehydrates the store from the gateway. An unreachable store, a missing
// key or a record without profiles all fall back to the seed defaults, which
// are persisted right away. seeded reports whether that happened. The returned
// error is only about persisting the seed; the seeded state is served either way.
func (s *Store) Load(ctx context.Context) (seeded bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, found, err := s.gw.Get(ctx, s.key)
	switch {
	case err != nil:
		s.log.Warn("loading profiles failed, using defaults", zap.Error(err))
	case !found:
		s.log.Info("no stored profiles, seeding defaults")
	default:
		st, decErr := decodeState(data)
		if decErr == nil {
			s.adopt(st)
			return false, nil
		}
		s.log.Warn("stored profiles unusable, using defaults", zap.Error(decErr))
	}

	seed := Defaults()
	s.state = State{Profiles: seed, ActiveProfile: seed[0].ID}
	s.editing = nil
	if err := s.persistLocked(ctx); err != nil {
		s.log.Error("persisting default profiles failed", zap.Error(err))
		return true, fmt.Errorf("persist defaults: %w", err)
	}
	return true, nil
}

func decodeState(data []byte) (State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if len(st.Profiles) == 0 {
		return State{}, fmt.Errorf("%w: no profiles", ErrMalformedState)
	}
	return st, nil
}

func (s *Store) adopt(st State) {
	if st.ActiveProfile != "" && !s.hasID(st.Profiles, st.ActiveProfile) {
		s.log.Warn("active profile not found, clearing", zap.String("id", st.ActiveProfile))
		st.ActiveProfile = ""
	}
	s.state = st
	s.editing = nil
}

func (s *Store) hasID(profiles []Profile, id string) bool {
	return lo.ContainsBy(profiles, func(p Profile) bool { return p.ID == id })
}

// State returns a snapshot of the profiles and the active id.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

func (s *Store) Get(id string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Find(s.state.Profiles, func(p Profile) bool { return p.ID == id })
}

// Active returns the active profile, if one is set.
func (s *Store) Active() (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ActiveProfile == "" {
		return Profile{}, false
	}
	return lo.Find(s.state.Profiles, func(p Profile) bool { return p.ID == s.state.ActiveProfile })
}

// Create starts editing a blank candidate with a fresh id and the palette
// color for the current profile count. Nothing is stored until Save.
func (s *Store) Create() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Profile{
		ID:    s.newIDLocked(),
		Color: ColorFor(len(s.state.Profiles)),
	}
	s.editing = &c
	return c
}

// Edit starts editing a copy of an existing profile.
func (s *Store) Edit(id string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := lo.Find(s.state.Profiles, func(p Profile) bool { return p.ID == id })
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.editing = &p
	return p, nil
}

// Editing returns the candidate currently being edited.
func (s *Store) Editing() (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return Profile{}, false
	}
	return *s.editing, true
}

// Cancel drops the candidate being edited.
func (s *Store) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = nil
}

// Normalize trims the editable fields and fills an empty color with the
// default for position n.
func Normalize(p Profile, n int) Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Keywords = strings.TrimSpace(p.Keywords)
	p.Description = strings.TrimSpace(p.Description)
	p.Color = strings.TrimSpace(p.Color)
	if p.Color == "" {
		p.Color = ColorFor(n)
	}
	return p
}

// Validate checks a normalized profile.
func Validate(p Profile) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	case p.Keywords == "":
		return fmt.Errorf("%w: keywords are required", ErrInvalidProfile)
	case !ValidColor(p.Color):
		return fmt.Errorf("%w: color %q is not in the palette", ErrInvalidProfile, p.Color)
	}
	return nil
}

// Save stores p: an existing id is replaced in place, the id of the Create
// candidate (or an empty id) is appended. Any other id is rejected so deleted
// ids never come back. An invalid profile changes nothing and keeps edit mode.
// When persisting fails the in-memory list still holds the change and the
// error wraps kv.ErrStorageUnavailable.
func (s *Store) Save(ctx context.Context, p Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, idx, exists := lo.FindIndexOf(s.state.Profiles, func(x Profile) bool { return x.ID == p.ID })
	if exists && strings.TrimSpace(p.Color) == "" {
		p.Color = existing.Color
	}
	if !exists && p.ID != "" && (s.editing == nil || s.editing.ID != p.ID) {
		return Profile{}, fmt.Errorf("%w: unknown id %s", ErrInvalidProfile, p.ID)
	}

	p = Normalize(p, len(s.state.Profiles))
	if err := Validate(p); err != nil {
		return Profile{}, err
	}
	if p.ID == "" {
		p.ID = s.newIDLocked()
	}

	profiles := make([]Profile, len(s.state.Profiles))
	copy(profiles, s.state.Profiles)
	if exists {
		profiles[idx] = p
	} else {
		profiles = append(profiles, p)
	}

	s.state.Profiles = profiles
	s.editing = nil
	if err := s.persistLocked(ctx); err != nil {
		s.log.Error("saving profile failed", zap.String("id", p.ID), zap.Error(err))
		return p, err
	}
	return p, nil
}

// Delete removes a profile and ends an edit of it. Deleting the active profile
// moves the pointer to the new first profile, or clears it when none remain.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasID(s.state.Profiles, id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	profiles := lo.Filter(s.state.Profiles, func(p Profile, _ int) bool { return p.ID != id })
	active := s.state.ActiveProfile
	if active == id {
		active = ""
		if len(profiles) > 0 {
			active = profiles[0].ID
		}
	}

	s.state = State{Profiles: profiles, ActiveProfile: active}
	if s.editing != nil && s.editing.ID == id {
		s.editing = nil
	}
	if err := s.persistLocked(ctx); err != nil {
		s.log.Error("deleting profile failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// Activate marks id as the active profile and persists.
func (s *Store) Activate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasID(s.state.Profiles, id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.state.ActiveProfile = id
	if err := s.persistLocked(ctx); err != nil {
		s.log.Error("activating profile failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// Reset removes the stored record and restores the defaults in memory. The
// defaults are written back on the next mutation or the next Load.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gw.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("remove stored profiles: %w", err)
	}
	seed := Defaults()
	s.state = State{Profiles: seed, ActiveProfile: seed[0].ID}
	s.editing = nil
	return nil
}

// persistLocked writes the whole state under the store key.
// Caller must hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.state)
	if err != nil {
		return err
	}
	return s.gw.Set(ctx, s.key, data)
}

func (s *Store) newIDLocked() string {
	taken := func(id string) bool {
		if s.editing != nil && s.editing.ID == id {
			return true
		}
		return s.hasID(s.state.Profiles, id)
	}
	return NewID(s.genID, taken)
}
