package profile

import "errors"

// Profile is a named search configuration.
type Profile struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Keywords    string `json:"keywords" yaml:"keywords"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string `json:"color" yaml:"color"`
}

// State is the full persistent record.
type State struct {
	Profiles      []Profile `json:"profiles" yaml:"profiles"`
	ActiveProfile string    `json:"activeProfile,omitempty" yaml:"activeProfile,omitempty"`
}

// DefaultKey is the storage key the state is persisted under.
const DefaultKey = "upworkSearchData"

var (
	ErrNotFound       = errors.New("profile not found")
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrMalformedState marks a persisted record that is absent or has no
	// profiles; it is treated as uninitialized, never surfaced as fatal.
	ErrMalformedState = errors.New("malformed persisted state")
)

func copyState(s State) State {
	profiles := make([]Profile, len(s.Profiles))
	copy(profiles, s.Profiles)
	return State{Profiles: profiles, ActiveProfile: s.ActiveProfile}
}
