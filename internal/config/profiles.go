package config

import (
	"fmt"
	"sync"
)

// DefaultProfileName is the name of the profile that always exists.
const DefaultProfileName = "Default Profile"

// IsDefault reports whether name is the default profile's name.
func IsDefault(name string) bool {
	return name == DefaultProfileName
}

// Profiles is an ordered set of profiles with one active member.
// It is safe for concurrent use.
type Profiles struct {
	mu     sync.RWMutex
	list   []*Profile
	active string
}

// NewProfiles returns a set holding only the default profile, active.
func NewProfiles() *Profiles {
	ps := &Profiles{}
	ps.ensureDefaultLocked()
	return ps
}

// ensureDefaultLocked creates the default profile if missing.
// A freshly created default profile becomes active.
func (ps *Profiles) ensureDefaultLocked() *Profile {
	if p := ps.findLocked(DefaultProfileName); p != nil {
		return p
	}
	p := NewProfile(DefaultProfileName)
	ps.list = append([]*Profile{&p}, ps.list...)
	ps.active = p.Name
	return &p
}

func (ps *Profiles) findLocked(name string) *Profile {
	for _, p := range ps.list {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// All returns copies of every profile in order.
func (ps *Profiles) All() []Profile {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	out := make([]Profile, len(ps.list))
	for i, p := range ps.list {
		out[i] = *p
	}
	return out
}

// Names returns the profile names in order.
func (ps *Profiles) Names() []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	names := make([]string, len(ps.list))
	for i, p := range ps.list {
		names[i] = p.Name
	}
	return names
}

// Find returns a copy of the named profile.
func (ps *Profiles) Find(name string) (Profile, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if p := ps.findLocked(name); p != nil {
		return *p, true
	}
	return Profile{}, false
}

// Active returns a copy of the active profile.
func (ps *Profiles) Active() Profile {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if p := ps.findLocked(ps.active); p != nil {
		return *p
	}
	p := ps.ensureDefaultLocked()
	ps.active = p.Name
	return *p
}

// ActiveName returns the name of the active profile.
func (ps *Profiles) ActiveName() string {
	return ps.Active().Name
}

// CanModifyActive reports whether the active profile may be renamed or deleted.
func (ps *Profiles) CanModifyActive() bool {
	return !IsDefault(ps.ActiveName())
}

// Use makes the named profile active. Unknown names select the default profile
// and return ErrProfileNotFound.
func (ps *Profiles) Use(name string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if p := ps.findLocked(name); p != nil {
		ps.active = p.Name
		return nil
	}
	ps.active = ps.ensureDefaultLocked().Name
	return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

// Create adds a profile with default settings and makes it active.
func (ps *Profiles) Create(name string) (Profile, error) {
	return ps.Add(NewProfile(name))
}

// Add inserts p as a new profile and makes it active.
func (ps *Profiles) Add(p Profile) (Profile, error) {
	name, ok := ValidName(p.Name)
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrInvalidName, p.Name)
	}
	p.Name = name

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.findLocked(name) != nil {
		return Profile{}, fmt.Errorf("%w: %q", ErrDuplicateProfile, name)
	}
	ps.list = append(ps.list, &p)
	ps.active = name
	return p, nil
}

// Update replaces the settings of an existing profile, keyed by p.Name.
func (ps *Profiles) Update(p Profile) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	existing := ps.findLocked(p.Name)
	if existing == nil {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, p.Name)
	}
	*existing = p
	return nil
}

// Delete removes a profile. The default profile cannot be deleted. Deleting
// the active profile activates the default profile.
func (ps *Profiles) Delete(name string) error {
	if IsDefault(name) {
		return ErrDefaultProfile
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, p := range ps.list {
		if p.Name != name {
			continue
		}
		ps.list = append(ps.list[:i], ps.list[i+1:]...)
		if ps.active == name {
			ps.active = ps.ensureDefaultLocked().Name
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

// Rename changes a profile's name. The default profile cannot be renamed.
func (ps *Profiles) Rename(oldName, newName string) (Profile, error) {
	newName, ok := ValidName(newName)
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrInvalidName, newName)
	}
	if IsDefault(oldName) {
		return Profile{}, ErrDefaultProfile
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.findLocked(newName) != nil {
		return Profile{}, fmt.Errorf("%w: %q", ErrDuplicateProfile, newName)
	}
	p := ps.findLocked(oldName)
	if p == nil {
		return Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, oldName)
	}
	p.Name = newName
	if ps.active == oldName {
		ps.active = newName
	}
	return *p, nil
}

// Clone creates newName with the settings of source and makes it active.
func (ps *Profiles) Clone(source, newName string) (Profile, error) {
	src, ok := ps.Find(source)
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, source)
	}
	p := NewProfile(newName)
	p.CopyFrom(src)
	return ps.Add(p)
}

// Reset restores the named profile's settings to their defaults.
func (ps *Profiles) Reset(name string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p := ps.findLocked(name)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	p.Reset()
	return nil
}

// ResetAll drops every profile and recreates the default one.
func (ps *Profiles) ResetAll() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.list = nil
	ps.ensureDefaultLocked()
}
