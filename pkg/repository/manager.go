package repository

import (
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// Aggregator merges repository lists.
type Aggregator interface {
	// Aggregate merges additional into current and returns a new,
	// deduplicated list. With preferCurrent, entries already in current keep
	// their position and definition; otherwise an additional entry replaces
	// the current entry with the same ID in place.
	Aggregate(current, additional []RemoteRepository, preferCurrent bool) []RemoteRepository
}

// Mirror redirects requests for matching repositories to another URL.
//
// MirrorOf follows the settings.xml syntax: "*" matches everything,
// "external:*" matches everything that is not on localhost, and a comma
// separated list matches ids, where "!id" excludes one.
type Mirror struct {
	ID       string `json:"id" toml:"id"`
	URL      string `json:"url" toml:"url"`
	MirrorOf string `json:"mirror_of" toml:"mirror_of"`
}

// Matches reports whether the mirror applies to r.
func (m Mirror) Matches(r RemoteRepository) bool {
	matched := false
	for _, pat := range strings.Split(m.MirrorOf, ",") {
		pat = strings.TrimSpace(pat)
		switch {
		case pat == "":
		case strings.HasPrefix(pat, "!"):
			if pat[1:] == r.ID {
				return false
			}
		case pat == "*":
			matched = true
		case pat == "external:*":
			if !isLocalURL(r.URL) {
				matched = true
			}
		case pat == r.ID:
			matched = true
		}
	}
	return matched
}

func isLocalURL(u string) bool {
	return strings.Contains(u, "://localhost") || strings.Contains(u, "://127.0.0.1") ||
		strings.HasPrefix(u, "file:")
}

// Manager is the default Aggregator. It applies mirrors to every additional
// repository before merging.
type Manager struct {
	Mirrors []Mirror
	Logger  *log.Logger // optional
}

// NewManager creates a Manager with the given mirrors.
func NewManager(mirrors ...Mirror) *Manager {
	return &Manager{Mirrors: mirrors}
}

// Aggregate implements Aggregator.
func (m *Manager) Aggregate(current, additional []RemoteRepository, preferCurrent bool) []RemoteRepository {
	if len(additional) == 0 {
		return current
	}

	out := slices.Clone(current)
	for _, r := range additional {
		r = m.mirror(r)
		i := slices.IndexFunc(out, func(c RemoteRepository) bool { return c.ID == r.ID })
		switch {
		case i < 0:
			out = append(out, r)
		case !preferCurrent:
			out[i] = r
		}
	}
	return out
}

// Apply rewrites every repository matched by a mirror, collapsing
// repositories that end up behind the same mirror into one entry.
func (m *Manager) Apply(repos []RemoteRepository) []RemoteRepository {
	var out []RemoteRepository
	for _, r := range repos {
		r = m.mirror(r)
		if !slices.ContainsFunc(out, func(c RemoteRepository) bool { return c.ID == r.ID }) {
			out = append(out, r)
		}
	}
	return out
}

func (m *Manager) mirror(r RemoteRepository) RemoteRepository {
	for _, mi := range m.Mirrors {
		if mi.Matches(r) {
			if m.Logger != nil {
				m.Logger.Debug("mirroring repository", "repo", r.ID, "mirror", mi.ID)
			}
			return RemoteRepository{ID: mi.ID, URL: strings.TrimRight(mi.URL, "/"), Layout: r.Layout}
		}
	}
	return r
}
