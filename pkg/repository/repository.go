// Package repository models the repositories artifacts are resolved against
// and merges repository lists as collection descends into the graph.
//
// A [RemoteRepository] is a plain comparable value. Nodes in a collected
// graph carry the ordered list of remote repositories their subtree may be
// resolved from; [Manager.Aggregate] computes that list for children by
// merging the parent's list with repositories a descriptor declares.
package repository

import "strings"

// Layouts understood by the bundled readers.
const (
	LayoutDefault = "default"
	LayoutLegacy  = "legacy"
)

// Repository supplies artifacts. Version range results report which
// repository supplies each version; a nil Repository means "not pinned".
type Repository interface {
	RepositoryID() string
	ContentType() string
}

// RemoteRepository is a repository reachable over HTTP.
type RemoteRepository struct {
	ID     string `json:"id" toml:"id"`
	URL    string `json:"url" toml:"url"`
	Layout string `json:"layout,omitempty" toml:"layout"`
}

// NewRemote creates a remote repository with the default layout.
func NewRemote(id, url string) RemoteRepository {
	return RemoteRepository{ID: id, URL: strings.TrimRight(url, "/"), Layout: LayoutDefault}
}

func (r RemoteRepository) RepositoryID() string { return r.ID }

func (r RemoteRepository) ContentType() string {
	if r.Layout == "" {
		return LayoutDefault
	}
	return r.Layout
}

func (r RemoteRepository) String() string { return r.ID + " (" + r.URL + ")" }

// LocalRepository is a directory on disk. Versions supplied by it do not
// pin a remote repository, so descriptors are read with an empty list.
type LocalRepository struct {
	Dir string `json:"dir"`
}

func (r LocalRepository) RepositoryID() string { return "local" }
func (r LocalRepository) ContentType() string  { return "local" }
func (r LocalRepository) String() string       { return "local (" + r.Dir + ")" }

// Central is Maven Central.
var Central = NewRemote("central", "https://repo.maven.apache.org/maven2")

// IDs returns the repository ids in order.
func IDs(repos []RemoteRepository) []string {
	ids := make([]string, len(repos))
	for i, r := range repos {
		ids[i] = r.ID
	}
	return ids
}
