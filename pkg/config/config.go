// Package config loads depcollect settings.
//
// Sources, lowest precedence first:
//
//  1. [Defaults]
//  2. the TOML settings file ([DefaultPath] unless a path is given)
//  3. a .env file in the working directory (variables already set win)
//  4. DEPCOLLECT_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/depcollect/pkg/cache"
	errs "github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/session"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DEPCOLLECT_"

// Settings is the merged configuration.
type Settings struct {
	Repositories []repository.RemoteRepository `toml:"repositories"`

	// Mirrors rewrites repositories by ID to another URL.
	Mirrors map[string]string `toml:"mirrors"`

	// Offline serves repository responses from the cache only.
	Offline bool `toml:"offline"`

	// Catalog, when set, replaces remote repositories with a TOML catalog.
	Catalog string `toml:"catalog"`

	Cache   CacheSettings   `toml:"cache"`
	Collect CollectSettings `toml:"collect"`
	Server  ServerSettings  `toml:"server"`
}

// CacheSettings selects the response cache.
type CacheSettings struct {
	cache.Config
	TTL time.Duration `toml:"ttl"`
}

// CollectSettings tune the default collection policies.
type CollectSettings struct {
	ExcludedScopes  []string `toml:"excluded_scopes"`
	IncludeOptional bool     `toml:"include_optional"`
	MaxRelocations  int      `toml:"max_relocations"`
}

// ServerSettings configure `depcollect serve`.
type ServerSettings struct {
	Addr string `toml:"addr"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Repositories: []repository.RemoteRepository{repository.Central},
		Cache: CacheSettings{
			Config: cache.Config{Backend: cache.BackendFile},
			TTL:    24 * time.Hour,
		},
		Collect: CollectSettings{
			ExcludedScopes: []string{"test", "provided"},
			MaxRelocations: 32,
		},
		Server: ServerSettings{Addr: ":8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/depcollect/settings.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "depcollect", "settings.toml"), nil
}

// Load merges every source and validates the result. An empty path means
// DefaultPath; a missing default file is not an error, a missing explicit
// one is.
func Load(path string) (Settings, error) {
	s, err := Read(path)
	if err != nil {
		return s, err
	}
	return s, s.Validate()
}

// Read is Load without validation, for callers that apply further
// overrides first.
func Read(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	_ = godotenv.Load()
	return read(path, explicit, os.LookupEnv)
}

func read(path string, explicit bool, lookup func(string) (string, bool)) (Settings, error) {
	s := Defaults()
	if path != "" {
		if _, err := toml.DecodeFile(path, &s); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return s, errs.Wrap(errs.ErrCodeInvalidSettings, err, "read %s", path)
			}
			if explicit {
				return s, errs.Wrap(errs.ErrCodeFileNotFound, err, "settings file")
			}
		}
	}
	if err := s.applyEnv(lookup); err != nil {
		return s, err
	}
	for i, r := range s.Repositories {
		s.Repositories[i] = normalize(r)
	}
	return s, nil
}

// load is read followed by Validate.
func load(path string, explicit bool, lookup func(string) (string, bool)) (Settings, error) {
	s, err := read(path, explicit, lookup)
	if err != nil {
		return s, err
	}
	return s, s.Validate()
}

func normalize(r repository.RemoteRepository) repository.RemoteRepository {
	n := repository.NewRemote(r.ID, r.URL)
	if r.Layout != "" {
		n.Layout = r.Layout
	}
	return n
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	var bad []error
	boolVar := func(name string, dst *bool) {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				bad = append(bad, errs.Wrap(errs.ErrCodeInvalidSettings, err, "%s%s", EnvPrefix, name))
				return
			}
			*dst = b
		}
	}
	strVar := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	if v, ok := get("REPOSITORIES"); ok {
		repos, err := ParseRepositories(strings.Split(v, ","))
		if err != nil {
			bad = append(bad, err)
		} else {
			s.Repositories = repos
		}
	}
	boolVar("OFFLINE", &s.Offline)
	strVar("CATALOG", &s.Catalog)
	strVar("CACHE_BACKEND", &s.Cache.Backend)
	strVar("CACHE_DIR", &s.Cache.Dir)
	strVar("REDIS_URL", &s.Cache.URL)
	strVar("CACHE_PREFIX", &s.Cache.Prefix)
	strVar("MONGO_DATABASE", &s.Cache.Database)
	if v, ok := get("MONGO_URI"); ok && s.Cache.Backend == cache.BackendMongo {
		s.Cache.URL = v
	}
	if v, ok := get("CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			bad = append(bad, errs.Wrap(errs.ErrCodeInvalidSettings, err, "%sCACHE_TTL", EnvPrefix))
		} else {
			s.Cache.TTL = d
		}
	}
	if v, ok := get("EXCLUDED_SCOPES"); ok {
		s.Collect.ExcludedScopes = splitList(v)
	}
	boolVar("INCLUDE_OPTIONAL", &s.Collect.IncludeOptional)
	if v, ok := get("MAX_RELOCATIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			bad = append(bad, errs.Wrap(errs.ErrCodeInvalidSettings, err, "%sMAX_RELOCATIONS", EnvPrefix))
		} else {
			s.Collect.MaxRelocations = n
		}
	}
	strVar("ADDR", &s.Server.Addr)
	return errors.Join(bad...)
}

// ParseRepositories parses "id=url" pairs.
func ParseRepositories(pairs []string) ([]repository.RemoteRepository, error) {
	var out []repository.RemoteRepository
	for _, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, url, ok := strings.Cut(p, "=")
		if !ok || id == "" || url == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "repository %q, expected id=url", p)
		}
		out = append(out, repository.NewRemote(strings.TrimSpace(id), strings.TrimSpace(url)))
	}
	return out, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MirrorList returns the configured mirrors.
func (s Settings) MirrorList() []repository.Mirror {
	var out []repository.Mirror
	for _, id := range slices.Sorted(maps.Keys(s.Mirrors)) {
		out = append(out, repository.Mirror{ID: id + "-mirror", URL: strings.TrimRight(s.Mirrors[id], "/"), MirrorOf: id})
	}
	return out
}

// SessionProperties translates the collect settings into session properties.
func (s Settings) SessionProperties() map[string]string {
	return map[string]string{
		session.PropExcludedScopes:  strings.Join(s.Collect.ExcludedScopes, ","),
		session.PropIncludeOptional: strconv.FormatBool(s.Collect.IncludeOptional),
	}
}

var validBackends = []string{cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendMongo, cache.BackendNone}

// Validate reports every invalid setting.
func (s Settings) Validate() error {
	var bad []error
	fail := func(format string, args ...any) {
		bad = append(bad, errs.New(errs.ErrCodeInvalidInput, format, args...))
	}

	if len(s.Repositories) == 0 && s.Catalog == "" {
		fail("no repositories configured")
	}
	seen := make(map[string]bool)
	for _, r := range s.Repositories {
		switch {
		case r.ID == "":
			fail("repository with url %q has no id", r.URL)
		case seen[r.ID]:
			fail("repository %q listed twice", r.ID)
		default:
			if err := errs.ValidateRepositoryID(r.ID); err != nil {
				bad = append(bad, err)
			}
			if err := errs.ValidateURL(r.URL); err != nil {
				fail("repository %q: unsupported url %q", r.ID, r.URL)
			}
		}
		seen[r.ID] = true
	}

	backend := s.Cache.Backend
	if backend == "" {
		backend = cache.BackendFile
	}
	valid := false
	for _, b := range validBackends {
		valid = valid || b == backend
	}
	if !valid {
		fail("unknown cache backend %q", s.Cache.Backend)
	}
	if (backend == cache.BackendRedis || backend == cache.BackendMongo) && s.Cache.URL == "" {
		fail("cache backend %s needs a url", backend)
	}
	if backend == cache.BackendMongo && s.Cache.Database == "" {
		fail("cache backend mongo needs a database")
	}
	if s.Cache.TTL < 0 {
		fail("negative cache ttl %s", s.Cache.TTL)
	}
	if s.Collect.MaxRelocations < 0 {
		fail("negative max_relocations %d", s.Collect.MaxRelocations)
	}
	return errors.Join(bad...)
}
