package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/restmapper/pkg/httpclient"
)

// Package profiles contains named API connection profiles loaded from YAML/JSON.

const (
	AuthNone   = "none"
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

// Profile describes how to reach one HAL API.
type Profile struct {
	ID             string            `json:"id" yaml:"id"`
	Name           string            `json:"name" yaml:"name"`
	URLTemplate    string            `json:"url_template" yaml:"url_template"`
	VerifySSL      *bool             `json:"verify_ssl" yaml:"verify_ssl"`
	Auth           AuthConfig        `json:"auth" yaml:"auth"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	Params         map[string]string `json:"params" yaml:"params"`
	URLParameters  map[string]string `json:"url_parameters" yaml:"url_parameters"`
	RequestDelayMs int               `json:"request_delay_ms" yaml:"request_delay_ms"`
}

// AuthConfig holds the credentials section of a profile.
type AuthConfig struct {
	Type     string `json:"type" yaml:"type"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Token    string `json:"token" yaml:"token"`
}

type registryFile struct {
	Profiles []Profile `json:"profiles" yaml:"profiles"`
}

// Registry holds the loaded profiles indexed by id.
type Registry struct {
	mu       sync.RWMutex
	profiles []Profile
	idx      map[string]Profile
}

var defaultRequestDelayMs = 250

// LoadRegistry loads the profile registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("profiles file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(fileReg.Profiles...)
}

// NewRegistry validates and indexes profiles.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	if len(profiles) == 0 {
		return nil, errors.New("profiles file contains no profiles entries")
	}

	reg := &Registry{
		profiles: make([]Profile, len(profiles)),
		idx:      make(map[string]Profile, len(profiles)),
	}
	for i := range profiles {
		p := sanitizeProfile(profiles[i])
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profile[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate profile id %q", p.ID)
		}
		reg.profiles[i] = p
		reg.idx[p.ID] = p
	}
	return reg, nil
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("profiles file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (registryFile, error) {
	var reg registryFile
	if err := fn(data, &reg); err != nil {
		return registryFile{}, fmt.Errorf("decode %s profiles: %w", name, err)
	}
	return reg, nil
}

func sanitizeProfile(p Profile) Profile {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.URLTemplate = strings.TrimSpace(p.URLTemplate)
	p.Auth.Type = strings.ToLower(strings.TrimSpace(p.Auth.Type))
	if p.Auth.Type == "" {
		p.Auth.Type = AuthNone
	}
	p = expandEnv(p)

	if p.VerifySSL == nil {
		def := true
		p.VerifySSL = &def
	}
	if p.RequestDelayMs <= 0 {
		p.RequestDelayMs = defaultRequestDelayMs
	}

	return p
}

func validateProfile(p Profile) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required for profile %q", p.ID)
	}
	if p.URLTemplate == "" {
		return fmt.Errorf("url_template is required for profile %q", p.ID)
	}
	switch p.Auth.Type {
	case AuthNone:
	case AuthBasic:
		if p.Auth.Username == "" {
			return fmt.Errorf("auth.username is required for basic auth in profile %q", p.ID)
		}
	case AuthBearer:
		if p.Auth.Token == "" {
			return fmt.Errorf("auth.token is required for bearer auth in profile %q", p.ID)
		}
	default:
		return fmt.Errorf("unsupported auth type %q for profile %q", p.Auth.Type, p.ID)
	}
	return nil
}

// ByID returns the profile with the given id.
func (r *Registry) ByID(id string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[id]
	return p, ok
}

// All returns all profiles in file order.
func (r *Registry) All() []Profile {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Resolve returns the profile for id, or the only profile when id is empty.
func (r *Registry) Resolve(id string) (Profile, error) {
	if strings.TrimSpace(id) == "" {
		all := r.All()
		if len(all) == 1 {
			return all[0], nil
		}
		return Profile{}, fmt.Errorf("profile id required: %d profiles configured", len(all))
	}
	p, ok := r.ByID(id)
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", id)
	}
	return p, nil
}

// Credentials converts the auth section into transport credentials.
func (p Profile) Credentials() *httpclient.Auth {
	switch p.Auth.Type {
	case AuthBasic:
		return httpclient.BasicAuth(p.Auth.Username, p.Auth.Password)
	case AuthBearer:
		return httpclient.BearerAuth(p.Auth.Token)
	default:
		return nil
	}
}

// VerifyTLS reports whether server certificates are verified, defaulting to true.
func (p Profile) VerifyTLS() bool {
	if p.VerifySSL == nil {
		return true
	}
	return *p.VerifySSL
}

// RequestDelay returns the pause between requests when walking the API.
func (p Profile) RequestDelay() time.Duration {
	if p.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(p.RequestDelayMs) * time.Millisecond
}
