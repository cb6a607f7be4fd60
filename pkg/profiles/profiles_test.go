package profiles

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadRegistryYAML(t *testing.T) {
	t.Setenv("SHOP_TOKEN", "secret")

	dir := t.TempDir()
	file := filepath.Join(dir, "profiles.yaml")
	content := `
profiles:
  - id: shop
    name: Shop API
    url_template: "https://{host}/api/{path}"
    verify_ssl: false
    auth:
      type: bearer
      token: ${SHOP_TOKEN}
    headers:
      Accept: application/hal+json
    url_parameters:
      host: shop.example
    request_delay_ms: 750
  - id: public
    name: Public API
    url_template: https://public.example/
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write profiles file: %v", err)
	}

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(reg.All()))
	}

	p, ok := reg.ByID("shop")
	if !ok {
		t.Fatalf("expected profile id shop to be loaded")
	}
	if p.VerifyTLS() {
		t.Fatalf("expected verify_ssl false")
	}
	if creds := p.Credentials(); creds == nil || creds.Token != "secret" {
		t.Fatalf("expected expanded bearer token, got %#v", creds)
	}
	if p.URLParameters["host"] != "shop.example" {
		t.Fatalf("unexpected url parameters %#v", p.URLParameters)
	}
	if p.RequestDelay() != 750*time.Millisecond {
		t.Fatalf("unexpected request delay: %v", p.RequestDelay())
	}

	pub, _ := reg.ByID("public")
	if !pub.VerifyTLS() || pub.Credentials() != nil {
		t.Fatalf("unexpected defaults for public profile %#v", pub)
	}
	if pub.RequestDelay() != 250*time.Millisecond {
		t.Fatalf("unexpected default delay %v", pub.RequestDelay())
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "profiles.json")
	content := `{"profiles": [{"id": "a", "name": "A", "url_template": "https://a.example/{path}", "auth": {"type": "basic", "username": "u", "password": "p"}}]}`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write profiles file: %v", err)
	}

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	p, err := reg.Resolve("")
	if err != nil {
		t.Fatalf("Resolve single profile: %v", err)
	}
	if creds := p.Credentials(); creds == nil || creds.Username != "u" || creds.Password != "p" {
		t.Fatalf("unexpected basic credentials %#v", creds)
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "profiles.yaml")
	content := `
profiles:
  - id: duplicate
    name: One
    url_template: https://one.example/
  - id: duplicate
    name: Two
    url_template: https://two.example/
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write profiles file: %v", err)
	}

	if _, err := LoadRegistry(file); err == nil {
		t.Fatalf("expected duplicate profile error, got nil")
	}
}

func TestNewRegistryValidation(t *testing.T) {
	cases := []Profile{
		{Name: "no id", URLTemplate: "https://x/"},
		{ID: "x", URLTemplate: "https://x/"},
		{ID: "x", Name: "X"},
		{ID: "x", Name: "X", URLTemplate: "https://x/", Auth: AuthConfig{Type: "bearer"}},
		{ID: "x", Name: "X", URLTemplate: "https://x/", Auth: AuthConfig{Type: "oauth"}},
	}
	for i, p := range cases {
		if _, err := NewRegistry(p); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestResolve(t *testing.T) {
	reg, err := NewRegistry(
		Profile{ID: "a", Name: "A", URLTemplate: "https://a/"},
		Profile{ID: "b", Name: "B", URLTemplate: "https://b/"},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, err := reg.Resolve(""); err == nil {
		t.Fatalf("expected error when several profiles and no id")
	}
	if _, err := reg.Resolve("c"); err == nil {
		t.Fatalf("expected error for unknown id")
	}
	if p, err := reg.Resolve("b"); err != nil || p.ID != "b" {
		t.Fatalf("Resolve b: %v %#v", err, p)
	}
}
