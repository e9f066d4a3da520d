package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestDefault(t *testing.T) {
	p := Default()

	if p.Output != "table" {
		t.Errorf("Output = %q, want %q", p.Output, "table")
	}
	if p.Home != "" || len(p.Defines) != 0 {
		t.Error("Default should not set a home or defines")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvProfile, "")
	path := DefaultPath()

	expected := filepath.Join(".modi", "cli.yaml")
	if len(path) < len(expected) || path[len(path)-len(expected):] != expected {
		t.Errorf("Path = %q, should end with %q", path, expected)
	}
}

func TestDefaultPath_Env(t *testing.T) {
	t.Setenv(EnvProfile, "/tmp/profile.yaml")
	if got := DefaultPath(); got != "/tmp/profile.yaml" {
		t.Errorf("DefaultPath() = %q, want the environment override", got)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	p, err := Load(afero.NewMemMapFs(), "/nonexistent/path/cli.yaml")
	if err != nil {
		t.Errorf("Load should not error for nonexistent file: %v", err)
	}
	if p == nil || p.Output != "table" {
		t.Error("Should return default profile for nonexistent file")
	}
}

func TestLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := "home: /opt/modi\ndefines:\n  - serverName=portal\n  - a=b\n"
	if err := afero.WriteFile(fsys, "/p/cli.yaml", []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := Load(fsys, "/p/cli.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Home != "/opt/modi" {
		t.Errorf("Home = %q", p.Home)
	}
	if len(p.Defines) != 2 || p.Defines[0] != "serverName=portal" {
		t.Errorf("Defines = %v", p.Defines)
	}
	if p.Output != "table" {
		t.Errorf("Output = %q, want the default kept", p.Output)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":   "home: [",
		"bad output": "output: xml\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			if err := afero.WriteFile(fsys, "/cli.yaml", []byte(content), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(fsys, "/cli.yaml"); err == nil {
				t.Error("Load should fail")
			}
		})
	}
}

func TestSave(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/home/op/.modi/cli.yaml"

	in := &Profile{Home: "/srv/modi", OverrideDir: "-", Output: "json"}
	if err := Save(fsys, in, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := fsys.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	out, err := Load(fsys, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Home != in.Home || out.OverrideDir != in.OverrideDir || out.Output != in.Output {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestSave_Invalid(t *testing.T) {
	if err := Save(afero.NewMemMapFs(), &Profile{Output: "xml"}, "/cli.yaml"); err == nil {
		t.Error("Save should reject an unknown output format")
	}
}
