package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	i := Get()
	if i.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", i.GoVersion, runtime.Version())
	}
	if i.Version == "" || i.Commit == "" || i.Date == "" {
		t.Errorf("Get() left fields empty: %+v", i)
	}
}

func TestGetPrefersLdflags(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)
	Version, Commit = "v1.2.3", "abc123"

	i := Get()
	if i.Version != "v1.2.3" || i.Commit != "abc123" {
		t.Errorf("Get() = %+v, want ldflags values", i)
	}
	if !strings.Contains(i.String(), "commit: abc123") {
		t.Errorf("String() = %q", i.String())
	}
}

func TestTemplate(t *testing.T) {
	if tmpl := Template(); !strings.HasPrefix(tmpl, "{{.Name}} version "+Get().Version) {
		t.Errorf("Template() = %q, want cobra name placeholder and version", tmpl)
	}
}
