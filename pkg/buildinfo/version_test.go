package buildinfo

import (
	"strings"
	"testing"
)

func TestStringStamped(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)
	Version, Commit, Date = "v1.2.3", "abc1234", "2026-01-02T03:04:05Z"

	got := String()
	want := "version: v1.2.3\ncommit: abc1234\nbuilt: 2026-01-02T03:04:05Z"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if tpl := Template(); !strings.HasPrefix(tpl, "{{.Name}} version v1.2.3\n") {
		t.Errorf("Template() = %q", tpl)
	}
}

func TestGetUnstamped(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("Version is empty")
	}
	if info.Commit != Commit || info.Date != Date {
		t.Errorf("Get() = %+v", info)
	}
}
