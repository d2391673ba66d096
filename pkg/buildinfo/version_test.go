package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	for _, want := range []string{"version: " + Version, "commit: " + Commit, "built: " + Date} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q", want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "accessmap/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestCurrent(t *testing.T) {
	if Current() != (Info{Version: Version, Commit: Commit, Date: Date}) {
		t.Errorf("Current() = %+v", Current())
	}
}
