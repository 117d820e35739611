package storage

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveNamespace(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		want     string
	}{
		{"plain username", Identity{Username: "alice"}, "alice"},
		{"username wins over id", Identity{Username: "alice", UserID: "42"}, "alice"},
		{"id only", Identity{UserID: "42"}, "user_42"},
		{"empty identity", Identity{}, "anonymous"},
		{"whitespace username", Identity{Username: "   "}, "anonymous"},
		{"path separators stripped", Identity{Username: "../etc/passwd"}, "_etc_passwd"},
		{"runs collapse to one underscore", Identity{Username: "a b//c"}, "a_b_c"},
		{"unicode collapses", Identity{Username: "aliçé"}, "ali_"},
		{"only separators falls back", Identity{Username: "../../.."}, "anonymous"},
		{"dash and underscore kept", Identity{Username: "team_a-1"}, "team_a-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveNamespace(tt.identity))
		})
	}
}

func TestResolveNamespaceIsPathSafe(t *testing.T) {
	safe := regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	inputs := []Identity{
		{Username: "alice"},
		{Username: "a/b\\c"},
		{Username: "...."},
		{UserID: "e7eedc79-0707-4fe4-8734-526b7ef13a7b"},
		{},
	}
	for _, id := range inputs {
		ns := ResolveNamespace(id)
		assert.Regexp(t, safe, ns, "identity %+v", id)
		// Deterministic for the same identity.
		assert.Equal(t, ns, ResolveNamespace(id))
	}
}
