package storagekey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		userUID    string
		quarter    string
		wantPrefix string
	}{
		{
			name:       "квартал с пробелом заменяется на дефис",
			userUID:    "uid-1",
			quarter:    "Fall 2025",
			wantPrefix: "notes/uid-1/Fall-2025/",
		},
		{
			name:       "квартал без пробелов остается как есть",
			userUID:    "uid-2",
			quarter:    "Winter2026",
			wantPrefix: "notes/uid-2/Winter2026/",
		},
		{
			name:       "лишние пробелы схлопываются",
			userUID:    "uid-3",
			quarter:    "  Spring   2026  ",
			wantPrefix: "notes/uid-3/Spring-2026/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := New(tt.userUID, tt.quarter)
			assert.True(t, strings.HasPrefix(key, tt.wantPrefix),
				"key %s should start with %s", key, tt.wantPrefix)
			assert.True(t, strings.HasSuffix(key, ".pdf"))
		})
	}
}

func TestNew_Unique(t *testing.T) {
	first := New("uid-1", "Fall 2025")
	second := New("uid-1", "Fall 2025")
	assert.NotEqual(t, first, second)
}

func TestOwnedBy(t *testing.T) {
	key := New("uid-1", "Fall 2025")

	assert.True(t, OwnedBy(key, "uid-1"))
	assert.False(t, OwnedBy(key, "uid-2"))
	assert.False(t, OwnedBy("notes/uid-10/Fall-2025/x.pdf", "uid-1"))
}
