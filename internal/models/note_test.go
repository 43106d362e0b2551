package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestBuildCourseCode(t *testing.T) {
	tests := []struct {
		name        string
		className   string
		classNumber string
		want        string
	}{
		{"обычный курс", "CSE", "101", "CSE101"},
		{"нижний регистр приводится к верхнему", "cse", "101", "CSE101"},
		{"пробелы убираются", "C S E", "10 1", "CSE101"},
		{"номер с буквой", "MATH", "20c", "MATH20C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildCourseCode(tt.className, tt.classNumber))
		})
	}
}

func TestBuildSearchIndex(t *testing.T) {
	got := BuildSearchIndex("Lecture 5", "CSE", "101", "Prof. Smith", "Fall 2025")
	assert.Equal(t, "lecture 5 cse 101 prof. smith fall 2025", got)
}

func TestNote_FileName(t *testing.T) {
	n := &Note{Title: "Lecture 5"}
	assert.Equal(t, "Lecture 5.pdf", n.FileName())
}

func TestUser_IsLocked(t *testing.T) {
	now := mustParse(t, "2026-01-15T12:00:00Z")
	future := mustParse(t, "2026-01-15T13:00:00Z")
	past := mustParse(t, "2026-01-15T11:00:00Z")

	unlocked := &User{}
	assert.False(t, unlocked.IsLocked(now))

	locked := &User{LockUntil: &future}
	assert.True(t, locked.IsLocked(now))

	expired := &User{LockUntil: &past}
	assert.False(t, expired.IsLocked(now))
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RolePending, RoleViewer, RoleScribe, RoleAdmin, RoleRejected} {
		assert.True(t, ValidRole(role), "role %s should be valid", role)
	}
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}
