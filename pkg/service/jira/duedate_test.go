package jira_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/pmsync-dev/pmsync/pkg/service/jira"
)

func TestResolveDueDate(t *testing.T) {
	// Wednesday.
	now := time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		input    string
		expected string
	}{
		{"today", "2025-06-11"},
		{"tomorrow", "2025-06-12"},
		{"friday", "2025-06-13"},
		{"end of week", "2025-06-13"},
		{"eow", "2025-06-13"},
		{"monday", "2025-06-16"},
		{"next week", "2025-06-16"},
		{"next friday", "2025-06-20"},
		{"Friday", "2025-06-13"},
		{"  TOMORROW  ", "2025-06-12"},
		{"2025-07-01", "2025-07-01"},
		{"Jul 1, 2025", "2025-07-01"},
		{"July 1, 2025", "2025-07-01"},
		{"07/01/2025", "2025-07-01"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := jira.ResolveDueDate(tc.input, now)
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tc.expected)
		})
	}

	t.Run("today counting keywords on the day itself", func(t *testing.T) {
		friday := time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC)

		got, err := jira.ResolveDueDate("friday", friday)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("2025-06-13")

		// "next week" from Monday is the following Monday.
		monday := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
		got, err = jira.ResolveDueDate("next week", monday)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("2025-06-23")
	})

	t.Run("unrecognized phrases are rejected", func(t *testing.T) {
		for _, input := range []string{"someday", "in two weeks", "", "13/45/2025"} {
			_, err := jira.ResolveDueDate(input, now)
			gt.Value(t, err).NotNil()
		}
	})
}
