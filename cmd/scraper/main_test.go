package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-wellfound-scraper/internal/domain"
)

func TestSaveJob(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	job := domain.NewPendingJob("abc", domain.Details{Location: "Remote", Role: "SRE", Scroll: 1}, time.Now())
	require.NoError(t, job.Finish(domain.StatusCompleted, domain.NoResultsResult(), time.Now()))

	path, err := saveJob(dir, job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "scrape-"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved domain.Job
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "abc", saved.ID)
	assert.Equal(t, domain.OutcomeNoResults, saved.Result.Outcome)
}

func TestCommand_RequiresFacets(t *testing.T) {
	cmd := command()
	err := cmd.Run(t.Context(), []string{"wellfound-scrape", "--location", "Remote"})
	assert.Error(t, err)
}
