package cmd

import (
	"errors"
	"testing"

	"github.com/bnema/mmwall/internal/application"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinnerModelShowsLabelWhileRunning(t *testing.T) {
	m := newSpinnerModel("Reloading collection...", nil, refreshSummary)
	assert.Contains(t, m.View(), "Reloading collection...")
}

func TestSpinnerModelSummarisesResult(t *testing.T) {
	m := newSpinnerModel("Reloading collection...", nil, refreshSummary)

	updated, cmd := m.Update(taskDoneMsg[application.RefreshResult]{
		value: application.RefreshResult{Received: 12, Accepted: 10, Changed: true},
	})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	final, ok := updated.(spinnerModel[application.RefreshResult])
	require.True(t, ok)
	assert.NoError(t, final.err)
	assert.Equal(t, 10, final.value.Accepted)
	assert.Contains(t, final.View(), "Accepted 10 of 12 images (2 dropped)")
	assert.NotContains(t, final.View(), "Reloading")
}

func TestSpinnerModelReportsFailure(t *testing.T) {
	m := newSpinnerModel("Reloading collection...", nil, refreshSummary)

	updated, _ := m.Update(taskDoneMsg[application.RefreshResult]{err: errors.New("boom")})
	final := updated.(spinnerModel[application.RefreshResult])

	assert.EqualError(t, final.err, "boom")
	assert.Contains(t, final.View(), "Reloading collection...")
	assert.NotContains(t, final.View(), "Accepted")
}

func TestRefreshSummary(t *testing.T) {
	assert.Equal(t, "Accepted 3 images", refreshSummary(application.RefreshResult{Received: 3, Accepted: 3}))
	assert.Equal(t, "Accepted 2 of 5 images (3 dropped)", refreshSummary(application.RefreshResult{Received: 5, Accepted: 2}))
}
