package datefilter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/rasff/internal/engine"
	"github.com/law-makers/rasff/pkg/models"
)

// The live table renders the day without zero padding. This fixture pins it.
func TestMatcher_UnpaddedFixture(t *testing.T) {
	m := NewMatcher(date(2025, time.March, 5), RuleUnpadded, "")
	require.Equal(t, "5 MAR 2025", m.Target())

	assert.True(t, m.Match(models.AlertRecord{"Date": "5 MAR 2025"}))
	assert.False(t, m.Match(models.AlertRecord{"Date": "05 MAR 2025"}))
}

func TestMatcher_NormalisesCaseAndSpace(t *testing.T) {
	m := NewMatcher(date(2025, time.March, 19), RuleUnpadded, "Date")

	assert.True(t, m.Match(models.AlertRecord{"Date": " 19 Mar 2025 "}))
	assert.False(t, m.Match(models.AlertRecord{"Date": "19 MAR 2024"}))
	assert.False(t, m.Match(models.AlertRecord{"Subject": "19 MAR 2025"}))
}

func TestMatcher_Filter(t *testing.T) {
	m := NewMatcher(date(2025, time.March, 19), RuleUnpadded, "Date")
	in := &models.Table{
		Columns: []string{"Date", "Subject"},
		Records: []models.AlertRecord{
			{"Date": "19 MAR 2025", "Subject": "a"},
			{"Date": "18 MAR 2025", "Subject": "b"},
			{"Date": "19 MAR 2025", "Subject": "c"},
		},
	}

	out, err := m.Filter(in)
	require.NoError(t, err)
	assert.Equal(t, in.Columns, out.Columns)
	require.Len(t, out.Records, 2)
	assert.Equal(t, "a", out.Records[0]["Subject"])
	assert.Equal(t, "c", out.Records[1]["Subject"])
}

func TestMatcher_FilterNoMatchesIsEmptyNotError(t *testing.T) {
	m := NewMatcher(date(2025, time.March, 19), RuleUnpadded, "Date")
	out, err := m.Filter(&models.Table{Columns: []string{"Date"}, Records: []models.AlertRecord{{"Date": "1 JAN 2025"}}})
	require.NoError(t, err)
	assert.NotNil(t, out.Records)
	assert.Empty(t, out.Records)
}

func TestMatcher_FilterMissingColumn(t *testing.T) {
	m := NewMatcher(date(2025, time.March, 19), RuleUnpadded, "Date")
	_, err := m.Filter(&models.Table{Columns: []string{"Notification date"}})
	assert.True(t, errors.Is(err, engine.ErrParse), "got %v", err)
}
