package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
)

func validCampaign(t *testing.T) *Campaign {
	t.Helper()
	now := time.Now()
	c, err := NewCampaign(
		id.NewCampaignID(), id.NewClubID(), id.NewUserID(),
		"Autumn Recruitment", "Join the robotics club.",
		[]string{"Open to all years"},
		nil,
		now, now.Add(14*24*time.Hour),
		0, now,
	)
	require.NoError(t, err)
	return c
}

func TestNewCampaign_Validation(t *testing.T) {
	now := time.Now()

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewCampaign(id.NewCampaignID(), id.NewClubID(), id.NewUserID(),
			"  ", "desc", nil, nil, now, now.Add(time.Hour), 0, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects oversized title", func(t *testing.T) {
		_, err := NewCampaign(id.NewCampaignID(), id.NewClubID(), id.NewUserID(),
			strings.Repeat("x", 201), "desc", nil, nil, now, now.Add(time.Hour), 0, now)
		require.Error(t, err)
	})

	t.Run("rejects end date before start date", func(t *testing.T) {
		_, err := NewCampaign(id.NewCampaignID(), id.NewClubID(), id.NewUserID(),
			"Title", "desc", nil, nil, now, now.Add(-time.Hour), 0, now)
		require.Error(t, err)
	})

	t.Run("rejects select question without options", func(t *testing.T) {
		qs := []ApplicationQuestion{{ID: "q1", Prompt: "Pick one", Type: QuestionTypeSelect, Required: true}}
		_, err := NewCampaign(id.NewCampaignID(), id.NewClubID(), id.NewUserID(),
			"Title", "desc", nil, qs, now, now.Add(time.Hour), 0, now)
		require.Error(t, err)
	})

	t.Run("new campaigns start in draft", func(t *testing.T) {
		c := validCampaign(t)
		assert.Equal(t, CampaignStatusDraft, c.Status)
	})
}

func TestCampaignStatus_Transitions(t *testing.T) {
	cases := []struct {
		from    CampaignStatus
		action  StatusAction
		allowed bool
	}{
		{CampaignStatusDraft, ActionPublish, true},
		{CampaignStatusDraft, ActionPause, false},
		{CampaignStatusDraft, ActionComplete, false},
		{CampaignStatusPublished, ActionPause, true},
		{CampaignStatusPublished, ActionComplete, true},
		{CampaignStatusPublished, ActionPublish, false},
		{CampaignStatusPaused, ActionResume, true},
		{CampaignStatusPaused, ActionComplete, true},
		{CampaignStatusPaused, ActionPublish, false},
		{CampaignStatusCompleted, ActionPublish, false},
		{CampaignStatusCompleted, ActionResume, false},
		{CampaignStatusCompleted, ActionPause, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+" "+string(tc.action), func(t *testing.T) {
			c := validCampaign(t)
			c.Status = tc.from
			err := c.CanTransition(tc.action)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
			}
		})
	}
}

func TestApplyTransition(t *testing.T) {
	c := validCampaign(t)
	now := time.Now().Add(time.Minute)

	require.NoError(t, c.CanTransition(ActionPublish))
	c.ApplyTransition(ActionPublish, now)

	assert.Equal(t, CampaignStatusPublished, c.Status)
	assert.Equal(t, now, c.UpdatedAt)
}

func TestAcceptingBefore(t *testing.T) {
	c := validCampaign(t)
	c.Status = CampaignStatusPublished

	assert.True(t, c.AcceptingBefore(c.EndDate))
	assert.False(t, c.AcceptingBefore(c.EndDate.Add(time.Second)))

	c.Status = CampaignStatusPaused
	assert.False(t, c.AcceptingBefore(c.StartDate))
}

func TestApplyUpdate(t *testing.T) {
	t.Run("edits content while draft", func(t *testing.T) {
		c := validCampaign(t)
		title := "Spring Recruitment"
		require.NoError(t, c.ApplyUpdate(CampaignUpdate{Title: &title}, false, time.Now()))
		assert.Equal(t, "Spring Recruitment", c.Title)
	})

	t.Run("rejects edits on completed campaigns", func(t *testing.T) {
		c := validCampaign(t)
		c.Status = CampaignStatusCompleted
		title := "Too late"
		err := c.ApplyUpdate(CampaignUpdate{Title: &title}, false, time.Now())
		require.Error(t, err)
	})

	t.Run("freezes question set once applications exist", func(t *testing.T) {
		c := validCampaign(t)
		qs := []ApplicationQuestion{{ID: "q1", Prompt: "Why?", Type: QuestionTypeTextarea, Required: true}}
		err := c.ApplyUpdate(CampaignUpdate{Questions: &qs}, true, time.Now())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("freezes application cap once applications exist", func(t *testing.T) {
		c := validCampaign(t)
		cap := 5
		err := c.ApplyUpdate(CampaignUpdate{MaxApplications: &cap}, true, time.Now())
		require.Error(t, err)
	})

	t.Run("rejected update leaves the campaign untouched", func(t *testing.T) {
		c := validCampaign(t)
		before := *c
		bad := ""
		err := c.ApplyUpdate(CampaignUpdate{Title: &bad}, false, time.Now())
		require.Error(t, err)
		assert.Equal(t, before, *c)
	})
}

func TestParseStatusAction(t *testing.T) {
	for _, valid := range []string{"publish", "pause", "resume", "complete"} {
		_, err := ParseStatusAction(valid)
		assert.NoError(t, err, valid)
	}
	_, err := ParseStatusAction("archive")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
