package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/planapi"
	"github.com/holinflow/hflow/internal/projection"
	"github.com/holinflow/hflow/internal/testutil"
)

var neutralReq = model.PlanRequest{MonthlyGoal: 1000, CurrentAssets: 5000, RiskLevel: model.RiskNeutral}

func withResult(t *testing.T) (*Controller, *model.PlanResponse) {
	t.Helper()
	c := New()
	tok, err := c.BeginSubmit(neutralReq)
	require.NoError(t, err)
	plan := testutil.ExamplePlan()
	require.True(t, c.CompleteSubmit(tok, &plan, nil))
	return c, &plan
}

func TestSubmit(t *testing.T) {
	t.Run("should start on the form", func(t *testing.T) {
		c := New()
		assert.Equal(t, ViewForm, c.View())
		assert.False(t, c.Loading())
		assert.Nil(t, c.Plan())
		assert.Equal(t, projection.DefaultYears, c.Years())
	})

	t.Run("should show the result after a successful response", func(t *testing.T) {
		// given
		c := New()
		tok, err := c.BeginSubmit(neutralReq)
		require.NoError(t, err)
		require.True(t, c.Loading())

		// when
		plan := testutil.ExamplePlan()
		applied := c.CompleteSubmit(tok, &plan, nil)

		// then
		assert.True(t, applied)
		assert.Equal(t, ViewResult, c.View())
		assert.False(t, c.Loading())
		assert.Same(t, &plan, c.Plan())
		assert.Empty(t, c.Error())
		assert.Equal(t, neutralReq, c.Request())
	})

	t.Run("should stay on the form with the fixed message on failure", func(t *testing.T) {
		// given
		c := New()
		tok, err := c.BeginSubmit(neutralReq)
		require.NoError(t, err)

		// when
		applied := c.CompleteSubmit(tok, nil, planapi.ErrPlanGeneration)

		// then
		assert.True(t, applied)
		assert.Equal(t, ViewForm, c.View())
		assert.False(t, c.Loading())
		assert.Nil(t, c.Plan())
		assert.Equal(t, PlanFailureMessage, c.Error())
	})

	t.Run("should clear a previous error on resubmit", func(t *testing.T) {
		c := New()
		tok, _ := c.BeginSubmit(neutralReq)
		c.CompleteSubmit(tok, nil, errors.New("boom"))
		require.NotEmpty(t, c.Error())

		_, err := c.BeginSubmit(neutralReq)

		require.NoError(t, err)
		assert.Empty(t, c.Error())
	})

	t.Run("should reject an invalid request without issuing a token", func(t *testing.T) {
		c := New()

		tok, err := c.BeginSubmit(model.PlanRequest{MonthlyGoal: 50, RiskLevel: model.RiskNeutral})

		assert.ErrorIs(t, err, model.ErrInvalidRequest)
		assert.Zero(t, tok)
		assert.False(t, c.Loading())
		assert.Equal(t, err.Error(), c.Error())
	})

	t.Run("should drop the older response when submissions race", func(t *testing.T) {
		// given
		c := New()
		first, err := c.BeginSubmit(neutralReq)
		require.NoError(t, err)
		second, err := c.BeginSubmit(model.PlanRequest{MonthlyGoal: 2000, CurrentAssets: 0, RiskLevel: model.RiskAggressive})
		require.NoError(t, err)
		require.Greater(t, second, first)

		// when the second response arrives first
		newer := testutil.ExamplePlan()
		newer.MonthlyGoal = 2000
		older := testutil.ExamplePlan()
		assert.True(t, c.CompleteSubmit(second, &newer, nil))
		assert.False(t, c.CompleteSubmit(first, &older, nil))

		// then
		assert.Equal(t, 2000.0, c.Plan().MonthlyGoal)
		assert.Equal(t, ViewResult, c.View())
	})

	t.Run("should drop a late failure from a superseded request", func(t *testing.T) {
		c := New()
		first, _ := c.BeginSubmit(neutralReq)
		second, _ := c.BeginSubmit(neutralReq)

		assert.False(t, c.CompleteSubmit(first, nil, errors.New("late")))

		assert.True(t, c.Loading())
		assert.Empty(t, c.Error())
		plan := testutil.ExamplePlan()
		assert.True(t, c.CompleteSubmit(second, &plan, nil))
	})

	t.Run("should ignore a response after cancel", func(t *testing.T) {
		c := New()
		tok, _ := c.BeginSubmit(neutralReq)

		require.NoError(t, c.CancelSubmit())
		plan := testutil.ExamplePlan()

		assert.False(t, c.Loading())
		assert.False(t, c.CompleteSubmit(tok, &plan, nil))
		assert.Equal(t, ViewForm, c.View())
		assert.ErrorIs(t, c.CancelSubmit(), ErrInvalidTransition)
	})

	t.Run("should never accept the zero token", func(t *testing.T) {
		c := New()
		plan := testutil.ExamplePlan()
		assert.False(t, c.CompleteSubmit(0, &plan, nil))
	})
}

func TestNavigation(t *testing.T) {
	t.Run("should move between result and projection", func(t *testing.T) {
		c, _ := withResult(t)

		require.NoError(t, c.ViewProjection())
		assert.Equal(t, ViewProjection, c.View())
		require.NoError(t, c.BackToResult())
		assert.Equal(t, ViewResult, c.View())
	})

	t.Run("should keep the plan when going back to the form", func(t *testing.T) {
		c, plan := withResult(t)

		require.NoError(t, c.Back())

		assert.Equal(t, ViewForm, c.View())
		assert.Same(t, plan, c.Plan())
	})

	t.Run("should discard everything on reset", func(t *testing.T) {
		c, _ := withResult(t)
		c.SetEmailDraft("a@b.com")
		c.SetYears(20)
		require.NoError(t, c.ViewProjection())

		require.NoError(t, c.Reset())

		assert.Equal(t, ViewForm, c.View())
		assert.Nil(t, c.Plan())
		assert.Empty(t, c.Error())
		assert.Empty(t, c.EmailDraft())
		assert.Equal(t, model.PlanRequest{}, c.Request())
		assert.Equal(t, projection.DefaultYears, c.Years())
	})

	t.Run("should reject transitions from the wrong view", func(t *testing.T) {
		c := New()
		assert.ErrorIs(t, c.ViewProjection(), ErrInvalidTransition)
		assert.ErrorIs(t, c.BackToResult(), ErrInvalidTransition)
		assert.ErrorIs(t, c.Back(), ErrInvalidTransition)
		assert.ErrorIs(t, c.Reset(), ErrInvalidTransition)
		assert.Equal(t, ViewForm, c.View())

		r, _ := withResult(t)
		_, err := r.BeginSubmit(neutralReq)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.ErrorIs(t, r.BackToResult(), ErrInvalidTransition)
		assert.Equal(t, ViewResult, r.View())
	})
}

func TestYears(t *testing.T) {
	c := New()
	c.AdjustYears(1)
	assert.Equal(t, 11, c.Years())
	c.SetYears(100)
	assert.Equal(t, projection.MaxYears, c.Years())
	c.AdjustYears(-100)
	assert.Equal(t, projection.MinYears, c.Years())
}

func TestEmail(t *testing.T) {
	t.Run("should require an address", func(t *testing.T) {
		c, _ := withResult(t)
		c.SetEmailDraft("   ")

		tok, _, err := c.BeginEmail()

		assert.ErrorIs(t, err, planapi.ErrEmailRequired)
		assert.Zero(t, tok)
		assert.False(t, c.EmailSending())
	})

	t.Run("should clear the draft and show the notice on success", func(t *testing.T) {
		c, _ := withResult(t)
		c.SetEmailDraft(" a@b.com ")

		tok, addr, err := c.BeginEmail()
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", addr)
		assert.True(t, c.EmailSending())

		assert.True(t, c.CompleteEmail(tok, nil))
		assert.False(t, c.EmailSending())
		assert.Empty(t, c.EmailDraft())
		assert.Equal(t, EmailSuccessMessage, c.EmailNotice())
	})

	t.Run("should keep the draft on failure", func(t *testing.T) {
		c, _ := withResult(t)
		c.SetEmailDraft("a@b.com")
		tok, _, _ := c.BeginEmail()

		assert.True(t, c.CompleteEmail(tok, planapi.ErrEmailDispatch))

		assert.Equal(t, "a@b.com", c.EmailDraft())
		assert.Empty(t, c.EmailNotice())
	})

	t.Run("should drop an email result that arrives after reset", func(t *testing.T) {
		c, _ := withResult(t)
		c.SetEmailDraft("a@b.com")
		tok, _, _ := c.BeginEmail()
		require.NoError(t, c.Reset())

		assert.False(t, c.CompleteEmail(tok, nil))
		assert.Empty(t, c.EmailNotice())
	})
}

func TestExport(t *testing.T) {
	c := New()
	_, err := c.BeginExport()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	c, _ = withResult(t)
	tok, err := c.BeginExport()
	require.NoError(t, err)
	assert.True(t, c.Exporting())
	assert.False(t, c.CompleteExport(tok+1))
	assert.True(t, c.CompleteExport(tok))
	assert.False(t, c.Exporting())
}
