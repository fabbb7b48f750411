// Package session holds the per-session view state of the planner: which
// screen is showing, the current plan, and which async responses are still
// wanted.
//
// Every async operation is started with a Begin call that hands out a Token.
// The matching Complete call only takes effect if the token is still the
// outstanding one, so a response that arrives after a newer submission, a
// cancel, or a reset is dropped.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/planapi"
	"github.com/holinflow/hflow/internal/projection"
)

// View is the screen currently shown.
type View int

const (
	ViewForm View = iota
	ViewResult
	ViewProjection
)

func (v View) String() string {
	switch v {
	case ViewForm:
		return "form"
	case ViewResult:
		return "result"
	case ViewProjection:
		return "projection"
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// User-facing messages.
const (
	PlanFailureMessage   = "설계 생성에 실패했습니다. 백엔드 연결을 확인하세요."
	EmailRequiredMessage = "이메일 주소를 입력하세요."
	EmailSuccessMessage  = "이메일이 성공적으로 발송되었습니다."
)

// ErrInvalidTransition is returned when an operation is not allowed in the
// current view. State is left unchanged.
var ErrInvalidTransition = errors.New("session: invalid transition")

// Token identifies one async request. Tokens are issued from a single
// monotonic counter; zero is never issued.
type Token uint64

// Controller is the view state machine. It is not safe for concurrent use;
// the TUI mutates it only from its Update loop.
type Controller struct {
	view    View
	plan    *model.PlanResponse
	request model.PlanRequest
	errMsg  string
	years   int

	seq         Token
	submitToken Token // outstanding plan request, 0 if none

	emailDraft  string
	emailToken  Token
	emailNotice string

	exportToken Token
}

// New returns a controller on the form view with the default horizon.
func New() *Controller {
	return &Controller{view: ViewForm, years: projection.DefaultYears}
}

func (c *Controller) next() Token {
	c.seq++
	return c.seq
}

func (c *Controller) transition(op string, from View, to View) error {
	if c.view != from {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, c.view)
	}
	c.view = to
	return nil
}

// View returns the current screen.
func (c *Controller) View() View { return c.view }

// Loading reports whether a plan request is outstanding.
func (c *Controller) Loading() bool { return c.submitToken != 0 }

// Error returns the banner text shown on the form, or "".
func (c *Controller) Error() string { return c.errMsg }

// Plan returns the stored plan. After Back it is still set but not shown.
func (c *Controller) Plan() *model.PlanResponse { return c.plan }

// Request returns the last submitted form values.
func (c *Controller) Request() model.PlanRequest { return c.request }

// Years returns the projection horizon.
func (c *Controller) Years() int { return c.years }

// BeginSubmit validates req and starts a plan request. A submission while
// another is outstanding supersedes it.
func (c *Controller) BeginSubmit(req model.PlanRequest) (Token, error) {
	if c.view != ViewForm {
		return 0, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, c.view)
	}
	if err := req.Validate(); err != nil {
		c.errMsg = err.Error()
		return 0, err
	}
	c.request = req
	c.errMsg = ""
	c.submitToken = c.next()
	return c.submitToken, nil
}

// CompleteSubmit applies the outcome of the request identified by token.
// It returns false, changing nothing, if token is not the outstanding one.
func (c *Controller) CompleteSubmit(token Token, resp *model.PlanResponse, err error) bool {
	if token == 0 || token != c.submitToken {
		return false
	}
	c.submitToken = 0
	if err != nil || resp == nil {
		c.errMsg = PlanFailureMessage
		return true
	}
	c.plan = resp
	c.errMsg = ""
	c.emailNotice = ""
	c.view = ViewResult
	return true
}

// CancelSubmit abandons the outstanding plan request, if any.
func (c *Controller) CancelSubmit() error {
	if c.view != ViewForm || c.submitToken == 0 {
		return fmt.Errorf("%w: cancel with nothing in flight", ErrInvalidTransition)
	}
	c.submitToken = 0
	return nil
}

// ViewProjection switches from the result to the projection chart.
func (c *Controller) ViewProjection() error {
	return c.transition("view projection", ViewResult, ViewProjection)
}

// BackToResult returns from the projection chart to the result.
func (c *Controller) BackToResult() error {
	return c.transition("back to result", ViewProjection, ViewResult)
}

// Back returns from the result to the form. The plan is kept.
func (c *Controller) Back() error {
	return c.transition("back", ViewResult, ViewForm)
}

// Reset discards the plan and returns to an empty form. Any in-flight
// email or export is abandoned.
func (c *Controller) Reset() error {
	if c.view != ViewResult && c.view != ViewProjection {
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, c.view)
	}
	c.view = ViewForm
	c.plan = nil
	c.request = model.PlanRequest{}
	c.errMsg = ""
	c.emailDraft = ""
	c.emailNotice = ""
	c.emailToken = 0
	c.exportToken = 0
	c.years = projection.DefaultYears
	return nil
}

// SetYears sets the projection horizon, clamped to the allowed range.
func (c *Controller) SetYears(n int) { c.years = projection.ClampYears(n) }

// AdjustYears moves the horizon by delta years, clamped.
func (c *Controller) AdjustYears(delta int) { c.SetYears(c.years + delta) }

// EmailDraft returns the address typed so far.
func (c *Controller) EmailDraft() string { return c.emailDraft }

// SetEmailDraft replaces the address being edited.
func (c *Controller) SetEmailDraft(s string) { c.emailDraft = s }

// EmailSending reports whether an email request is outstanding.
func (c *Controller) EmailSending() bool { return c.emailToken != 0 }

// EmailNotice returns the success message of the last email, or "".
func (c *Controller) EmailNotice() string { return c.emailNotice }

// BeginEmail starts an email dispatch for the current plan and returns the
// trimmed address to send to. An empty draft returns planapi.ErrEmailRequired.
func (c *Controller) BeginEmail() (Token, string, error) {
	if c.view != ViewResult || c.plan == nil {
		return 0, "", fmt.Errorf("%w: email from %s", ErrInvalidTransition, c.view)
	}
	addr := strings.TrimSpace(c.emailDraft)
	if addr == "" {
		return 0, "", planapi.ErrEmailRequired
	}
	c.emailNotice = ""
	c.emailToken = c.next()
	return c.emailToken, addr, nil
}

// CompleteEmail applies an email outcome. On success the draft is cleared
// and the success notice set; failures are reported by the caller.
func (c *Controller) CompleteEmail(token Token, err error) bool {
	if token == 0 || token != c.emailToken {
		return false
	}
	c.emailToken = 0
	if err == nil {
		c.emailDraft = ""
		c.emailNotice = EmailSuccessMessage
	}
	return true
}

// Exporting reports whether a PDF export is outstanding.
func (c *Controller) Exporting() bool { return c.exportToken != 0 }

// BeginExport starts a PDF export of the current plan.
func (c *Controller) BeginExport() (Token, error) {
	if c.view != ViewResult || c.plan == nil {
		return 0, fmt.Errorf("%w: export from %s", ErrInvalidTransition, c.view)
	}
	c.exportToken = c.next()
	return c.exportToken, nil
}

// CompleteExport clears the export flag if token is the outstanding one.
func (c *Controller) CompleteExport(token Token) bool {
	if token == 0 || token != c.exportToken {
		return false
	}
	c.exportToken = 0
	return true
}
