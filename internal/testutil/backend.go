// Package testutil provides a fake HolinFlow backend for tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/holinflow/hflow/internal/model"
)

// FakePDF is the body served by the fake PDF endpoint.
var FakePDF = []byte("%PDF-1.4\n% hflow test report\n%%EOF\n")

// EmailRequest is a recorded call to the email endpoint.
type EmailRequest struct {
	Email string             `json:"email"`
	Plan  model.PlanResponse `json:"plan"`
}

// Backend is an httptest server speaking the backend's REST contract.
// Status fields default to 200; set them to simulate failures.
type Backend struct {
	Server *httptest.Server

	mu           sync.Mutex
	plan         model.PlanResponse
	planStatus   int
	pdfStatus    int
	emailStatus  int
	rawPlanBody  string
	planRequests []model.PlanRequest
	pdfPlans     []model.PlanResponse
	emails       []EmailRequest
	requestIDs   []string
}

// NewBackend starts a fake backend serving ExamplePlan. It is closed when
// the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		plan:        ExamplePlan(),
		planStatus:  http.StatusOK,
		pdfStatus:   http.StatusOK,
		emailStatus: http.StatusOK,
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/plan-detailed", b.handlePlan).Methods(http.MethodPost)
	r.HandleFunc("/api/report-pdf", b.handlePDF).Methods(http.MethodPost)
	r.HandleFunc("/api/report-email", b.handleEmail).Methods(http.MethodPost)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the fake backend's base URL.
func (b *Backend) URL() string { return b.Server.URL }

// SetPlan replaces the plan served on success.
func (b *Backend) SetPlan(p model.PlanResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.plan = p
	b.rawPlanBody = ""
}

// SetRawPlanBody makes the plan endpoint return body verbatim.
func (b *Backend) SetRawPlanBody(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rawPlanBody = body
}

// FailPlan, FailPDF and FailEmail set the status code for each endpoint.
func (b *Backend) FailPlan(status int)  { b.setStatus(&b.planStatus, status) }
func (b *Backend) FailPDF(status int)   { b.setStatus(&b.pdfStatus, status) }
func (b *Backend) FailEmail(status int) { b.setStatus(&b.emailStatus, status) }

func (b *Backend) setStatus(field *int, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	*field = status
}

// PlanRequests returns the decoded plan requests received so far.
func (b *Backend) PlanRequests() []model.PlanRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.PlanRequest(nil), b.planRequests...)
}

// PDFPlans returns the plans posted to the PDF endpoint.
func (b *Backend) PDFPlans() []model.PlanResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.PlanResponse(nil), b.pdfPlans...)
}

// Emails returns the email requests received so far.
func (b *Backend) Emails() []EmailRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]EmailRequest(nil), b.emails...)
}

// RequestIDs returns every X-Request-ID header seen, in arrival order.
func (b *Backend) RequestIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requestIDs...)
}

func (b *Backend) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req model.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.planRequests = append(b.planRequests, req)
	b.requestIDs = append(b.requestIDs, r.Header.Get("X-Request-ID"))
	status, plan, raw := b.planStatus, b.plan, b.rawPlanBody
	b.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "plan failed", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if raw != "" {
		_, _ = w.Write([]byte(raw))
		return
	}
	_ = json.NewEncoder(w).Encode(plan)
}

func (b *Backend) handlePDF(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan model.PlanResponse `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.pdfPlans = append(b.pdfPlans, req.Plan)
	b.requestIDs = append(b.requestIDs, r.Header.Get("X-Request-ID"))
	status := b.pdfStatus
	b.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "pdf failed", status)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(FakePDF)
}

func (b *Backend) handleEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.emails = append(b.emails, req)
	b.requestIDs = append(b.requestIDs, r.Header.Get("X-Request-ID"))
	status := b.emailStatus
	b.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "smtp failed", status)
		return
	}
	w.WriteHeader(http.StatusOK)
}
