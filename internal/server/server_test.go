package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pmtooling/riskpilot/internal/advisor"
	"github.com/pmtooling/riskpilot/internal/lessons"
	"github.com/pmtooling/riskpilot/internal/risk"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	adv := advisor.New(advisor.Config{DemoMode: true})
	ext := lessons.NewExtractor(lessons.Config{DemoMode: true})
	srv, err := New(adv, ext)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func uploadFile(t *testing.T, srv *Server, path, field, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	part.Write([]byte(content))
	w.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexRoute(t *testing.T) {
	srv := newTestServer(t)
	rec := get(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Risk Register Analysis") {
		t.Error("expected page heading in response body")
	}
}

func TestAnalyzeUploadFlow(t *testing.T) {
	srv := newTestServer(t)

	csv := "ID,Description,Mitigation,Probability,Impact\nR1,Bad thing might happen,Fix it,3,3\n"
	rec := uploadFile(t, srv, "/analyze", "register", "register.csv", csv)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect after upload, got %d", rec.Code)
	}

	rec = get(t, srv, "/")
	body := rec.Body.String()
	if !strings.Contains(body, "Overall quality") {
		t.Error("analysis result not rendered")
	}
	if !strings.Contains(body, "fallback") {
		t.Error("demo-mode result should be tagged fallback")
	}
}

func TestAnalyzeRejectsBadCSV(t *testing.T) {
	srv := newTestServer(t)

	rec := uploadFile(t, srv, "/analyze", "register", "register.csv", "Name,Notes\nfoo,bar\n")
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	rec = get(t, srv, "/")
	if !strings.Contains(rec.Body.String(), "missing required columns") {
		t.Error("expected missing-columns error in page")
	}
}

func TestWBSGenerateAndDerive(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{"narrative": {"Build a small reporting tool"}, "project": {"Reporting"}}
	if rec := postForm(t, srv, "/wbs/generate", form); rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	rec := get(t, srv, "/wbs")
	if !strings.Contains(rec.Body.String(), "Project Initiation") {
		t.Error("generated phases not rendered")
	}

	if rec := postForm(t, srv, "/wbs/risks", url.Values{}); rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	rec = get(t, srv, "/wbs")
	if !strings.Contains(rec.Body.String(), "Identified Risks") {
		t.Error("derived risks not rendered")
	}
}

func TestWorkflowRun(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{"narrative": {"Research study on delivery outcomes"}, "project": {"Study"}}
	if rec := postForm(t, srv, "/workflow/run", form); rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	rec := get(t, srv, "/workflow")
	body := rec.Body.String()
	for _, want := range []string{"Work Breakdown Structure", "Identified Risks", "Quality Analysis"} {
		if !strings.Contains(body, want) {
			t.Errorf("workflow page missing %q", want)
		}
	}
}

func TestExportRequiresState(t *testing.T) {
	srv := newTestServer(t)
	if rec := get(t, srv, "/export/risks"); rec.Code != http.StatusNotFound {
		t.Errorf("export without state should 404, got %d", rec.Code)
	}
	if rec := get(t, srv, "/export/wbs"); rec.Code != http.StatusNotFound {
		t.Errorf("export without state should 404, got %d", rec.Code)
	}
}

func TestExportWBSAfterGenerate(t *testing.T) {
	srv := newTestServer(t)
	postForm(t, srv, "/wbs/generate", url.Values{"narrative": {"Build it"}})

	rec := get(t, srv, "/export/wbs")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "wbs-") || !strings.Contains(cd, ".csv") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "Phase,Activity,Duration") {
		t.Error("CSV header missing from export")
	}
}

func TestHeuristicsAddAndDelete(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{
		"name":        {"Owner Seniority"},
		"description": {"Owners should be named individuals"},
		"rule":        {"Flag team names used as owners"},
		"category":    {"completeness"},
	}
	if rec := postForm(t, srv, "/heuristics/add", form); rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	rec := get(t, srv, "/heuristics")
	if !strings.Contains(rec.Body.String(), "Owner Seniority") {
		t.Fatal("custom heuristic not listed")
	}

	if rec := postForm(t, srv, "/heuristics/custom-1/delete", url.Values{}); rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	rec = get(t, srv, "/heuristics")
	if strings.Contains(rec.Body.String(), "Owner Seniority") {
		t.Error("deleted heuristic still listed")
	}
}

func TestDeleteHeuristicLeavesSnapshotsIntact(t *testing.T) {
	srv := newTestServer(t)

	for _, name := range []string{"First", "Second"} {
		form := url.Values{
			"name":        {name},
			"description": {"d"},
			"rule":        {"r"},
			"category":    {"completeness"},
		}
		if rec := postForm(t, srv, "/heuristics/add", form); rec.Code != http.StatusFound {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}
	}

	snap := srv.snapshot()
	if len(snap.Custom) != 2 {
		t.Fatalf("expected 2 custom heuristics, got %d", len(snap.Custom))
	}

	postForm(t, srv, "/heuristics/custom-1/delete", url.Values{})

	if snap.Custom[0].Name != "First" || snap.Custom[1].Name != "Second" {
		t.Errorf("snapshot mutated by delete: %+v", snap.Custom)
	}
}

func TestHeuristicsPageRendersDuringDeletes(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 20; i++ {
		form := url.Values{
			"name":        {fmt.Sprintf("Rule %d", i)},
			"description": {"d"},
			"rule":        {"r"},
			"category":    {"completeness"},
		}
		postForm(t, srv, "/heuristics/add", form)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			get(t, srv, "/heuristics")
		}
	}()
	for i := 1; i <= 20; i++ {
		postForm(t, srv, fmt.Sprintf("/heuristics/custom-%d/delete", i), url.Values{})
	}
	<-done

	if n := len(srv.snapshot().Custom); n != 0 {
		t.Errorf("expected all custom heuristics deleted, %d left", n)
	}
}

func TestWorkflowRunDiscardsStaleResults(t *testing.T) {
	adv := advisor.New(advisor.Config{DemoMode: true, DemoDelay: 50 * time.Millisecond})
	ext := lessons.NewExtractor(lessons.Config{DemoMode: true})
	srv, err := New(adv, ext)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		postForm(t, srv, "/workflow/run", url.Values{"narrative": {"Earlier slow run"}, "project": {"Old"}})
	}()

	// A newer run begins (and fails validation) while the first is still
	// inside its simulated delays. The first run's results are now stale.
	time.Sleep(10 * time.Millisecond)
	postForm(t, srv, "/workflow/run", url.Values{"narrative": {"   "}})
	<-done

	if snap := srv.snapshot(); snap.Narrative == "Earlier slow run" {
		t.Error("stale workflow run overwrote newer state")
	}
}

func TestAPIAnalyze(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/analyze", apiAnalyzeRequest{Risks: []risk.Risk{
		{ID: "R1", Description: "Bad thing might happen", Mitigation: "Fix it", Probability: 3, Impact: 3},
	}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp apiAnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Meta.Source != advisor.SourceFallback {
		t.Errorf("demo server should report fallback, got %+v", resp.Meta)
	}
	if len(resp.Result.Risks) != 1 || resp.Result.Risks[0].QualityScore == 0 {
		t.Errorf("risks not scored: %+v", resp.Result)
	}
}

func TestAPIValidationError(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/wbs", apiWBSRequest{Narrative: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "narrative") {
		t.Errorf("error body should name the problem: %s", rec.Body.String())
	}
}

func TestAPIWBSAndRisks(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/wbs", apiWBSRequest{Narrative: "Construct a new building with foundation work"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var wbsResp apiWBSResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &wbsResp); err != nil {
		t.Fatalf("decoding WBS response: %v", err)
	}
	if len(wbsResp.Phases) == 0 {
		t.Fatal("no phases returned")
	}

	rec = postJSON(t, srv, "/api/wbs/risks", apiWBSRisksRequest{Phases: wbsResp.Phases, ProjectName: "Office"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var riskResp apiWBSRisksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &riskResp); err != nil {
		t.Fatalf("decoding risk response: %v", err)
	}
	if len(riskResp.Risks) == 0 {
		t.Error("no risks returned")
	}
}

func TestAPILessons(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/lessons", apiLessonsRequest{Text: "Review text", Name: "gateway-review.txt"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp apiLessonsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding lessons response: %v", err)
	}
	if len(resp.Result.Lessons) == 0 {
		t.Error("no lessons returned")
	}
	if resp.Result.DocumentType != "gateway_review" {
		t.Errorf("document type not inferred: %q", resp.Result.DocumentType)
	}
}

func TestAPIRejectsGet(t *testing.T) {
	srv := newTestServer(t)
	if rec := get(t, srv, "/api/analyze"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET on API should 405, got %d", rec.Code)
	}
}
