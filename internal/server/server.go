// Package server is the local web UI: risk register upload and analysis,
// WBS generation, the integrated workflow, the lessons library, and
// session-scoped heuristics management. All state is in memory and lives
// for the life of the process.
package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"

	"github.com/pmtooling/riskpilot/internal/advisor"
	"github.com/pmtooling/riskpilot/internal/document"
	"github.com/pmtooling/riskpilot/internal/lessons"
	"github.com/pmtooling/riskpilot/internal/plan"
	"github.com/pmtooling/riskpilot/internal/register"
	"github.com/pmtooling/riskpilot/internal/risk"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// maxUploadBytes caps uploaded register and document files.
const maxUploadBytes = 8 << 20

// state is the session-scoped working set shown by the pages.
type state struct {
	Narrative   string
	ProjectName string

	Analysis     *risk.AnalysisResult
	AnalysisMeta advisor.Meta

	Phases  []plan.Phase
	WBSMeta advisor.Meta

	Derived     []risk.Risk
	DerivedMeta advisor.Meta

	Extraction     *lessons.ExtractionResult
	ExtractionMeta advisor.Meta

	Custom []risk.Heuristic
	Error  string
}

// Server is the HTTP server for the risk toolkit UI.
type Server struct {
	advisor   *advisor.Advisor
	extractor *lessons.Extractor
	pages     map[string]*template.Template
	mux       *http.ServeMux

	mu        sync.Mutex
	state     state
	customSeq int

	// One staleness tracker per UI surface.
	analyzeTr  advisor.Tracker
	wbsTr      advisor.Tracker
	deriveTr   advisor.Tracker
	workflowTr advisor.Tracker
	lessonsTr  advisor.Tracker
}

// New creates a Server around an advisor and a lesson extractor.
func New(adv *advisor.Advisor, extractor *lessons.Extractor) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"severity": func(score int) string { return string(risk.SeverityOf(score)) },
		"date":     func(t time.Time) string { return t.Format("2006-01-02") },
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	pageNames := []string{"index.html", "wbs.html", "workflow.html", "lessons.html", "heuristics.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err = clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{advisor: adv, extractor: extractor, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Pages
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/wbs", s.handleWBSPage)
	s.mux.HandleFunc("/wbs/generate", s.handleGenerateWBS)
	s.mux.HandleFunc("/wbs/risks", s.handleDeriveRisks)
	s.mux.HandleFunc("/workflow", s.handleWorkflowPage)
	s.mux.HandleFunc("/workflow/run", s.handleWorkflowRun)
	s.mux.HandleFunc("/lessons", s.handleLessonsPage)
	s.mux.HandleFunc("/lessons/upload", s.handleLessonsUpload)
	s.mux.HandleFunc("/heuristics", s.handleHeuristics)
	s.mux.HandleFunc("/heuristics/add", s.handleAddHeuristic)
	s.mux.HandleFunc("/heuristics/", s.handleHeuristicAction)

	// Exports
	s.mux.HandleFunc("/export/risks", s.handleExportRisks)
	s.mux.HandleFunc("/export/wbs", s.handleExportWBS)

	// JSON API
	s.mux.HandleFunc("/api/analyze", s.apiAnalyze)
	s.mux.HandleFunc("/api/wbs", s.apiWBS)
	s.mux.HandleFunc("/api/wbs/risks", s.apiWBSRisks)
	s.mux.HandleFunc("/api/lessons", s.apiLessons)
}

func (s *Server) snapshot() state {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state
	s.state.Error = ""
	return snap
}

func (s *Server) setError(msg string) {
	s.mu.Lock()
	s.state.Error = msg
	s.mu.Unlock()
}

// activeHeuristics returns the default set plus session customs.
func (s *Server) activeHeuristics() []risk.Heuristic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(risk.DefaultHeuristics(), s.state.Custom...)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, "index.html", s.snapshot())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("register")
	if err != nil {
		s.setError("Choose a CSV file to analyze.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	defer file.Close()

	risks, err := register.Parse(file)
	if err != nil {
		s.setError(err.Error())
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	token := s.analyzeTr.Begin()
	result, meta, err := s.advisor.AnalyzeRisks(r.Context(), risks, s.activeHeuristics())
	if err != nil {
		s.setError(err.Error())
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	s.mu.Lock()
	if s.analyzeTr.Commit(token) {
		s.state.Analysis = &result
		s.state.AnalysisMeta = meta
	}
	s.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleWBSPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "wbs.html", s.snapshot())
}

func (s *Server) handleGenerateWBS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/wbs", http.StatusFound)
		return
	}

	narrative := strings.TrimSpace(r.FormValue("narrative"))
	project := strings.TrimSpace(r.FormValue("project"))
	templateText := r.FormValue("template")

	token := s.wbsTr.Begin()
	phases, meta, err := s.advisor.GenerateWBS(r.Context(), narrative, templateText)
	if err != nil {
		s.setError(err.Error())
		http.Redirect(w, r, "/wbs", http.StatusFound)
		return
	}

	s.mu.Lock()
	if s.wbsTr.Commit(token) {
		s.state.Narrative = narrative
		s.state.ProjectName = project
		s.state.Phases = phases
		s.state.WBSMeta = meta
		s.state.Derived = nil
	}
	s.mu.Unlock()

	http.Redirect(w, r, "/wbs", http.StatusFound)
}

func (s *Server) handleDeriveRisks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/wbs", http.StatusFound)
		return
	}

	s.mu.Lock()
	phases := s.state.Phases
	project := s.state.ProjectName
	s.mu.Unlock()

	token := s.deriveTr.Begin()
	risks, meta, err := s.advisor.IdentifyRisksFromWBS(r.Context(), phases, project)
	if err != nil {
		s.setError(err.Error())
		http.Redirect(w, r, "/wbs", http.StatusFound)
		return
	}

	s.mu.Lock()
	if s.deriveTr.Commit(token) {
		s.state.Derived = risks
		s.state.DerivedMeta = meta
	}
	s.mu.Unlock()

	http.Redirect(w, r, "/wbs", http.StatusFound)
}

func (s *Server) handleWorkflowPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "workflow.html", s.snapshot())
}

// handleWorkflowRun runs narrative -> WBS -> derived risks -> analysis in
// one pass.
func (s *Server) handleWorkflowRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/workflow", http.StatusFound)
		return
	}

	narrative := strings.TrimSpace(r.FormValue("narrative"))
	project := strings.TrimSpace(r.FormValue("project"))

	token := s.workflowTr.Begin()

	phases, wbsMeta, err := s.advisor.GenerateWBS(r.Context(), narrative, "")
	if err != nil {
		s.setError(err.Error())
		http.Redirect(w, r, "/workflow", http.StatusFound)
		return
	}

	risks, deriveMeta, err := s.advisor.IdentifyRisksFromWBS(r.Context(), phases, project)
	if err != nil {
		s.setError(err.Error())
		http.Redirect(w, r, "/workflow", http.StatusFound)
		return
	}

	result, analysisMeta, err := s.advisor.AnalyzeRisks(r.Context(), risks, s.activeHeuristics())
	if err != nil {
		s.setError(err.Error())
		http.Redirect(w, r, "/workflow", http.StatusFound)
		return
	}

	s.mu.Lock()
	if s.workflowTr.Commit(token) {
		s.state.Narrative = narrative
		s.state.ProjectName = project
		s.state.Phases = phases
		s.state.WBSMeta = wbsMeta
		s.state.Derived = risks
		s.state.DerivedMeta = deriveMeta
		s.state.Analysis = &result
		s.state.AnalysisMeta = analysisMeta
	}
	s.mu.Unlock()

	http.Redirect(w, r, "/workflow", http.StatusFound)
}

func (s *Server) handleLessonsPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "lessons.html", s.snapshot())
}

func (s *Server) handleLessonsUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/lessons", http.StatusFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("document")
	if err != nil {
		s.setError("Choose a document to extract lessons from.")
		http.Redirect(w, r, "/lessons", http.StatusFound)
		return
	}
	defer file.Close()

	text, err := document.PrepareText(header.Filename, file)
	if err != nil {
		s.setError(err.Error())
		http.Redirect(w, r, "/lessons", http.StatusFound)
		return
	}

	token := s.lessonsTr.Begin()
	result, meta, err := s.extractor.Extract(r.Context(), text, header.Filename, document.DocType(header.Filename))
	if err != nil {
		s.setError(err.Error())
		http.Redirect(w, r, "/lessons", http.StatusFound)
		return
	}

	s.mu.Lock()
	if s.lessonsTr.Commit(token) {
		s.state.Extraction = &result
		s.state.ExtractionMeta = meta
	}
	s.mu.Unlock()

	http.Redirect(w, r, "/lessons", http.StatusFound)
}

func (s *Server) handleHeuristics(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	s.render(w, "heuristics.html", map[string]any{
		"Defaults": risk.DefaultHeuristics(),
		"Custom":   snap.Custom,
		"Error":    snap.Error,
	})
}

func (s *Server) handleAddHeuristic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/heuristics", http.StatusFound)
		return
	}

	s.mu.Lock()
	s.customSeq++
	id := fmt.Sprintf("custom-%d", s.customSeq)
	s.mu.Unlock()

	h, err := risk.NewCustomHeuristic(
		id,
		strings.TrimSpace(r.FormValue("name")),
		strings.TrimSpace(r.FormValue("description")),
		strings.TrimSpace(r.FormValue("rule")),
		strings.TrimSpace(r.FormValue("category")),
	)
	if err != nil {
		s.setError(err.Error())
		http.Redirect(w, r, "/heuristics", http.StatusFound)
		return
	}

	s.mu.Lock()
	s.state.Custom = append(s.state.Custom, h)
	s.mu.Unlock()

	http.Redirect(w, r, "/heuristics", http.StatusFound)
}

func (s *Server) handleHeuristicAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/heuristics", http.StatusFound)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/heuristics/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[1] != "delete" {
		http.Redirect(w, r, "/heuristics", http.StatusFound)
		return
	}

	// Snapshots share the old backing array, so filter into a new one.
	s.mu.Lock()
	kept := make([]risk.Heuristic, 0, len(s.state.Custom))
	for _, h := range s.state.Custom {
		if h.ID != parts[0] {
			kept = append(kept, h)
		}
	}
	s.state.Custom = kept
	s.mu.Unlock()

	http.Redirect(w, r, "/heuristics", http.StatusFound)
}

func (s *Server) handleExportRisks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var risks []risk.Risk
	if s.state.Analysis != nil {
		risks = s.state.Analysis.Risks
	} else {
		risks = s.state.Derived
	}
	s.mu.Unlock()

	if len(risks) == 0 {
		http.Error(w, "No risks to export", http.StatusNotFound)
		return
	}

	sendCSV(w, register.ExportFilename("risk-register", time.Now()), register.ExportRisks(risks))
}

func (s *Server) handleExportWBS(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	phases := s.state.Phases
	s.mu.Unlock()

	if len(phases) == 0 {
		http.Error(w, "No WBS to export", http.StatusNotFound)
		return
	}

	sendCSV(w, register.ExportFilename("wbs", time.Now()), register.ExportWBS(phases))
}

func sendCSV(w http.ResponseWriter, filename, content string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	fmt.Fprint(w, content)
}

// JSON API

type apiAnalyzeRequest struct {
	Risks []risk.Risk `json:"risks"`
}

type apiAnalyzeResponse struct {
	Result risk.AnalysisResult `json:"result"`
	Meta   advisor.Meta        `json:"meta"`
}

func (s *Server) apiAnalyze(w http.ResponseWriter, r *http.Request) {
	var req apiAnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, meta, err := s.advisor.AnalyzeRisks(r.Context(), req.Risks, s.activeHeuristics())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, apiAnalyzeResponse{Result: result, Meta: meta})
}

type apiWBSRequest struct {
	Narrative string `json:"narrative"`
	Template  string `json:"template"`
}

type apiWBSResponse struct {
	Phases []plan.Phase `json:"phases"`
	Meta   advisor.Meta `json:"meta"`
}

func (s *Server) apiWBS(w http.ResponseWriter, r *http.Request) {
	var req apiWBSRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	phases, meta, err := s.advisor.GenerateWBS(r.Context(), req.Narrative, req.Template)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, apiWBSResponse{Phases: phases, Meta: meta})
}

type apiWBSRisksRequest struct {
	Phases      []plan.Phase `json:"phases"`
	ProjectName string       `json:"projectName"`
}

type apiWBSRisksResponse struct {
	Risks []risk.Risk  `json:"risks"`
	Meta  advisor.Meta `json:"meta"`
}

func (s *Server) apiWBSRisks(w http.ResponseWriter, r *http.Request) {
	var req apiWBSRisksRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	risks, meta, err := s.advisor.IdentifyRisksFromWBS(r.Context(), req.Phases, req.ProjectName)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, apiWBSRisksResponse{Risks: risks, Meta: meta})
}

type apiLessonsRequest struct {
	Text string `json:"text"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type apiLessonsResponse struct {
	Result lessons.ExtractionResult `json:"result"`
	Meta   advisor.Meta             `json:"meta"`
}

func (s *Server) apiLessons(w http.ResponseWriter, r *http.Request) {
	var req apiLessonsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = document.DocType(req.Name)
	}

	result, meta, err := s.extractor.Extract(r.Context(), req.Text, req.Name, req.Type)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, apiLessonsResponse{Result: result, Meta: meta})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(adv *advisor.Advisor, extractor *lessons.Extractor, port int) error {
	srv, err := New(adv, extractor)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
