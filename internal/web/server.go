// Package web serves the daily report UI and API.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mrcode/nightscout-report/internal/chart"
	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// DaySource supplies one day's raw readings and treatments. The Nightscout
// client implements it; tests substitute a stub.
type DaySource interface {
	FetchDay(day string, loc *time.Location) ([]models.GlucoseEntry, []models.Treatment, error)
}

// Server renders the report page and answers the report API.
type Server struct {
	source DaySource
	loc    *time.Location
	tmpl   *template.Template
	log    *slog.Logger
}

// NewServer builds a server around a data source. loc is the display
// timezone for the whole report.
func NewServer(source DaySource, loc *time.Location, log *slog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Server{
		source: source,
		loc:    loc,
		tmpl:   tmpl,
		log:    log,
	}, nil
}

// Router returns the HTTP mux.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/chart.png", s.handleChart)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := struct {
		Today string
	}{
		Today: time.Now().In(s.loc).Format("2006-01-02"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.log.Error("template error", "err", err)
		http.Error(w, "Template Error", http.StatusInternalServerError)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	day := s.dayParam(r)
	started := time.Now()

	rep, err := s.buildDay(day)
	if err != nil {
		s.log.Error("report failed", "day", day, "err", err)
		s.writeError(w, http.StatusBadGateway, "failed to fetch or process data")
		return
	}

	body, err := sonic.Marshal(rep)
	if err != nil {
		s.log.Error("encoding report", "day", day, "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to encode report")
		return
	}

	s.log.Info("report served", "day", day, "rows", len(rep.TableData), "elapsed", time.Since(started))
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	day := s.dayParam(r)

	rep, err := s.buildDay(day)
	if err != nil {
		s.log.Error("chart failed", "day", day, "err", err)
		http.Error(w, "failed to fetch or process data", http.StatusBadGateway)
		return
	}

	img, err := chart.Render(rep)
	if err != nil {
		s.log.Error("rendering chart", "day", day, "err", err)
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(img)
}

// buildDay fetches one day's raw series and runs the report pipeline.
// Upstream failure means no report at all; the pipeline itself cannot fail.
func (s *Server) buildDay(day string) (*models.DailyReport, error) {
	entries, treatments, err := s.source.FetchDay(day, s.loc)
	if err != nil {
		return nil, err
	}
	return report.BuildReport(entries, treatments, s.loc), nil
}

func (s *Server) dayParam(r *http.Request) string {
	if day := r.URL.Query().Get("date"); day != "" {
		return day
	}
	return time.Now().In(s.loc).Format("2006-01-02")
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"error":%q}`, msg)
}
