package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/hlog"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/auth"
	"feedback-backend/internal/models"
	"feedback-backend/internal/service"
	"feedback-backend/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

// dashboardListSize is how many submissions the dashboard table shows.
const dashboardListSize = 50

var pageFuncs = template.FuncMap{
	"seq": func(from, to int) []int {
		out := make([]int, 0, to-from+1)
		for i := from; i <= to; i++ {
			out = append(out, i)
		}
		return out
	},
	"dict": func(kv ...interface{}) map[string]interface{} {
		out := make(map[string]interface{}, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			out[fmt.Sprint(kv[i])] = kv[i+1]
		}
		return out
	},
	"itoa":    func(i int) string { return fmt.Sprint(i) },
	"nps":     service.CategorizeNPS,
	"score":   formatScore,
	"dateFmt": func(t time.Time) string { return t.Format("Jan 2, 2006") },
}

var pages = map[string]*template.Template{
	"form":      parsePage("form.html"),
	"login":     parsePage("login.html"),
	"dashboard": parsePage("dashboard.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(pageFuncs).ParseFS(templateFS, "templates/"+name))
}

type ratingField struct {
	Name  string
	Label string
}

var ratingFields = []ratingField{
	{"toolBuildQuality", "Tool Build Quality"},
	{"packaging", "Packaging"},
	{"onTimeDelivery", "On-Time Delivery"},
	{"afterSalesSupport", "After-Sales Support"},
	{"productUsability", "Product Usability and Operation"},
	{"recommendationScore", "How likely are you to recommend us to others?"},
}

// PageHandler serves the server-rendered customer form and admin pages.
type PageHandler struct {
	feedback FeedbackService
	stats    StatsService
}

func NewPageHandler(feedback FeedbackService, stats StatsService) *PageHandler {
	return &PageHandler{
		feedback: feedback,
		stats:    stats,
	}
}

type formView struct {
	Values    url.Values
	Errors    map[string]string
	Ratings   []ratingField
	Submitted bool
	Failed    bool
}

// --- GET /feedback/form ---

func (h *PageHandler) FeedbackForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "form", formView{
		Values:    url.Values{"date": {time.Now().Format(validation.DateLayout)}},
		Ratings:   ratingFields,
		Submitted: r.URL.Query().Get("submitted") == "1",
	})
}

// --- POST /feedback/form ---

func (h *PageHandler) SubmitFeedbackForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	_, err := h.feedback.Submit(r.Context(), validation.FromForm(r.PostForm))
	if err == nil {
		http.Redirect(w, r, "/feedback/form?submitted=1", http.StatusSeeOther)
		return
	}

	view := formView{Values: r.PostForm, Ratings: ratingFields, Errors: map[string]string{}}
	status := http.StatusBadRequest
	if ve, ok := apperr.IsValidation(err); ok {
		for _, fe := range ve.Fields {
			view.Errors[fe.Field] = fe.Message
		}
	} else {
		hlog.FromRequest(r).Error().Err(err).Msg("submit feedback form")
		view.Failed = true
		status = http.StatusInternalServerError
	}
	render(w, r, status, "form", view)
}

// --- GET /admin/login ---

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "login", map[string]interface{}{
		"Error":  r.URL.Query().Get("error") != "",
		"Action": "/auth/login",
	})
}

// --- GET /admin ---

func (h *PageHandler) AdminIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, DashboardPath, http.StatusFound)
}

type averageRow struct {
	Label string
	Value *float64
}

type dashboardView struct {
	Admin       *auth.Identity
	Stats       *service.Stats
	Overall     *float64
	Averages    []averageRow
	Promoters   int
	Passives    int
	Detractors  int
	Submissions []models.Feedback
	LiveTotal   int64
	GeneratedAt time.Time
}

// --- GET /admin/dashboard ---

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	caller := auth.FromContext(r.Context())
	stats, err := h.stats.ComputeStats(r.Context(), caller)
	if err != nil {
		pageError(w, r, err)
		return
	}
	list, err := h.feedback.List(r.Context(), 1, dashboardListSize)
	if err != nil {
		pageError(w, r, err)
		return
	}

	render(w, r, http.StatusOK, "dashboard", buildDashboard(caller, stats, list))
}

func buildDashboard(caller *auth.Identity, stats *service.Stats, list *service.Page) dashboardView {
	avg := stats.AverageScores
	view := dashboardView{
		Admin: caller,
		Stats: stats,
		Averages: []averageRow{
			{"Tool Build Quality", avg.ToolBuildQuality},
			{"Packaging", avg.Packaging},
			{"On-Time Delivery", avg.OnTimeDelivery},
			{"After-Sales Support", avg.AfterSalesSupport},
			{"Product Usability", avg.ProductUsability},
			{"Recommendation", avg.RecommendationScore},
		},
		Submissions: list.Data,
		LiveTotal:   list.Pagination.Total,
		GeneratedAt: time.Now(),
	}
	if overall, ok := service.OverallScore(avg); ok {
		view.Overall = &overall
	}
	for _, f := range list.Data {
		switch service.CategorizeNPS(f.RecommendationScore) {
		case service.Promoter:
			view.Promoters++
		case service.Passive:
			view.Passives++
		default:
			view.Detractors++
		}
	}
	return view
}

// --- Helpers ---

func formatScore(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *v)
}

func pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperr.ErrUnauthorized) {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}
	hlog.FromRequest(r).Error().Err(err).Msg("render admin page")
	http.Error(w, "Something went wrong", http.StatusInternalServerError)
}

func render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	var buf bytes.Buffer
	if err := pages[page].Execute(&buf, data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("page", page).Msg("render template")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
