package handle

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"screening-bot/api/internal/form"
	"screening-bot/api/internal/metrics"
	"screening-bot/api/internal/normalize"
	"screening-bot/api/internal/ratelimit"
	"screening-bot/api/internal/schema"
)

const maxBody = 64 << 10

// Screener — конвейер отправки формы (screening.Service).
type Screener interface {
	Submit(ctx context.Context, kind schema.Kind, st form.State) (normalize.Presentation, error)
}

type Handle struct {
	svc     Screener
	limiter *ratelimit.PerClient
	metrics *metrics.Metrics
	log     *slog.Logger
}

func New(svc Screener, limiter *ratelimit.PerClient, m *metrics.Metrics, log *slog.Logger) *Handle {
	if log == nil {
		log = slog.Default()
	}
	return &Handle{svc: svc, limiter: limiter, metrics: m, log: log}
}

// Register вешает маршруты прокси на router.
func (h *Handle) Register(router *httprouter.Router) {
	router.POST("/v1/screening/:kind", h.limited("screening", h.Screen))
	router.GET("/v1/schema/:kind", h.limited("schema", h.Schema))
}

type outcomeResponse struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Label    string `json:"label"`
	Detail   string `json:"detail,omitempty"`
}

type errorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func errorJSON(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Type: "error", Message: msg})
}

func (h *Handle) limited(route string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !h.limiter.Allow(ratelimit.ClientKey(r), time.Now()) {
			h.metrics.ObserveRateLimited(route)
			w.Header().Set("Retry-After", "1")
			errorJSON(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next(w, r, ps)
	}
}

// Screen — POST /v1/screening/:kind с JSON-объектом значений формы.
// 200 — результат, 422 — форма не прошла проверку, 502 — ошибка сервера предсказаний.
func (h *Handle) Screen(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	kind, ok := schema.ParseKind(ps.ByName("kind"))
	if !ok {
		errorJSON(w, http.StatusNotFound, "unknown form kind")
		return
	}

	var raw map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(&raw); err != nil || raw == nil {
		errorJSON(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}
	st, err := form.FromRaw(kind, raw)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	pres, err := h.svc.Submit(r.Context(), kind, st)
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	switch p := pres.(type) {
	case normalize.Outcome:
		writeJSON(w, http.StatusOK, outcomeResponse{
			Type:     "outcome",
			Severity: p.Severity.String(),
			Label:    p.Label,
			Detail:   p.Detail,
		})
	case normalize.Error:
		h.log.Info("screening failed", "kind", string(kind), "message", p.Message)
		errorJSON(w, http.StatusBadGateway, p.Message)
	default:
		errorJSON(w, http.StatusBadGateway, normalize.MsgTransport)
	}
}

type fieldDoc struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required"`
}

type schemaDoc struct {
	Kind   string     `json:"kind"`
	Title  string     `json:"title"`
	Fields []fieldDoc `json:"fields"`
}

// Schema — GET /v1/schema/:kind: описание полей формы.
func (h *Handle) Schema(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	kind, ok := schema.ParseKind(ps.ByName("kind"))
	if !ok {
		errorJSON(w, http.StatusNotFound, "unknown form kind")
		return
	}
	sc := schema.MustLookup(kind)
	doc := schemaDoc{Kind: string(kind), Title: sc.Title}
	for _, f := range sc.Fields {
		doc.Fields = append(doc.Fields, fieldDoc{
			Name:     f.Name,
			Label:    f.Label(),
			Type:     f.Kind.String(),
			Options:  f.Options,
			Required: f.Required,
		})
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
