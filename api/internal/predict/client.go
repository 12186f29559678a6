package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"screening-bot/api/internal/metrics"
	"screening-bot/api/internal/payload"
	"screening-bot/api/internal/schema"
)

const DefaultBaseURL = "https://health-result-project.onrender.com"

var paths = map[schema.Kind]string{
	schema.Malaria:  "malpredict",
	schema.Diabetes: "diapredict",
	schema.Health:   "healthpredict",
	schema.Login:    "login",
	schema.Signup:   "signup",
}

// Path — путь эндпоинта для вида формы.
func Path(kind schema.Kind) (string, bool) {
	p, ok := paths[kind]
	return p, ok
}

// Response — разобранный ответ бэкенда, успешный или нет.
type Response struct {
	Status int
	Body   map[string]any // пустой, если JSON не объект
	Raw    []byte
}

func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// TransportError — ответа нет вовсе, или тело не JSON.
type TransportError struct {
	Kind schema.Kind
	Op   string // "marshal" | "request" | "do" | "read" | "decode"
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type Client struct {
	BaseURL string
	httpc   *http.Client
	log     *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option  { return func(cl *Client) { cl.httpc = c } }
func WithLogger(l *slog.Logger) Option      { return func(cl *Client) { cl.log = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(cl *Client) { cl.metrics = m } }

// New — клиент без собственного таймаута: ожидание ограничивает только ctx вызывающего.
func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc:   &http.Client{},
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit делает ровно один POST на эндпоинт вида запроса. Без ретраев и очередей.
func (c *Client) Submit(ctx context.Context, req payload.Request) (Response, error) {
	kind := req.Kind()
	path, ok := Path(kind)
	if !ok {
		return Response{}, &TransportError{Kind: kind, Op: "request", Err: fmt.Errorf("no endpoint for kind %q", kind)}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, &TransportError{Kind: kind, Op: "marshal", Err: err}
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+path, bytes.NewReader(body))
	if err != nil {
		return Response{}, &TransportError{Kind: kind, Op: "request", Err: err}
	}
	rid := uuid.NewString()
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("X-Request-ID", rid)

	log := c.log.With("kind", string(kind), "request_id", rid)
	start := time.Now()

	resp, err := c.httpc.Do(hreq)
	if err != nil {
		c.metrics.ObserveDispatch(string(kind), "transport", time.Since(start))
		log.Warn("dispatch failed", "err", err)
		return Response{}, &TransportError{Kind: kind, Op: "do", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.metrics.ObserveDispatch(string(kind), strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		log.Warn("read response", "status", resp.StatusCode, "err", err)
		return Response{}, &TransportError{Kind: kind, Op: "read", Err: err}
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.Warn("response is not json", "status", resp.StatusCode, "err", err)
		return Response{}, &TransportError{Kind: kind, Op: "decode", Err: err}
	}
	obj, _ := decoded.(map[string]any)
	if obj == nil {
		obj = map[string]any{}
	}

	log.Info("dispatched", "status", resp.StatusCode, "took", time.Since(start))
	return Response{Status: resp.StatusCode, Body: obj, Raw: raw}, nil
}
