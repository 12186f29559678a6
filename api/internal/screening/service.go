package screening

import (
	"context"
	"log/slog"

	"screening-bot/api/internal/form"
	"screening-bot/api/internal/metrics"
	"screening-bot/api/internal/normalize"
	"screening-bot/api/internal/payload"
	"screening-bot/api/internal/predict"
	"screening-bot/api/internal/schema"
)

// Dispatcher — отправка собранного запроса. Реализуется *predict.Client.
type Dispatcher interface {
	Submit(ctx context.Context, req payload.Request) (predict.Response, error)
}

// Service — конвейер validate → build → dispatch → normalize, общий для бота и прокси.
type Service struct {
	client  Dispatcher
	metrics *metrics.Metrics
	log     *slog.Logger
}

func New(client Dispatcher, m *metrics.Metrics, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{client: client, metrics: m, log: log}
}

// Validate проверяет форму её собственного вида.
func (s *Service) Validate(st form.State) (form.Validated, error) {
	v, err := form.Validate(st.Kind(), st)
	if err != nil {
		s.metrics.ObserveRejected(string(st.Kind()), "validation")
		s.log.Debug("form rejected", "kind", string(st.Kind()), "err", err)
		return form.Validated{}, err
	}
	return v, nil
}

// Resolve отправляет проверенную форму и возвращает нормализованный результат. Никогда не nil.
func (s *Service) Resolve(ctx context.Context, v form.Validated) normalize.Presentation {
	kind := v.Kind()
	req, err := payload.Build(kind, v)
	if err != nil {
		s.log.Error("build payload", "kind", string(kind), "err", err)
		return s.observe(kind, normalize.Normalize(kind, 0, nil, nil, err))
	}
	resp, err := s.client.Submit(ctx, req)
	if err != nil {
		return s.observe(kind, normalize.Normalize(kind, 0, nil, nil, err))
	}
	return s.observe(kind, normalize.Normalize(kind, resp.Status, resp.Body, resp.Raw, nil))
}

// Submit — полный прогон для формы вида kind. Ошибка возвращается только при
// непрошедшей проверке; тогда сети не было, а презентация несёт текст ошибки.
func (s *Service) Submit(ctx context.Context, kind schema.Kind, st form.State) (normalize.Presentation, error) {
	if st.Kind() != kind {
		st = rekind(kind, st)
	}
	v, err := s.Validate(st)
	if err != nil {
		return s.observe(kind, normalize.Error{Message: err.Error()}), err
	}
	return s.Resolve(ctx, v), nil
}

// rekind переносит значения в форму нужного вида; чужие поля отбрасываются.
func rekind(kind schema.Kind, st form.State) form.State {
	out := form.New(kind)
	sc, ok := schema.Lookup(kind)
	if !ok {
		return out
	}
	for _, f := range sc.Fields {
		if v, ok := st.Get(f.Name); ok {
			out = out.With(f.Name, v)
		}
	}
	return out
}

func (s *Service) observe(kind schema.Kind, p normalize.Presentation) normalize.Presentation {
	typ := "error"
	if normalize.IsOutcome(p) {
		typ = "outcome"
	}
	s.metrics.ObservePresentation(string(kind), typ)
	return p
}
