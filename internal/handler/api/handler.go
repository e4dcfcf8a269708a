package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"ParamSweep/internal/domain/models"
	"ParamSweep/internal/services/strategies"
	"ParamSweep/internal/usecase"
	xhttp "ParamSweep/pkg/http"
	applogger "ParamSweep/pkg/logger"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Handler serves the optimizer API.
type Handler struct {
	catalog *strategies.Catalog
	sweeps  *usecase.SweepService
	params  *usecase.ParamsReader
	live    *usecase.LiveSignals
	hub     *Hub
	checks  map[string]HealthCheck
	l       *applogger.Logger
}

func NewHandler(
	catalog *strategies.Catalog,
	sweeps *usecase.SweepService,
	params *usecase.ParamsReader,
	live *usecase.LiveSignals,
	hub *Hub,
	l *applogger.Logger,
) *Handler {
	return &Handler{
		catalog: catalog,
		sweeps:  sweeps,
		params:  params,
		live:    live,
		hub:     hub,
		checks:  make(map[string]HealthCheck),
		l:       l.With("api"),
	}
}

// AddHealthCheck registers a dependency check for /healthz.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/ws/signals", h.hub.Serve)

	g := e.Group("/api")
	g.GET("/strategies", h.Strategies)
	g.POST("/sweeps", h.StartSweep)
	g.GET("/sweeps/:id", h.GetSweep)
	g.DELETE("/sweeps/:id", h.AbandonSweep)
	g.GET("/params/:coin/:strategy", h.Params)
	g.GET("/signals", h.Signal)
}

type strategiesResponse struct {
	Families   []models.Family         `json:"families"`
	Strategies []strategies.Definition `json:"strategies"`
}

func (h *Handler) Strategies(c echo.Context) error {
	return xhttp.SuccessResponse(c, strategiesResponse{
		Families:   h.catalog.Families(),
		Strategies: h.catalog.Definitions(),
	})
}

func (h *Handler) StartSweep(c echo.Context) error {
	req := &models.SweepRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}
	sw, err := h.sweeps.Start(*req)
	if err != nil {
		h.l.Warn("Sweep rejected", applogger.String("strategy", req.Strategy), applogger.Error(err))
		return xhttp.ErrorResponse(c, appError(err))
	}
	return xhttp.AcceptedResponse(c, sw)
}

func (h *Handler) GetSweep(c echo.Context) error {
	req := &models.SweepStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}
	sw, err := h.sweeps.Get(req.ID)
	if err != nil {
		return xhttp.ErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, sw)
}

func (h *Handler) AbandonSweep(c echo.Context) error {
	req := &models.SweepStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}
	if _, err := h.sweeps.Get(req.ID); err != nil {
		return xhttp.ErrorResponse(c, appError(err))
	}
	if !h.sweeps.Abandon(req.ID) {
		return xhttp.ErrorResponse(c, xhttp.ConflictError("sweep already finished").WithParam("id", req.ID))
	}
	return xhttp.NoContentResponse(c)
}

func (h *Handler) Params(c echo.Context) error {
	req := &models.ParamsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}
	rec, err := h.params.Latest(c.Request().Context(), strings.ToUpper(req.Coin), models.StrategyID(req.Strategy))
	if err != nil {
		return xhttp.ErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, rec)
}

func (h *Handler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}
	sig, err := h.live.Generate(c.Request().Context(), strings.ToUpper(req.Coin), models.StrategyID(req.Strategy))
	if err != nil {
		h.l.Warn("Live signal failed",
			applogger.String("coin", req.Coin),
			applogger.String("strategy", req.Strategy),
			applogger.Error(err))
		return xhttp.ErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, sig)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	res := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			res.Checks[name] = err.Error()
			res.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "ok"
	}
	return xhttp.DataResponse(c, code, res)
}
