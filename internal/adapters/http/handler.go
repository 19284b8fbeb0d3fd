package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/uzochukwueddie/spin-the-match/internal/app"
	"github.com/uzochukwueddie/spin-the-match/internal/domain"
)

const (
	maxNameLen  = 64
	maxColorLen = 32
)

// Streamer subscribes a connection to a wheel's event stream.
type Streamer interface {
	ServeWheel(w http.ResponseWriter, r *http.Request, wheelID string) error
}

type Handler struct {
	svc    *app.WheelService
	stream Streamer
}

func NewHandler(svc *app.WheelService, stream Streamer) *Handler {
	return &Handler{svc: svc, stream: stream}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.GET("/v1/presets", h.ListPresets)

	g := e.Group("/v1/wheels")
	g.POST("", h.CreateWheel)
	g.GET("/:id", h.GetWheel)
	g.DELETE("/:id", h.DeleteWheel)
	g.PATCH("/:id/entities/:side", h.UpdateEntity)
	g.PUT("/:id/container", h.Resize)
	g.POST("/:id/spin", h.Spin)
	g.POST("/:id/spin-again", h.SpinAgain)
	g.POST("/:id/dismiss", h.Dismiss)
	if h.stream != nil {
		g.GET("/:id/ws", h.Stream)
	}
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ListPresets(c echo.Context) error {
	presets, err := h.svc.Presets(c.Request().Context())
	if err != nil {
		return mapError(c, err)
	}
	resp := make([]PresetResponse, len(presets))
	for i, p := range presets {
		resp[i] = PresetResponse{
			ID:      p.ID,
			Name:    p.Name,
			EntityA: EntityResp{Name: p.EntityA.Name, Color: p.EntityA.Color},
			EntityB: EntityResp{Name: p.EntityB.Name, Color: p.EntityB.Color},
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateWheel(c echo.Context) error {
	var req CreateWheelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
	}

	res, err := h.svc.CreateWheel(c.Request().Context(), strings.TrimSpace(req.Preset))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, toResponse(res, requestID(c)))
}

func (h *Handler) GetWheel(c echo.Context) error {
	res, err := h.svc.GetWheel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, toResponse(res, requestID(c)))
}

func (h *Handler) DeleteWheel(c echo.Context) error {
	if err := h.svc.DeleteWheel(c.Request().Context(), c.Param("id")); err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateEntity(c echo.Context) error {
	var req UpdateEntityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
	}
	if req.Name == nil && req.Color == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name or color is required"})
	}
	if req.Name != nil && utf8.RuneCountInString(*req.Name) > maxNameLen {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name must be at most 64 characters"})
	}
	if req.Color != nil && len(*req.Color) > maxColorLen {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "color must be at most 32 characters"})
	}

	upd := app.EntityUpdate{Name: req.Name, Color: req.Color}
	res, err := h.svc.UpdateEntity(c.Request().Context(), c.Param("id"), domain.Side(c.Param("side")), upd)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, toResponse(res, requestID(c)))
}

func (h *Handler) Resize(c echo.Context) error {
	var req ContainerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
	}
	res, err := h.svc.Resize(c.Request().Context(), c.Param("id"), req.Width)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, toResponse(res, requestID(c)))
}

func (h *Handler) Spin(c echo.Context) error {
	return h.command(c, h.svc.Spin)
}

func (h *Handler) SpinAgain(c echo.Context) error {
	return h.command(c, h.svc.SpinAgain)
}

func (h *Handler) Dismiss(c echo.Context) error {
	return h.command(c, h.svc.Dismiss)
}

func (h *Handler) Stream(c echo.Context) error {
	if err := h.stream.ServeWheel(c.Response(), c.Request(), c.Param("id")); err != nil {
		return mapError(c, err)
	}
	return nil
}

// command runs a lifecycle command. A rejected command still answers 200
// with accepted=false and the unchanged state.
func (h *Handler) command(c echo.Context, fn func(ctx context.Context, id string) (app.Result, error)) error {
	res, err := fn(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, toResponse(res, requestID(c)))
}

func requestID(c echo.Context) string {
	id, _ := c.Get("request_id").(string)
	return id
}

func toResponse(r app.Result, requestID string) WheelResponse {
	st := r.State
	segs := make([]SegmentResp, len(st.Segments))
	for i, s := range st.Segments {
		segs[i] = toSegment(s)
	}

	labels := make([]PlacementResp, len(st.Geometry.Labels))
	for i, p := range st.Geometry.Labels {
		labels[i] = PlacementResp{Segment: p.Segment, X: p.X, Y: p.Y, AngleDeg: p.AngleDeg}
	}

	resp := WheelResponse{
		ID:          r.WheelID,
		Accepted:    r.Accepted,
		Revision:    st.Revision,
		EntityA:     EntityResp{Name: st.EntityA.Name, Color: st.EntityA.Color},
		EntityB:     EntityResp{Name: st.EntityB.Name, Color: st.EntityB.Color},
		Segments:    segs,
		Phase:       st.Phase,
		Revealed:    st.Revealed,
		RotationDeg: st.RotationDeg,
		Generation:  st.Generation,
		CanSpin:     st.CanSpin,
		Geometry: GeometryResp{
			ContainerWidth: st.Geometry.ContainerWidth,
			Size:           st.Geometry.Size,
			LabelRadius:    st.Geometry.Label.Radius,
			LabelWidth:     st.Geometry.Label.Width,
			LabelFontSize:  st.Geometry.Label.FontSize,
			HubSize:        st.Geometry.HubSize,
			Labels:         labels,
		},
		Meta: MetaResp{RequestID: requestID},
	}

	if st.Spin != nil {
		resp.Spin = &SpinResp{
			Generation: st.Spin.Generation,
			FromDeg:    st.Spin.FromDeg,
			TargetDeg:  st.Spin.TargetDeg,
			DurationMS: st.Spin.DurationMS,
			Easing:     st.Spin.Easing,
		}
	}
	if st.Outcome != nil {
		resp.Outcome = &OutcomeResp{
			Generation:    st.Outcome.Generation,
			Segment:       toSegment(st.Outcome.Segment),
			TargetDeg:     st.Outcome.TargetDeg,
			NormalizedDeg: st.Outcome.NormalizedDeg,
			EffectiveDeg:  st.Outcome.EffectiveDeg,
		}
	}
	return resp
}

func toSegment(s domain.Segment) SegmentResp {
	return SegmentResp{
		Index:    s.Index,
		Label:    s.Label,
		Kind:     s.Kind,
		Color:    s.Color,
		StartDeg: s.StartDeg,
		EndDeg:   s.EndDeg,
	}
}

func mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrWheelNotFound), errors.Is(err, domain.ErrPresetNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidSide):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrTooManyWheels):
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("internal error", "request_id", requestID(c), "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
