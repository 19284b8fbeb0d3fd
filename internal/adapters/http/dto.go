package http

import "github.com/uzochukwueddie/spin-the-match/internal/domain"

// WheelResponse is the JSON shape of a wheel returned by every /v1/wheels route.
type WheelResponse struct {
	ID          string        `json:"id"`
	Accepted    bool          `json:"accepted"`
	Revision    uint64        `json:"revision"`
	EntityA     EntityResp    `json:"entity_a"`
	EntityB     EntityResp    `json:"entity_b"`
	Segments    []SegmentResp `json:"segments"`
	Phase       domain.Phase  `json:"phase"`
	Revealed    bool          `json:"revealed"`
	RotationDeg float64       `json:"rotation_deg"`
	Generation  uint64        `json:"generation"`
	CanSpin     bool          `json:"can_spin"`
	Geometry    GeometryResp  `json:"geometry"`
	Spin        *SpinResp     `json:"spin,omitempty"`
	Outcome     *OutcomeResp  `json:"outcome,omitempty"`
	Meta        MetaResp      `json:"meta"`
}

type EntityResp struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type SegmentResp struct {
	Index    int                `json:"index"`
	Label    string             `json:"label"`
	Kind     domain.SegmentKind `json:"kind"`
	Color    string             `json:"color"`
	StartDeg float64            `json:"start_deg"`
	EndDeg   float64            `json:"end_deg"`
}

type GeometryResp struct {
	ContainerWidth int             `json:"container_width"`
	Size           int             `json:"size"`
	LabelRadius    int             `json:"label_radius"`
	LabelWidth     int             `json:"label_width"`
	LabelFontSize  int             `json:"label_font_size"`
	HubSize        int             `json:"hub_size"`
	Labels         []PlacementResp `json:"labels"`
}

type PlacementResp struct {
	Segment  int     `json:"segment"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	AngleDeg float64 `json:"angle_deg"`
}

type SpinResp struct {
	Generation uint64  `json:"generation"`
	FromDeg    float64 `json:"from_deg"`
	TargetDeg  float64 `json:"target_deg"`
	DurationMS int64   `json:"duration_ms"`
	Easing     string  `json:"easing"`
}

type OutcomeResp struct {
	Generation    uint64      `json:"generation"`
	Segment       SegmentResp `json:"segment"`
	TargetDeg     float64     `json:"target_deg"`
	NormalizedDeg float64     `json:"normalized_deg"`
	EffectiveDeg  float64     `json:"effective_deg"`
}

type MetaResp struct {
	RequestID string `json:"request_id"`
}

type PresetResponse struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	EntityA EntityResp `json:"entity_a"`
	EntityB EntityResp `json:"entity_b"`
}

type CreateWheelRequest struct {
	Preset string `json:"preset"`
}

type UpdateEntityRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type ContainerRequest struct {
	Width int `json:"width"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
