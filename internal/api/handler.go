package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-org-boundaries/internal/metrics"
	"github.com/mr1hm/go-org-boundaries/internal/models"
	"github.com/mr1hm/go-org-boundaries/internal/navigation"
	"github.com/mr1hm/go-org-boundaries/internal/session"
	"github.com/mr1hm/go-org-boundaries/internal/stream"
)

type Handler struct {
	session     *session.Session
	broadcaster *stream.Broadcaster
}

func NewHandler(sess *session.Session, broadcaster *stream.Broadcaster) *Handler {
	return &Handler{
		session:     sess,
		broadcaster: broadcaster,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/api/levels", h.getLevels)
	r.GET("/api/boundaries", h.getBoundaries)
	r.GET("/api/view", h.getView)
	r.GET("/api/state", h.getState)
	r.POST("/api/state", h.restoreState)
	r.POST("/api/navigate", h.navigate)
	r.GET("/api/locate", h.locate)
	r.GET("/api/organizations/:id", h.getOrganization)
	r.GET("/api/stream", h.streamState)
}

type breadcrumb struct {
	ID   int64          `json:"id"`
	Name string         `json:"name"`
	Type models.OrgType `json:"type"`
}

type stateResponse struct {
	Level     int            `json:"level"`
	LevelType models.OrgType `json:"levelType"`
	Path      []breadcrumb   `json:"path"`
	Query     string         `json:"query"`
	Changed   *bool          `json:"changed,omitempty"`
}

type navigateRequest struct {
	Action string `json:"action" binding:"required"`
	OrgID  int64  `json:"orgId"`
	Level  int    `json:"level"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"levels": h.session.Machine().Levels()})
}

// getBoundaries renders the state encoded in the request's own query, so a
// shared link draws the same view without touching the session.
func (h *Handler) getBoundaries(c *gin.Context) {
	st := h.session.Machine().DecodeValues(c.Request.URL.Query())
	h.writeView(c, st)
}

func (h *Handler) getView(c *gin.Context) {
	h.writeView(c, h.session.State())
}

func (h *Handler) writeView(c *gin.Context, st navigation.State) {
	var highlight int64
	if raw := c.Query("highlight"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			highlight = id
		}
	}

	fc := toGeoJSON(h.session.Render(st, highlight))
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.stateResponse(h.session.State(), nil))
}

// restoreState replaces the session state with the one in the query string.
func (h *Handler) restoreState(c *gin.Context) {
	st := h.session.Restore(c.Request.URL.RawQuery)
	h.publish(st)
	c.JSON(http.StatusOK, h.stateResponse(st, nil))
}

func (h *Handler) navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, ok := parseMessage(req)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + req.Action})
		return
	}

	st, changed := h.session.Dispatch(msg)
	if changed {
		h.publish(st)
	}
	c.JSON(http.StatusOK, h.stateResponse(st, &changed))
}

func (h *Handler) locate(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}

	o := h.session.Locate(h.session.State(), models.Point{Lat: lat, Lng: lng})
	if o == nil {
		c.JSON(http.StatusOK, gin.H{"organization": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"organization": o,
		"drillable":    h.session.Machine().Drillable(o),
	})
}

func (h *Handler) getOrganization(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
		return
	}

	d, ok := h.session.Detail(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
		return
	}

	resp := gin.H{
		"organization": d.Org,
		"pointCount":   d.PointCount,
		"color":        d.Color,
		"drillable":    d.Drillable,
		"ancestors":    toBreadcrumbs(d.Ancestors),
		"kind":         nil,
	}
	if d.Shape != nil {
		resp["kind"] = d.Shape.Kind
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) streamState(c *gin.Context) {
	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case u, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("state", u)
			return true
		}
	})
}

// Reload swaps in a new snapshot. The session returns to the root state, and
// stream subscribers are told so.
func (h *Handler) Reload(snap *models.Snapshot) {
	h.session.Reset(snap)
	h.publish(h.session.State())
}

func (h *Handler) publish(st navigation.State) {
	if h.broadcaster == nil {
		return
	}
	h.broadcaster.Broadcast(stream.NewUpdate(st, h.session.Machine().Encode(st).Encode()))
}

func (h *Handler) stateResponse(st navigation.State, changed *bool) stateResponse {
	m := h.session.Machine()
	resp := stateResponse{
		Level:   st.Level,
		Path:    toBreadcrumbs(st.Path),
		Query:   m.Encode(st).Encode(),
		Changed: changed,
	}
	if levels := m.Levels(); st.Level < len(levels) {
		resp.LevelType = levels[st.Level]
	}
	return resp
}

func toBreadcrumbs(orgs []*models.Organization) []breadcrumb {
	out := make([]breadcrumb, len(orgs))
	for i, o := range orgs {
		out[i] = breadcrumb{ID: o.ID, Name: o.Name, Type: o.Type}
	}
	return out
}

func parseMessage(req navigateRequest) (navigation.Message, bool) {
	switch strings.ToLower(req.Action) {
	case "select":
		return navigation.Select{OrgID: req.OrgID}, true
	case "back":
		return navigation.Back{}, true
	case "breadcrumb":
		return navigation.Breadcrumb{OrgID: req.OrgID}, true
	case "level":
		return navigation.SetLevel{Level: req.Level}, true
	default:
		return nil, false
	}
}
