package dashboard

import (
	"bytes"
	"net/http"

	"github.com/jadu-codes/flow-layer-2/platform/apperr"
	"github.com/jadu-codes/flow-layer-2/platform/httpkit"
	"github.com/jadu-codes/flow-layer-2/platform/validator"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "Invalid request"

// Handler serves the dashboard page and its JSON feed.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new dashboard handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// ListRequest is the query of the JSON feed.
type ListRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

// HandlePage renders the HTML dashboard.
// GET /leads
func (h *Handler) HandlePage(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), 0)
	if err != nil {
		_ = c.Error(err)
		httpkit.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageView(snap, h.service.Location())); err != nil {
		_ = c.Error(err)
		httpkit.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// HandleList returns the snapshot as JSON.
// GET /api/v1/leads?limit=
func (h *Handler) HandleList(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest).WithDetails(err.Error()))
		return
	}

	snap, err := h.service.Snapshot(c.Request.Context(), req.Limit)
	if err != nil {
		_ = c.Error(err)
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, snap)
}
