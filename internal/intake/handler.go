package intake

import (
	"errors"
	"io"
	"net/http"

	"github.com/jadu-codes/flow-layer-2/internal/leads/domain"
	"github.com/jadu-codes/flow-layer-2/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes bounds the webhook body read.
const maxBodyBytes = 1 << 20

// Handler handles intake HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new intake handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// LivenessResponse answers GET on the webhook URL.
type LivenessResponse struct {
	Status string `json:"status"`
	Method string `json:"method"`
}

// IgnoredResponse acknowledges a vendor event that does not create a lead.
type IgnoredResponse struct {
	Status string `json:"status"`
	Event  string `json:"event"`
}

// StoredResponse returns the stored lead.
type StoredResponse struct {
	Status string       `json:"status"`
	Lead   *domain.Lead `json:"lead"`
}

// HandleLiveness lets the vendor and uptime checks probe the webhook URL.
// GET /intake/phone-call
func (h *Handler) HandleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{Status: StatusOK, Method: http.MethodGet})
}

// HandlePhoneCall processes one vendor or generic webhook.
// POST /intake/phone-call
func (h *Handler) HandlePhoneCall(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpkit.Error(c, http.StatusRequestEntityTooLarge, msgInvalidPayload, nil)
			return
		}
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPayload, nil)
		return
	}

	result, err := h.service.Process(c.Request.Context(), body)
	if err != nil {
		_ = c.Error(err)
		httpkit.HandleError(c, err)
		return
	}

	if result.Status == StatusIgnored {
		c.JSON(http.StatusOK, IgnoredResponse{Status: result.Status, Event: result.Event})
		return
	}
	c.JSON(http.StatusOK, StoredResponse{Status: result.Status, Lead: result.Lead})
}
