package payment

import (
	"net/http"
	"strconv"

	"vaccinebooking/internal/pkg/apperror"
	"vaccinebooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the payment routes. verify runs in front of the
// reconcile endpoints and may be nil when webhook signing is disabled.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, verify gin.HandlerFunc) {
	rg.POST("/payments/:id", h.CreateLink)

	reconcile := []gin.HandlerFunc{h.Reconcile}
	if verify != nil {
		reconcile = append([]gin.HandlerFunc{verify}, reconcile...)
	}
	rg.GET("/payments", reconcile...)
	rg.POST("/payments/webhook", reconcile...)
}

func (h *Handler) CreateLink(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, apperror.Validation("id must be a positive integer"))
		return
	}

	link, err := h.service.CreateLink(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "payment link created", link)
}

// Reconcile handles both the browser redirect (query string) and the
// gateway webhook (JSON or form body).
func (h *Handler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	var err error
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(&req)
	} else {
		err = c.ShouldBind(&req)
	}
	if err != nil {
		response.Fail(c, apperror.Validation(err.Error()))
		return
	}

	paymentID, referenceID := req.Resolve()
	res, err := h.service.Reconcile(c.Request.Context(), paymentID, referenceID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "payment information updated", res)
}
