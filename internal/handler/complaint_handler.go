package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/residenza/service-facility/internal/application"
	"github.com/residenza/service-facility/internal/platform/auth"
	"github.com/residenza/service-facility/internal/platform/middleware"
	"github.com/residenza/service-facility/internal/platform/response"
)

const attachmentField = "file"

// ComplaintHandler handles HTTP requests for complaint tickets.
type ComplaintHandler struct {
	service *application.ComplaintService
}

// NewComplaintHandler creates a new ComplaintHandler.
func NewComplaintHandler(service *application.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: service}
}

// RegisterRoutes registers all complaint routes.
func (h *ComplaintHandler) RegisterRoutes(r *gin.RouterGroup, verifier auth.TokenVerifier) {
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	complaints := r.Group("/complaints")
	complaints.Use(middleware.AuthMiddleware(verifier))
	{
		complaints.POST("", h.CreateComplaint)
		complaints.GET("", adminOnly, h.ListComplaints)
		complaints.GET("/my", h.ListMyComplaints)
		complaints.GET("/:id", h.GetComplaint)
		complaints.PUT("/:id/status", adminOnly, h.UpdateStatus)
		complaints.POST("/:id/attachments", h.UploadAttachment)
		complaints.GET("/:id/attachments", h.ListAttachments)
	}
}

// CreateComplaint handles POST /complaints.
func (h *ComplaintHandler) CreateComplaint(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	var req application.CreateComplaintRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateComplaint(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListComplaints handles GET /complaints.
func (h *ComplaintHandler) ListComplaints(c *gin.Context) {
	page, limit := parsePagination(c)
	result, err := h.service.ListComplaints(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result)
}

// ListMyComplaints handles GET /complaints/my.
func (h *ComplaintHandler) ListMyComplaints(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListMyComplaints(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result)
}

// GetComplaint handles GET /complaints/:id.
func (h *ComplaintHandler) GetComplaint(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	complaintID, ok := pathID(c, "id", "complaint")
	if !ok {
		return
	}

	result, err := h.service.GetComplaint(c.Request.Context(), actor, complaintID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateStatus handles PUT /complaints/:id/status.
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	complaintID, ok := pathID(c, "id", "complaint")
	if !ok {
		return
	}

	var req application.UpdateComplaintStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), actor, complaintID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UploadAttachment handles POST /complaints/:id/attachments (multipart, field "file").
func (h *ComplaintHandler) UploadAttachment(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	complaintID, ok := pathID(c, "id", "complaint")
	if !ok {
		return
	}

	header, err := c.FormFile(attachmentField)
	if err != nil {
		response.BadRequest(c, "invalid upload", attachmentField+" is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "invalid upload", err.Error())
		return
	}
	defer file.Close()

	result, err := h.service.AddAttachment(c.Request.Context(), actor, complaintID, application.AttachmentUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListAttachments handles GET /complaints/:id/attachments.
func (h *ComplaintHandler) ListAttachments(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	complaintID, ok := pathID(c, "id", "complaint")
	if !ok {
		return
	}

	result, err := h.service.ListAttachments(c.Request.Context(), actor, complaintID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
