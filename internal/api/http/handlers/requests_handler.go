package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-service/internal/api/dto"
	"github.com/spec-kit/request-service/internal/domain"
	"github.com/spec-kit/request-service/internal/service"
	"github.com/spec-kit/request-service/internal/storage"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// RequestsHandler manages service request endpoints.
type RequestsHandler struct {
	service     *service.RequestService
	screenshots *storage.ScreenshotStore
}

// NewRequestsHandler constructs the handler.
func NewRequestsHandler(requestService *service.RequestService, screenshots *storage.ScreenshotStore) *RequestsHandler {
	return &RequestsHandler{service: requestService, screenshots: screenshots}
}

// Create handles POST /service-requests. The payload is a multipart form
// with an optional screenshot file.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	title := c.FormValue("title")
	description := c.FormValue("description")
	if title == "" || description == "" {
		return apperrors.NewValidationError("title and description required", nil)
	}
	departmentID, err := strconv.ParseInt(c.FormValue("department_id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("department_id must be an integer", nil)
	}
	userID, err := strconv.ParseInt(c.FormValue("user_id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("user_id must be an integer", nil)
	}

	var screenshotPath *string
	if fh, err := c.FormFile("screenshot"); err == nil && fh != nil {
		src, err := fh.Open()
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		defer src.Close()
		path, err := h.screenshots.Save(src, fh.Filename)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		screenshotPath = &path
	}

	input := service.RequestCreateInput{
		Title:        title,
		Description:  description,
		DepartmentID: departmentID,
	}
	req, err := h.service.Create(c.Context(), userID, input, screenshotPath)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(requestResponse(req))
}

// List handles GET /service-requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 0)
	requests, err := h.service.List(c.Context(), skip, limit)
	if err != nil {
		return err
	}
	items := make([]dto.ServiceRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, requestResponse(&requests[i]))
	}
	return c.JSON(items)
}

// Get handles GET /service-requests/:id, returning the entity plus its
// audit trail.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}
	activities, err := h.service.Activities(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.ServiceRequestDetailResponse{
		ServiceRequestResponse: requestResponse(req),
		Activities:             activityResponses(activities),
	})
}

// Update handles PATCH /service-requests/:id. The acting user is passed as
// the user_id query parameter.
func (h *RequestsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actorID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("user_id query parameter must be an integer", nil)
	}

	var body dto.UpdateServiceRequestRequest
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.RequestPatch{DepartmentID: body.DepartmentID}
	if body.Priority != nil {
		priority, err := domain.ParsePriority(*body.Priority)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		patch.Priority = &priority
	}
	if body.Status != nil {
		status, err := domain.ParseStatus(*body.Status)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		patch.Status = &status
	}

	req, err := h.service.Update(c.Context(), id, patch, actorID)
	if err != nil {
		return err
	}
	return c.JSON(requestResponse(req))
}

// ListActivities handles GET /service-requests/:id/activities.
func (h *RequestsHandler) ListActivities(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	activities, err := h.service.Activities(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(activityResponses(activities))
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("id must be an integer", nil)
	}
	return id, nil
}

func requestResponse(req *domain.ServiceRequest) dto.ServiceRequestResponse {
	resp := dto.ServiceRequestResponse{
		ID:             req.ID,
		Title:          req.Title,
		Description:    req.Description,
		ScreenshotPath: req.ScreenshotPath,
		Priority:       req.Priority.Wire(),
		Status:         req.Status.Wire(),
		UserID:         req.UserID,
		DepartmentID:   req.DepartmentID,
		CreatedAt:      req.CreatedAt,
		UpdatedAt:      req.UpdatedAt,
	}
	if req.User != nil {
		user := userResponse(req.User)
		resp.User = &user
	}
	if req.Department != nil {
		dept := departmentResponse(req.Department)
		resp.Department = &dept
	}
	return resp
}

func activityResponses(activities []domain.ServiceActivity) []dto.ServiceActivityResponse {
	items := make([]dto.ServiceActivityResponse, 0, len(activities))
	for i := range activities {
		items = append(items, activityResponse(&activities[i]))
	}
	return items
}

func activityResponse(activity *domain.ServiceActivity) dto.ServiceActivityResponse {
	resp := dto.ServiceActivityResponse{
		ID:               activity.ID,
		ServiceRequestID: activity.ServiceRequestID,
		ActivityType:     activity.ActivityType,
		Description:      activity.Description,
		UserID:           activity.UserID,
		CreatedAt:        activity.CreatedAt,
	}
	if activity.User != nil {
		user := userResponse(activity.User)
		resp.User = &user
	}
	return resp
}
