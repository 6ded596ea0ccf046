package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/appointment-service/internal/api/dto"
	"github.com/spec-kit/appointment-service/internal/auth"
	"github.com/spec-kit/appointment-service/internal/service"
	apperrors "github.com/spec-kit/appointment-service/pkg/util"
)

// AppointmentsHandler manages the appointment endpoints.
type AppointmentsHandler struct {
	service *service.AppointmentService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(appointmentService *service.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{service: appointmentService}
}

// CreateAppointment POST /appointments.
func (h *AppointmentsHandler) CreateAppointment(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.AppointmentCreateInput{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		MeetingLink: req.MeetingLink,
	}
	if req.IsConfirmed != nil {
		input.IsConfirmed = req.IsConfirmed.Bool()
	}
	if req.SendReminder != nil {
		input.SendReminder = req.SendReminder.Bool()
	}

	appointment, err := h.service.Create(c.UserContext(), actor, input)
	if err != nil {
		if response, ok := mutationFailure(err); ok {
			return c.Status(http.StatusOK).JSON(response)
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.MutationResponse{
		ID:        appointment.ID,
		Succeeded: true,
		Errors:    []string{},
	})
}

// UpdateAppointment PUT /appointments/:id.
func (h *AppointmentsHandler) UpdateAppointment(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.AppointmentUpdateInput{
		Title:              req.Title,
		Description:        req.Description,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Location:           req.Location,
		MeetingLink:        req.MeetingLink,
		IsConfirmed:        req.IsConfirmed.Bool(),
		IsCancelled:        req.IsCancelled.Bool(),
		CancellationReason: req.CancellationReason,
		SendReminder:       req.SendReminder.Bool(),
	}

	if _, err := h.service.Update(c.UserContext(), actor, id, input); err != nil {
		if response, ok := mutationFailure(err); ok {
			return c.Status(http.StatusOK).JSON(response)
		}
		return err
	}
	return c.JSON(dto.MutationResponse{Succeeded: true, Errors: []string{}})
}

// GetAppointment GET /appointments/:id.
func (h *AppointmentsHandler) GetAppointment(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	appointment, err := h.service.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAppointmentResponse(appointment)})
}

// ListAppointments GET /appointments.
func (h *AppointmentsHandler) ListAppointments(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	filter := parseAppointmentQuery(c)
	items, total, err := h.service.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAppointmentListResponse(items, total))
}

// CancelAppointment DELETE /appointments/:id.
func (h *AppointmentsHandler) CancelAppointment(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.CancelAppointmentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if _, err := h.service.Cancel(c.UserContext(), actor, id, req.Reason); err != nil {
		return err
	}
	return c.JSON(dto.MutationResponse{Succeeded: true, Errors: []string{}})
}

// mutationFailure converts rule and field validation errors into the
// succeeded/errors envelope the calendar clients expect; other errors keep
// flowing to the error middleware.
func mutationFailure(err error) (dto.MutationResponse, bool) {
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeValidationFailed {
		return dto.MutationResponse{}, false
	}
	messages := []string{domainErr.Message}
	return dto.MutationResponse{Succeeded: false, Errors: messages}, true
}

func requireActor(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return service.Actor{}, apperrors.NewUnauthorized("user required")
	}
	return service.Actor{
		ID:      principal.User.ID,
		Name:    principal.User.Name,
		IsAdmin: principal.IsAdmin(),
		IP:      c.IP(),
	}, nil
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid appointment id", nil)
	}
	return id, nil
}

func parseAppointmentQuery(c *fiber.Ctx) service.AppointmentListFilter {
	filter := service.AppointmentListFilter{}
	if userID := strings.TrimSpace(c.Query("userId")); userID != "" {
		filter.UserID = &userID
	}
	filter.From = parseTime(c.Query("from"))
	filter.To = parseTime(c.Query("to"))
	if year := parseOptionalInt(c.Query("year")); year != nil {
		filter.Year = year
	}
	if month := parseOptionalInt(c.Query("month")); month != nil {
		filter.Month = month
	}
	filter.WeekStart = parseDate(c.Query("weekStart"))
	filter.OnlyConfirmed = c.QueryBool("confirmedOnly")
	filter.OnlyCancelled = c.QueryBool("cancelledOnly")

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("pageSize"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return parseDate(val)
	}
	return &t
}

func parseDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return nil
	}
	return &t
}

func parseOptionalInt(val string) *int {
	if val == "" {
		return nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
