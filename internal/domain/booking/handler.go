package booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/TheSujay/Arogya-Backend/internal/domain/identity"
	"github.com/TheSujay/Arogya-Backend/internal/platform/auth"
	"github.com/TheSujay/Arogya-Backend/internal/platform/payment"
	"github.com/TheSujay/Arogya-Backend/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the slot directory onto the open group, the booking
// lifecycle onto the patient group, and the visit workflow onto the doctor
// group.
func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	public.GET("/doctors/:id/slots", h.BookedSlots)

	patient := authed.Group("", auth.RequireRole(auth.RolePatient))
	patient.POST("/appointments", h.Book)
	patient.GET("/appointments", h.ListMine)
	patient.DELETE("/appointments/:id", h.Cancel)
	patient.POST("/appointments/:id/pay", h.CreateOrder)
	patient.POST("/payments/confirm", h.ConfirmPayment)

	doctor := authed.Group("", auth.RequireRole(auth.RoleDoctor))
	doctor.GET("/doctor/appointments", h.ListForDoctor)
	doctor.GET("/doctor/dashboard", h.Dashboard)
	doctor.POST("/appointments/:id/confirm", h.Confirm)
	doctor.POST("/appointments/:id/complete", h.Complete)
	doctor.PUT("/appointments/:id/record", h.AttachRecord)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrSlotTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrAppointmentNotFound),
		errors.Is(err, identity.ErrDoctorNotFound),
		errors.Is(err, identity.ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrDoctorUnavailable), errors.Is(err, ErrCancelled),
		errors.Is(err, ErrNotCompleted), errors.Is(err, ErrPaymentPending):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidSlot):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrGateway):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

type bookRequest struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	SlotDate string    `json:"slot_date"`
	SlotTime string    `json:"slot_time"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	patientID := auth.UserIDFromContext(c.Request().Context())
	a, err := h.svc.Book(c.Request().Context(), patientID, req.DoctorID, req.SlotDate, req.SlotTime)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListMine(c echo.Context) error {
	pg := pagination.FromContext(c)
	patientID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.svc.Cancel(ctx, id, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctorID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Dashboard(c echo.Context) error {
	stats, err := h.svc.DoctorDashboard(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) Confirm(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, notified, err := h.svc.Confirm(ctx, id, auth.UserIDFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	msg := "appointment confirmed"
	if !notified {
		msg = "confirmed, but notification failed"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     msg,
		"appointment": a,
	})
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.svc.Complete(ctx, id, auth.UserIDFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type recordRequest struct {
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	ReportURL    string `json:"report_url"`
}

func (h *Handler) AttachRecord(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	a, err := h.svc.AttachRecord(ctx, id, auth.UserIDFromContext(ctx), req.Diagnosis, req.Prescription, req.ReportURL)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) BookedSlots(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	slots, err := h.svc.BookedSlots(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "slots_booked": slots})
}

func (h *Handler) CreateOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	order, err := h.svc.CreateOrder(ctx, id, auth.UserIDFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "order": order})
}

type confirmPaymentRequest struct {
	OrderID string `json:"order_id"`
}

func (h *Handler) ConfirmPayment(c echo.Context) error {
	var req confirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order_id is required")
	}
	a, err := h.svc.ConfirmPayment(c.Request().Context(), req.OrderID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "appointment": a})
}
