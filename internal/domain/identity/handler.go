package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/TheSujay/Arogya-Backend/internal/platform/auth"
	"github.com/TheSujay/Arogya-Backend/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the public directory and credential endpoints onto the
// open group and profile endpoints onto the authenticated group.
func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	public.POST("/users/register", h.RegisterPatient)
	public.POST("/users/login", h.LoginPatient)
	public.POST("/doctors/login", h.LoginDoctor)
	public.GET("/doctors", h.ListDoctors)
	public.GET("/doctors/:id", h.GetDoctor)

	patient := authed.Group("", auth.RequireRole(auth.RolePatient))
	patient.GET("/users/me", h.GetProfile)
	patient.PUT("/users/me", h.UpdateProfile)

	doctor := authed.Group("", auth.RequireRole(auth.RoleDoctor))
	doctor.GET("/doctors/me", h.GetDoctorProfile)
	doctor.PUT("/doctors/me", h.UpdateDoctorProfile)
	doctor.POST("/doctors/availability", h.ToggleAvailability)

	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/doctors", h.RegisterDoctor)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrPatientNotFound), errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    interface{} `json:"user"`
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, token, err := h.svc.RegisterPatient(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, authResponse{Success: true, Token: token, User: p})
}

func (h *Handler) LoginPatient(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, token, err := h.svc.LoginPatient(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, Token: token, User: p})
}

func (h *Handler) GetProfile(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.GetPatient(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.UpdatePatientProfile(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "profile updated"})
}

type registerDoctorRequest struct {
	Doctor
	Password string `json:"password"`
}

func (h *Handler) RegisterDoctor(c echo.Context) error {
	var req registerDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.RegisterDoctor(c.Request().Context(), &req.Doctor, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) LoginDoctor(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, token, err := h.svc.LoginDoctor(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, Token: token, User: d})
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctors(c.Request().Context(), c.QueryParam("speciality"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d.Public())
}

func (h *Handler) GetDoctorProfile(c echo.Context) error {
	d, err := h.svc.GetDoctor(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateDoctorProfile(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.ID = auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.UpdateDoctorProfile(c.Request().Context(), &d); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "profile updated"})
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

func (h *Handler) ToggleAvailability(c echo.Context) error {
	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doctorID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.SetAvailability(c.Request().Context(), doctorID, req.Available); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "available": req.Available})
}
