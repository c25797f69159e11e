package content

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

// RegisterRoutes exposes published items on the open group and full CRUD on
// the admin group.
func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	public.GET("/blogs", h.ListBlogs)
	public.GET("/blogs/:id", h.GetBlog)
	public.GET("/testimonials", h.ListTestimonials)
	public.GET("/banners", h.ListBanners)
	public.GET("/reels", h.ListReels)

	admin := authed.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/blogs", h.CreateBlog)
	admin.PUT("/blogs/:id", h.UpdateBlog)
	admin.DELETE("/blogs/:id", h.DeleteBlog)
	admin.GET("/blogs", h.ListBlogsAdmin)
	admin.POST("/testimonials", h.CreateTestimonial)
	admin.PUT("/testimonials/:id", h.UpdateTestimonial)
	admin.DELETE("/testimonials/:id", h.DeleteTestimonial)
	admin.GET("/testimonials", h.ListTestimonialsAdmin)
	admin.POST("/banners", h.CreateBanner)
	admin.PUT("/banners/:id", h.UpdateBanner)
	admin.DELETE("/banners/:id", h.DeleteBanner)
	admin.GET("/banners", h.ListBannersAdmin)
	admin.POST("/reels", h.CreateReel)
	admin.PUT("/reels/:id", h.UpdateReel)
	admin.DELETE("/reels/:id", h.DeleteReel)
	admin.GET("/reels", h.ListReelsAdmin)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrMissingField):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
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

// -- blogs --

func (h *Handler) CreateBlog(c echo.Context) error {
	var b Blog
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBlog(c.Request().Context(), &b); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBlog(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	b, err := h.svc.GetBlog(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) UpdateBlog(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var b Blog
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b.ID = id
	if err := h.svc.UpdateBlog(c.Request().Context(), &b); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBlog(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteBlog(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListBlogs(c echo.Context) error      { return h.listBlogs(c, true) }
func (h *Handler) ListBlogsAdmin(c echo.Context) error { return h.listBlogs(c, false) }

func (h *Handler) listBlogs(c echo.Context, publishedOnly bool) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBlogs(c.Request().Context(), publishedOnly, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- testimonials --

func (h *Handler) CreateTestimonial(c echo.Context) error {
	var t Testimonial
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateTestimonial(c.Request().Context(), &t); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTestimonial(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var t Testimonial
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.ID = id
	if err := h.svc.UpdateTestimonial(c.Request().Context(), &t); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTestimonial(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTestimonial(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListTestimonials(c echo.Context) error      { return h.listTestimonials(c, true) }
func (h *Handler) ListTestimonialsAdmin(c echo.Context) error { return h.listTestimonials(c, false) }

func (h *Handler) listTestimonials(c echo.Context, publishedOnly bool) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListTestimonials(c.Request().Context(), publishedOnly, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- banners --

func (h *Handler) CreateBanner(c echo.Context) error {
	var b Banner
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBanner(c.Request().Context(), &b); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) UpdateBanner(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var b Banner
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b.ID = id
	if err := h.svc.UpdateBanner(c.Request().Context(), &b); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBanner(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteBanner(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListBanners(c echo.Context) error      { return h.listBanners(c, true) }
func (h *Handler) ListBannersAdmin(c echo.Context) error { return h.listBanners(c, false) }

func (h *Handler) listBanners(c echo.Context, publishedOnly bool) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBanners(c.Request().Context(), publishedOnly, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- reels --

func (h *Handler) CreateReel(c echo.Context) error {
	var r Reel
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateReel(c.Request().Context(), &r); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) UpdateReel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var r Reel
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.ID = id
	if err := h.svc.UpdateReel(c.Request().Context(), &r); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteReel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteReel(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListReels(c echo.Context) error      { return h.listReels(c, true) }
func (h *Handler) ListReelsAdmin(c echo.Context) error { return h.listReels(c, false) }

func (h *Handler) listReels(c echo.Context, publishedOnly bool) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListReels(c.Request().Context(), publishedOnly, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
