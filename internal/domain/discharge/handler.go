package discharge

import (
	"bytes"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/discharge")
	g.POST("/:patientId", h.Discharge, auth.RequireRole(auth.RoleAdmin))
	g.POST("/:patientId/preview", h.Preview, auth.RequireRole(auth.RoleAdmin))
	g.GET("/:patientId/bill", h.CurrentBill)
	g.GET("/:patientId/pdf", h.BillPDF)
	g.GET("/:patientId/history", h.History)
}

func (h *Handler) Discharge(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var in ChargesInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	detail, err := h.svc.Discharge(c.Request().Context(), actor, patientID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, detail)
}

func (h *Handler) Preview(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var in ChargesInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	detail, err := h.svc.Preview(c.Request().Context(), actor, patientID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) CurrentBill(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	detail, err := h.svc.CurrentBill(c.Request().Context(), actor, patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) BillPDF(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var buf bytes.Buffer
	if err := h.svc.WriteBillPDF(c.Request().Context(), actor, patientID, &buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="discharge-bill.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *Handler) History(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	history, total, err := h.svc.History(c.Request().Context(), actor, patientID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(history, total, pg.Limit, pg.Offset))
}
