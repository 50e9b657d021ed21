package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/N-Srikar/Athena/internal/errs"
	"github.com/N-Srikar/Athena/internal/model"
	"github.com/N-Srikar/Athena/pkg/auth"
)

func (h *Handler) RequestBorrow(c echo.Context) error {
	var req model.CreateBorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	username := auth.Username(c.Request().Context())
	if username == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, errs.ErrUserName.Error())
	}
	req.Username = username
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.borrowSvc.RequestBorrow(c.Request().Context(), req)
	if err != nil {
		return borrowHTTPError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ApproveBorrow(c echo.Context) error {
	recordUid := c.Param("recordUid")
	if recordUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recordUid is empty")
	}
	rec, err := h.borrowSvc.ApproveBorrow(c.Request().Context(), recordUid)
	if err != nil {
		return borrowHTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) RejectBorrow(c echo.Context) error {
	recordUid := c.Param("recordUid")
	if recordUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recordUid is empty")
	}
	rec, err := h.borrowSvc.RejectBorrow(c.Request().Context(), recordUid)
	if err != nil {
		return borrowHTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ReturnBorrow(c echo.Context) error {
	recordUid := c.Param("recordUid")
	if recordUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recordUid is empty")
	}
	var req model.ReturnBorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.borrowSvc.ReturnBorrow(c.Request().Context(), recordUid, req)
	if err != nil {
		return borrowHTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) MarkFinePaid(c echo.Context) error {
	recordUid := c.Param("recordUid")
	if recordUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recordUid is empty")
	}
	rec, err := h.borrowSvc.MarkFinePaid(c.Request().Context(), recordUid)
	if err != nil {
		return borrowHTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

// GetBorrows lists a member's own records; librarians and admins see
// everything, optionally narrowed by ?status=.
func (h *Handler) GetBorrows(c echo.Context) error {
	ctx := c.Request().Context()

	filter := model.BorrowFilter{
		Status: model.Status(c.QueryParam("status")),
	}
	if auth.Role(ctx) == string(model.RoleMember) {
		filter.Username = auth.Username(ctx)
	}

	recs, err := h.borrowSvc.GetBorrows(ctx, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) GetDueBorrows(c echo.Context) error {
	ctx := c.Request().Context()
	username := auth.Username(ctx)
	if username == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, errs.ErrUserName.Error())
	}
	recs, err := h.borrowSvc.GetDueBorrows(ctx, username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) GetOverdueBorrows(c echo.Context) error {
	recs, err := h.borrowSvc.GetOverdueBorrows(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) CheckAvailable(c echo.Context) error {
	bookUid := c.Param("bookUid")
	if bookUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "bookUid is empty")
	}
	resp, err := h.borrowSvc.CheckAvailable(c.Request().Context(), bookUid)
	if err != nil {
		return borrowHTTPError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Stats(c echo.Context) error {
	rows, err := h.statsSvc.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

func borrowHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrBookUnavailable),
		errors.Is(err, errs.ErrInventoryExhausted),
		errors.Is(err, errs.ErrNoFineDue),
		errors.Is(err, errs.ErrFineAlreadyPaid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		// ErrInvariantViolation lands here deliberately: it signals a broken
		// atomicity guarantee, not a user mistake.
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
