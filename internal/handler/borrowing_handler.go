package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database/models"
	"github.com/EgehanKilicarslan/library-api/internal/database/service"
	"github.com/EgehanKilicarslan/library-api/internal/export"
	"github.com/EgehanKilicarslan/library-api/internal/middleware"
	"github.com/EgehanKilicarslan/library-api/internal/response"
)

// BorrowingHandler handles checkout, return and borrowing reports
type BorrowingHandler struct {
	service service.BorrowingService
	logger  *slog.Logger
}

// NewBorrowingHandler creates a new borrowing handler
func NewBorrowingHandler(service service.BorrowingService, logger *slog.Logger) *BorrowingHandler {
	return &BorrowingHandler{
		service: service,
		logger:  logger,
	}
}

type BookActionRequest struct {
	BookID uint `json:"bookId" binding:"required,gt=0"`
}

type PeriodQuery struct {
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
}

// spreadsheet describes one xlsx report
type spreadsheet struct {
	sheet    string
	filename string
	empty    string
}

var (
	periodSheet = spreadsheet{
		sheet:    "Borrowing Data",
		filename: "BorrowingData.xlsx",
		empty:    "There is No Borrowing in this Period",
	}
	overdueLastMonthSheet = spreadsheet{
		sheet:    "Overdue Borrowing Data",
		filename: "OverdueBorrowingData.xlsx",
		empty:    "There is No Borrowing Over Due For The Last Month",
	}
	lastMonthSheet = spreadsheet{
		sheet:    "Borrowing Data Last Month",
		filename: "BorrowingDataLastMonth.xlsx",
		empty:    "There is No Borrowing In The Last Month",
	}
)

// CheckOut handles POST /borrowing/checkOut
func (h *BorrowingHandler) CheckOut(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req BookActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	borrowing, err := h.service.CheckOut(user.ID, req.BookID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusCreated, borrowing, response.SuccessMessage("Book checked out successfully"))
}

// Return handles PUT /borrowing/return
func (h *BorrowingHandler) Return(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req BookActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	borrowing, err := h.service.Return(user.ID, req.BookID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.Success(c, http.StatusOK, borrowing, response.SuccessMessage("Book returned out successfully"))
}

// Mine handles GET /borrowing/me
func (h *BorrowingHandler) Mine(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.list(c, "Borrowing Data retrieved successfully", func() ([]models.Borrowing, error) {
		return h.service.ForUser(user.ID)
	})
}

// MyOverdue handles GET /borrowing/overdue/me
func (h *BorrowingHandler) MyOverdue(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.list(c, "Borrowing OverDue Date retrieved successfully", func() ([]models.Borrowing, error) {
		return h.service.OverdueForUser(user.ID)
	})
}

// ForUser handles GET /borrowing/:userId
func (h *BorrowingHandler) ForUser(c *gin.Context) {
	userID, ok := h.visibleUserID(c)
	if !ok {
		return
	}
	h.list(c, "Borrowing Data retrieved successfully", func() ([]models.Borrowing, error) {
		return h.service.ForUser(userID)
	})
}

// OverdueForUser handles GET /borrowing/overdue/:userId
func (h *BorrowingHandler) OverdueForUser(c *gin.Context) {
	userID, ok := h.visibleUserID(c)
	if !ok {
		return
	}
	h.list(c, "Borrowing OverDue Date retrieved successfully", func() ([]models.Borrowing, error) {
		return h.service.OverdueForUser(userID)
	})
}

// Overdue handles GET /borrowing/overdue
func (h *BorrowingHandler) Overdue(c *gin.Context) {
	h.list(c, "Borrowing Over Due Date retrieved successfully", h.service.Overdue)
}

// OverdueLastMonth handles GET /borrowing/overdue/lastMonth
func (h *BorrowingHandler) OverdueLastMonth(c *gin.Context) {
	h.list(c, "Borrowing Data Over Due For The Last Month retrieved successfully", h.service.OverdueLastMonth)
}

// OverdueLastMonthXLSX handles GET /borrowing/overdue/lastMonthxlsx
func (h *BorrowingHandler) OverdueLastMonthXLSX(c *gin.Context) {
	h.spreadsheet(c, overdueLastMonthSheet, h.service.OverdueLastMonth)
}

// LastMonth handles GET /borrowing/lastMonth
func (h *BorrowingHandler) LastMonth(c *gin.Context) {
	h.list(c, "Borrowing Data In The Last Month retrieved successfully", h.service.LastMonth)
}

// LastMonthXLSX handles GET /borrowing/lastMonthxlsx
func (h *BorrowingHandler) LastMonthXLSX(c *gin.Context) {
	h.spreadsheet(c, lastMonthSheet, h.service.LastMonth)
}

// InPeriod handles GET /borrowing/inPeriod?startDate=&endDate=
func (h *BorrowingHandler) InPeriod(c *gin.Context) {
	start, end, ok := parsePeriod(c)
	if !ok {
		return
	}
	h.list(c, "Borrowing Data retrieved successfully", func() ([]models.Borrowing, error) {
		return h.service.InPeriod(start, end)
	})
}

// InPeriodXLSX handles GET /borrowing/inPeriodxlsx?startDate=&endDate=
func (h *BorrowingHandler) InPeriodXLSX(c *gin.Context) {
	start, end, ok := parsePeriod(c)
	if !ok {
		return
	}
	h.spreadsheet(c, periodSheet, func() ([]models.Borrowing, error) {
		return h.service.InPeriod(start, end)
	})
}

func (h *BorrowingHandler) list(c *gin.Context, msg string, fetch func() ([]models.Borrowing, error)) {
	borrowings, err := fetch()
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.Success(c, http.StatusOK, borrowings, response.SuccessMessage(msg))
}

func (h *BorrowingHandler) spreadsheet(c *gin.Context, report spreadsheet, fetch func() ([]models.Borrowing, error)) {
	borrowings, err := fetch()
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	if len(borrowings) == 0 {
		notFound(c, nil, report.empty)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBorrowings(&buf, report.sheet, borrowings); err != nil {
		h.logger.Error("❌ [BorrowingHandler] Failed to build spreadsheet", "report", report.filename, "error", err)
		response.Internal(c, err)
		return
	}

	h.logger.Info("📊 [BorrowingHandler] Spreadsheet exported", "report", report.filename, "rows", len(borrowings))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", report.filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *BorrowingHandler) currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.logger.Error("❌ [BorrowingHandler] User not found in context")
		response.Error(c, http.StatusUnauthorized, nil, response.ErrorMessage("You are not authorized"))
	}
	return user, ok
}

// visibleUserID resolves :userId; borrowers may only look at themselves
func (h *BorrowingHandler) visibleUserID(c *gin.Context) (uint, bool) {
	user, ok := h.currentUser(c)
	if !ok {
		return 0, false
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return 0, false
	}
	if userID != user.ID && !user.Can(config.CapViewReports) {
		h.logger.Warn("⚠️ [BorrowingHandler] Borrower asked for another user's borrowings",
			"user_id", user.ID,
			"target_user_id", userID,
		)
		response.Error(c, http.StatusUnauthorized, nil, response.ErrorMessage("You are not authorized"))
		return 0, false
	}
	return userID, true
}

// parsePeriod reads startDate/endDate as RFC 3339 instants or plain dates.
// A plain endDate covers that whole day.
func parsePeriod(c *gin.Context) (time.Time, time.Time, bool) {
	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingError(c, err)
		return time.Time{}, time.Time{}, false
	}

	start, _, err := parseDate(q.StartDate)
	if err != nil {
		badRequest(c, err, "Invalid startDate")
		return time.Time{}, time.Time{}, false
	}
	end, dateOnly, err := parseDate(q.EndDate)
	if err != nil {
		badRequest(c, err, "Invalid endDate")
		return time.Time{}, time.Time{}, false
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, true
}

func parseDate(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, errInvalidDate
}

var errInvalidDate = errors.New("date must be YYYY-MM-DD or RFC 3339")
