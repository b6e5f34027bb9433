package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	paymentService "taskpilot/services/payment"
	"taskpilot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler serves payment generation, settlement and export endpoints.
type PaymentHandler struct {
	Payments paymentService.PaymentService
}

// GeneratePaymentHandler handles POST /api/payments/generate.
func (h *PaymentHandler) GeneratePaymentHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req struct {
		TaskerID    string `json:"taskerId" binding:"required"`
		PeriodStart string `json:"periodStart" binding:"required"`
		PeriodEnd   string `json:"periodEnd" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	periodStart, err := time.ParseInLocation(dateLayout, req.PeriodStart, time.UTC)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "periodStart must use YYYY-MM-DD format")
		return
	}
	periodEnd, err := time.ParseInLocation(dateLayout, req.PeriodEnd, time.UTC)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "periodEnd must use YYYY-MM-DD format")
		return
	}
	// The period end covers the whole closing day.
	periodEnd = periodEnd.Add(24*time.Hour - time.Nanosecond)

	record, err := h.Payments.Generate(actor, req.TaskerID, periodStart, periodEnd)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	utils.GetLogger().Info("Payment generated",
		zap.String("paymentId", record.ID),
		zap.String("taskerId", record.TaskerID),
		zap.Float64("totalAmount", record.TotalAmount))
	c.JSON(http.StatusCreated, record)
}

// MarkPaidHandler handles POST /api/payments/:id/mark-paid.
func (h *PaymentHandler) MarkPaidHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req struct {
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.Payments.MarkPaid(actor, c.Param("id"), req.Notes)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// CancelPaymentHandler handles POST /api/payments/:id/cancel.
func (h *PaymentHandler) CancelPaymentHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req struct {
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.Payments.Cancel(actor, c.Param("id"), req.Notes)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetPaymentHandler handles GET /api/payments/:id.
func (h *PaymentHandler) GetPaymentHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	record, err := h.Payments.GetByID(actor, c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListPaymentsHandler handles GET /api/payments.
func (h *PaymentHandler) ListPaymentsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	query, ok := h.bindListQuery(c)
	if !ok {
		return
	}

	records, totals, err := h.Payments.List(actor, query)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": records, "totals": totals})
}

// PendingPaymentsHandler handles GET /api/payments/pending.
func (h *PaymentHandler) PendingPaymentsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	records, outstanding, err := h.Payments.Pending(actor)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": records, "outstandingAmount": outstanding})
}

// ExportPaymentsHandler handles GET /api/payments/export.
func (h *PaymentHandler) ExportPaymentsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	query, ok := h.bindListQuery(c)
	if !ok {
		return
	}

	data, filename, err := h.Payments.ExportCSV(actor, query)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *PaymentHandler) bindListQuery(c *gin.Context) (paymentService.ListQuery, bool) {
	from, to, err := parseDateRange(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "dates must use YYYY-MM-DD format")
		return paymentService.ListQuery{}, false
	}
	return paymentService.ListQuery{
		TaskerID: c.Query("taskerId"),
		Status:   c.Query("status"),
		From:     from,
		To:       to,
	}, true
}
