package payment

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"taskpilot/models"
	"taskpilot/utils"
)

const exportDateLayout = "2006-01-02"

// ExportCSV renders the records matching the query as CSV for payroll
// exports. Rows reuse List, so role scoping and ordering match the on-screen
// listing exactly.
func (s *DefaultPaymentService) ExportCSV(actor models.Actor, query ListQuery) ([]byte, string, error) {
	if !actor.IsManager() {
		return nil, "", utils.Forbiddenf("only managers can export payments")
	}

	records, _, err := s.List(actor, query)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Payment ID", "Tasker Name", "Tasker Email",
		"Period Start", "Period End",
		"Total Hours", "Total Amount", "Status",
		"Paid At", "Paid By", "Notes",
	}
	if err := w.Write(header); err != nil {
		return nil, "", utils.Internalf(err, "failed to write csv header")
	}

	for _, rec := range records {
		if err := w.Write(exportRow(&rec)); err != nil {
			return nil, "", utils.Internalf(err, "failed to write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", utils.Internalf(err, "failed to flush csv")
	}

	filename := "payments-" + time.Now().Format(exportDateLayout) + ".csv"
	return buf.Bytes(), filename, nil
}

func exportRow(rec *models.PaymentRecord) []string {
	var taskerName, taskerEmail string
	if rec.Tasker != nil {
		taskerName = rec.Tasker.FullName
		taskerEmail = rec.Tasker.Email
	}
	var paidAt, paidBy string
	if rec.PaidAt != nil {
		paidAt = rec.PaidAt.Format(time.RFC3339)
	}
	if rec.Payer != nil {
		paidBy = rec.Payer.FullName
	} else {
		paidBy = rec.PaidBy
	}
	return []string{
		rec.ID,
		taskerName,
		taskerEmail,
		rec.PeriodStart.Format(exportDateLayout),
		rec.PeriodEnd.Format(exportDateLayout),
		strconv.FormatFloat(rec.TotalHours, 'f', 2, 64),
		strconv.FormatFloat(rec.TotalAmount, 'f', 2, 64),
		rec.Status,
		paidAt,
		paidBy,
		rec.Notes,
	}
}
