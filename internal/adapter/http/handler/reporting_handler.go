package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kitabu/ledger/internal/adapter/http/dto"
	"github.com/kitabu/ledger/internal/usecase"
)

// ReportingHandler handles reporting HTTP requests.
type ReportingHandler struct {
	reportingUC *usecase.ReportingUseCase
}

// NewReportingHandler creates a new ReportingHandler.
func NewReportingHandler(reportingUC *usecase.ReportingUseCase) *ReportingHandler {
	return &ReportingHandler{reportingUC: reportingUC}
}

// TrialBalance returns the trial balance as of an optional timestamp.
func (h *ReportingHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseTimeQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of timestamp", err.Error())
		return
	}

	report, err := h.reportingUC.GetTrialBalance(r.Context(), asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute trial balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// BalanceSheet returns the balance sheet as of an optional timestamp.
func (h *ReportingHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseTimeQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of timestamp", err.Error())
		return
	}

	report, err := h.reportingUC.GetBalanceSheet(r.Context(), asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balance sheet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// AccountHistory returns an account's posted entries in a date range.
func (h *ReportingHandler) AccountHistory(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	from, err := parseTimeQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from timestamp", err.Error())
		return
	}

	to, err := parseTimeQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to timestamp", err.Error())
		return
	}

	entries, err := h.reportingUC.GetTransactionHistory(r.Context(), usecase.TransactionHistoryInput{
		From:      from,
		To:        to,
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 50),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// LoanAging returns open loans bucketed by days past due.
func (h *ReportingHandler) LoanAging(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportingUC.GetLoanAging(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute loan aging", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}
