package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ekaraca/txbatch-backend/internal/api/httpx"
	"github.com/ekaraca/txbatch-backend/internal/api/validate"
	"github.com/ekaraca/txbatch-backend/internal/domain"
	"github.com/ekaraca/txbatch-backend/internal/services"
)

type TransactionsHandler struct {
	svc *services.TransactionService
}

func NewTransactionsHandler(svc *services.TransactionService) *TransactionsHandler {
	return &TransactionsHandler{svc: svc}
}

type createRequest struct {
	StreamID   string   `json:"stream_id"`
	RecordData []string `json:"record_data"`
	Operator   string   `json:"operator"`
}

type batchStatusRequest struct {
	TransactionIDs []string `json:"transaction_ids"`
	NewStatus      string   `json:"new_status"`
	Operator       string   `json:"operator"`
}

type batchRecordsRequest struct {
	StreamID string            `json:"stream_id"`
	Updates  map[string]string `json:"updates"` // record id -> new payload
	Operator string            `json:"operator"`
}

type recordResponse struct {
	RecordID  string    `json:"record_id"`
	StreamID  string    `json:"stream_id"`
	Data      string    `json:"data"`
	Status    string    `json:"status"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

type transactionResponse struct {
	ID        string           `json:"id"`
	StreamID  string           `json:"stream_id"`
	Status    string           `json:"status"`
	Version   int64            `json:"version"`
	CreatedBy string           `json:"created_by"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedBy string           `json:"updated_by"`
	UpdatedAt time.Time        `json:"updated_at"`
	Records   []recordResponse `json:"records"`
	Progress  float64          `json:"processing_progress"`
}

func toTransactionResponse(txn domain.FinancialTransaction) transactionResponse {
	records := make([]recordResponse, 0, txn.RecordCount())
	for _, rec := range txn.Records() {
		records = append(records, recordResponse{
			RecordID:  rec.ID(),
			StreamID:  rec.StreamID().String(),
			Data:      rec.Data(),
			Status:    rec.Status().String(),
			CreatedBy: rec.CreatedBy(),
			CreatedAt: rec.CreatedAt(),
			UpdatedBy: rec.UpdatedBy(),
			UpdatedAt: rec.UpdatedAt(),
		})
	}
	return transactionResponse{
		ID:        txn.ID(),
		StreamID:  txn.StreamID().String(),
		Status:    txn.Status().String(),
		Version:   txn.Version().Int64(),
		CreatedBy: txn.CreatedBy(),
		CreatedAt: txn.CreatedAt(),
		UpdatedBy: txn.UpdatedBy(),
		UpdatedAt: txn.UpdatedAt(),
		Records:   records,
		Progress:  txn.ProcessingProgress(),
	}
}

func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body")
		return
	}
	var errs validate.Errs
	if ef := validate.Required("stream_id", req.StreamID); ef != nil {
		errs = append(errs, *ef)
	}
	if ef := validate.Required("operator", req.Operator); ef != nil {
		errs = append(errs, *ef)
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", errs.Error())
		return
	}

	txn, err := h.svc.Create(r.Context(), req.StreamID, req.RecordData, req.Operator)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, toTransactionResponse(txn))
}

func (h *TransactionsHandler) BatchUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req batchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body")
		return
	}
	var errs validate.Errs
	if ef := validate.MinLen("transaction_ids", len(req.TransactionIDs), 1); ef != nil {
		errs = append(errs, *ef)
	}
	if ef := validate.Required("operator", req.Operator); ef != nil {
		errs = append(errs, *ef)
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", errs.Error())
		return
	}
	status, err := domain.ParseStatus(req.NewStatus)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.svc.BatchUpdateStatus(r.Context(), req.TransactionIDs, status, req.Operator)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, result)
}

func (h *TransactionsHandler) BatchProcessRecords(w http.ResponseWriter, r *http.Request) {
	var req batchRecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body")
		return
	}
	var errs validate.Errs
	if ef := validate.Required("stream_id", req.StreamID); ef != nil {
		errs = append(errs, *ef)
	}
	if ef := validate.Required("operator", req.Operator); ef != nil {
		errs = append(errs, *ef)
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", errs.Error())
		return
	}

	result, err := h.svc.ProcessBatchRecords(r.Context(), req.StreamID, req.Updates, req.Operator)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, result)
}

func (h *TransactionsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	txn, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toTransactionResponse(txn))
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrIllegalState):
		httpx.WriteError(w, http.StatusConflict, "illegal_state", err.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		httpx.WriteError(w, http.StatusConflict, "version_conflict", err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
