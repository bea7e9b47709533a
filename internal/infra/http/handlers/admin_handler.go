package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
	"github.com/xavierca1/leadfunnel/internal/infra/export"
	"github.com/xavierca1/leadfunnel/internal/usecase"
)

// AdminHandler serves the JWT-guarded back office routes.
type AdminHandler struct {
	Store    *usecase.LeadStore
	Outreach *usecase.OutreachEngine
	Reports  *usecase.ReportUseCase
	Intake   LeadCapturer
	Logger   *zap.Logger
}

func NewAdminHandler(store *usecase.LeadStore, outreach *usecase.OutreachEngine, reports *usecase.ReportUseCase, intake LeadCapturer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		Store:    store,
		Outreach: outreach,
		Reports:  reports,
		Intake:   intake,
		Logger:   logger,
	}
}

type statusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type outreachRequest struct {
	Channel string `json:"channel"`
}

type responseRequest struct {
	Positive bool `json:"positive"`
}

// ListLeads returns every lead, newest first, optionally filtered by ?status=.
func (h *AdminHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads := h.Store.GetAll(r.Context())

	if status := entity.Status(r.URL.Query().Get("status")); status != "" {
		filtered := leads[:0]
		for _, l := range leads {
			if l.Status == status {
				filtered = append(filtered, l)
			}
		}
		leads = filtered
	}
	writeJSON(w, http.StatusOK, leads)
}

// CreateLead is manual entry; the source defaults to manual.
func (h *AdminHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var input usecase.LeadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Source == "" {
		input.Source = string(entity.SourceManual)
	}

	out, err := h.Intake.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *AdminHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status := entity.Status(req.Status)
	if !status.Valid() {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeInvalidStatus, "unknown status: "+req.Status)
		return
	}

	lead, err := h.Store.SetStatus(r.Context(), chi.URLParam(r, "id"), status, req.Notes)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	if lead == nil {
		writeErrorResponse(w, http.StatusNotFound, usecase.CodeLeadNotFound, "lead not found")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *AdminHandler) Rescore(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Store.Rescore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// TriggerOutreach answers 200 for both sent and compliance-blocked results;
// a block is reported in the body, not as an error.
func (h *AdminHandler) TriggerOutreach(w http.ResponseWriter, r *http.Request) {
	var req outreachRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	channel, ok := entity.ParseChannel(req.Channel)
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeInvalidChannel, "unknown channel: "+req.Channel)
		return
	}

	res, err := h.Outreach.TriggerOutreach(r.Context(), chi.URLParam(r, "id"), channel)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) HandleResponse(w http.ResponseWriter, r *http.Request) {
	var req responseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Outreach.HandleResponse(r.Context(), chi.URLParam(r, "id"), req.Positive)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) Convert(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Outreach.Convert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Reports.Stats(r.Context()))
}

// Export streams every lead as an XLSX workbook.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, h.Store.GetAll(r.Context())); err != nil {
		h.Logger.Error("lead export failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "EXPORT_FAILED", "Export failed")
		return
	}

	name := "leads-" + time.Now().UTC().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
