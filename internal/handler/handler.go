package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/salary-bridge/internal/models"
	"github.com/Dan9191/salary-bridge/internal/runway"
	"github.com/Dan9191/salary-bridge/internal/service"
	"github.com/Dan9191/salary-bridge/internal/settings"
)

const maxBodyBytes = 1 << 16

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// inputsRequest is the body of the calculator endpoints. Pointers tell a
// missing field apart from an explicit zero.
type inputsRequest struct {
	CurrentSalary    *float64 `json:"current_salary"`
	MonthlyExpenses  *float64 `json:"monthly_expenses"`
	TransitionMonths *int     `json:"transition_months"`
	TargetSalary     *float64 `json:"target_salary"`
}

func (req inputsRequest) inputs() (models.RunwayInputs, error) {
	switch {
	case req.CurrentSalary == nil:
		return models.RunwayInputs{}, missingField("current_salary")
	case req.MonthlyExpenses == nil:
		return models.RunwayInputs{}, missingField("monthly_expenses")
	case req.TransitionMonths == nil:
		return models.RunwayInputs{}, missingField("transition_months")
	case req.TargetSalary == nil:
		return models.RunwayInputs{}, missingField("target_salary")
	}
	return models.RunwayInputs{
		CurrentSalary:    *req.CurrentSalary,
		MonthlyExpenses:  *req.MonthlyExpenses,
		TransitionMonths: *req.TransitionMonths,
		TargetSalary:     *req.TargetSalary,
	}, nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s is required", runway.ErrInvalidInputs, name)
}

type saveResponse struct {
	Record *models.RunwayRecord `json:"record"`
	Saved  settings.SaveStatus  `json:"saved"`
}

type planResponse struct {
	Record  *models.RunwayRecord `json:"record"`
	Outcome models.PlanOutcome   `json:"outcome"`
}

// Compute returns the result for the posted inputs without storing them
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInputs(w, r, false)
	if !ok {
		return
	}
	res, err := h.svc.Compute(*in)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetRunway returns the caller's stored record, or defaults
func (h *Handler) GetRunway(w http.ResponseWriter, r *http.Request) {
	user, _ := service.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.svc.GetRunway(r.Context(), user))
}

// SaveRunway stores the posted inputs
func (h *Handler) SaveRunway(w http.ResponseWriter, r *http.Request) {
	user, _ := service.IdentityFromContext(r.Context())
	in, ok := h.decodeInputs(w, r, false)
	if !ok {
		return
	}
	rec, status, err := h.svc.SaveRunway(r.Context(), user, *in)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Record: rec, Saved: status})
}

// GeneratePlan produces and stores a financial plan. The body is optional;
// when present it replaces the stored inputs.
func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	user, _ := service.IdentityFromContext(r.Context())
	in, ok := h.decodeInputs(w, r, true)
	if !ok {
		return
	}
	rec, outcome, err := h.svc.GeneratePlan(r.Context(), user, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{Record: rec, Outcome: outcome})
}

// EmailPlan sends the stored plan to the caller
func (h *Handler) EmailPlan(w http.ResponseWriter, r *http.Request) {
	user, _ := service.IdentityFromContext(r.Context())
	if err := h.svc.EmailPlan(r.Context(), user); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// History lists the caller's saved scenarios
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	user, _ := service.IdentityFromContext(r.Context())
	list, err := h.svc.History(r.Context(), user)
	if err != nil {
		h.fail(w, err)
		return
	}
	if list == nil {
		list = []models.Scenario{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ExportXML returns the caller's record as an XML report
func (h *Handler) ExportXML(w http.ResponseWriter, r *http.Request) {
	user, _ := service.IdentityFromContext(r.Context())
	data, err := h.svc.ExportXML(r.Context(), user)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="runway.xml"`)
	w.Write(data)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeInputs reads a complete set of inputs. With optional set, an empty
// body yields nil inputs.
func (h *Handler) decodeInputs(w http.ResponseWriter, r *http.Request, optional bool) (*models.RunwayInputs, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req inputsRequest
	if err := dec.Decode(&req); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil, true
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	in, err := req.inputs()
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	return &in, true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, runway.ErrInvalidInputs):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrSuperseded):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrNoPlan), errors.Is(err, service.ErrNoEmail):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrUnavailable):
		http.Error(w, err.Error(), http.StatusNotImplemented)
	default:
		h.log.Errorf("Request failed: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
