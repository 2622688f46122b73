package daemon

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/theirongolddev/debtfree/internal/apperr"
	"github.com/theirongolddev/debtfree/internal/auth"
	"github.com/theirongolddev/debtfree/internal/ledger"
	"github.com/theirongolddev/debtfree/internal/model"
)

type budgetRequest struct {
	Month         string           `json:"month"`
	MonthlyIncome json.RawMessage  `json:"monthlyIncome"`
	Expenses      []expenseRequest `json:"expenses"`
}

type expenseRequest struct {
	Category json.RawMessage `json:"category"`
	Amount   json.RawMessage `json:"amount"`
}

type createFastRequest struct {
	Title                 string                     `json:"title"`
	Categories            json.RawMessage            `json:"categories"`
	Intention             string                     `json:"intention"`
	AdditionalNotes       string                     `json:"additionalNotes"`
	HabitName             string                     `json:"habitName"`
	HabitReminder         string                     `json:"habitReminder"`
	CategoryBudgets       map[string]json.RawMessage `json:"categoryBudgets"`
	EstimatedMonthlySpend json.RawMessage            `json:"estimatedMonthlySpend"`
}

type patchFastRequest struct {
	Action     string          `json:"action"`
	FastID     string          `json:"fastId"`
	DayIndex   json.RawMessage `json:"dayIndex"`
	Respected  *bool           `json:"respected"`
	Reflection *string         `json:"reflection"`
}

func userID(r *http.Request) string {
	return auth.UserIDFromContext(r.Context())
}

func (s *Service) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Budgets.GetBudget(r.Context(), userID(r), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Service) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	month := req.Month
	if month == "" {
		month = r.URL.Query().Get("month")
	}
	expenses := make([]model.ExpenseInput, 0, len(req.Expenses))
	for _, e := range req.Expenses {
		expenses = append(expenses, model.ExpenseInput{
			Category: stringValue(e.Category),
			Amount:   ledger.CoerceNumber(e.Amount),
		})
	}

	uid := userID(r)
	b, err := s.deps.Budgets.SaveBudget(r.Context(), uid, month, ledger.CoerceNumber(req.MonthlyIncome), expenses)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publish(uid, EventBudgetSaved, map[string]string{"month": b.Month})
	writeJSON(w, http.StatusOK, b)
}

func (s *Service) handleBudgetMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.deps.Budgets.Months(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"months": months})
}

func (s *Service) handleDebtSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Debt.GetDebtSummary(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Service) handleGetFast(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Fasts.GetActiveCampaign(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handleCreateFast(w http.ResponseWriter, r *http.Request) {
	var req createFastRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	budgets := make(map[string]float64, len(req.CategoryBudgets))
	for k, v := range req.CategoryBudgets {
		budgets[k] = ledger.CoerceNumber(v)
	}

	uid := userID(r)
	snap, err := s.deps.Fasts.CreateCampaign(r.Context(), uid, model.NewFastInput{
		Title:                 req.Title,
		Categories:            stringList(req.Categories),
		Intention:             req.Intention,
		AdditionalNotes:       req.AdditionalNotes,
		HabitName:             req.HabitName,
		HabitReminder:         req.HabitReminder,
		CategoryBudgets:       budgets,
		EstimatedMonthlySpend: ledger.CoerceNumber(req.EstimatedMonthlySpend),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	s.publish(uid, EventFastCreated, map[string]string{"fastId": snap.Fast.ID})
	writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handlePatchFast(w http.ResponseWriter, r *http.Request) {
	var req patchFastRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	uid := userID(r)
	fastID := strings.TrimSpace(req.FastID)

	switch req.Action {
	case "close":
		if err := s.deps.Fasts.CloseCampaign(r.Context(), uid, fastID); err != nil {
			writeError(w, err)
			return
		}
		s.publish(uid, EventFastClosed, map[string]string{"fastId": fastID})
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	case "update_day":
		index := ledger.CoerceNumber(req.DayIndex)
		if math.IsNaN(index) || index != math.Trunc(index) || math.Abs(index) > model.FastLength*2 {
			writeError(w, apperr.Validation(apperr.CodeDayInvalid, "dayIndex must be an integer between 1 and 30"))
			return
		}
		day, err := s.deps.Fasts.UpdateDay(r.Context(), uid, fastID, int(index), model.DayUpdate{
			Respected:  req.Respected,
			Reflection: req.Reflection,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		s.publish(uid, EventFastDayUpdated, day)
		writeJSON(w, http.StatusOK, map[string]model.FastDay{"day": day})

	default:
		writeError(w, apperr.Validation(apperr.CodeUnsupportedAction, "unsupported action"))
	}
}

func (s *Service) handleFastHistory(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Fasts.ListCampaigns(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.FastSummary{"fasts": list})
}

func (s *Service) handleGetFastByID(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Fasts.GetCampaign(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// stringValue returns a JSON string's value, or "" for any other type.
func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// stringList returns the string elements of a JSON array, skipping other
// element types. Anything but an array yields nil.
func stringList(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}
