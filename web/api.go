package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/tracker"
)

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeError maps tracker errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ledger.ValidationErrors
	if errors.Is(err, ledger.ErrInvalidAmount) || errors.As(err, &verr) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

type SummaryResponse struct {
	Month              string          `json:"month"`
	Currency           string          `json:"currency"`
	ExpenseLimit       decimal.Decimal `json:"expenseLimit"`
	SavingBuffer       decimal.Decimal `json:"savingBuffer"`
	ExpenseCount       int             `json:"expenseCount"`
	GrossSpend         decimal.Decimal `json:"grossSpend"`
	NetCashFlow        decimal.Decimal `json:"netCashFlow"`
	LimitSpend         decimal.Decimal `json:"limitSpend"`
	LimitLeft          decimal.Decimal `json:"limitLeft"`
	SafeLimit          decimal.Decimal `json:"safeLimit"`
	LastMonthRecurring decimal.Decimal `json:"lastMonthRecurring"`
	ThisMonthRecurring decimal.Decimal `json:"thisMonthRecurring"`
	Progress           decimal.Decimal `json:"progress"`
	Velocity           VelocityJSON    `json:"velocity"`
	TotalOwed          decimal.Decimal `json:"totalOwed"`
	ClosedMonths       int             `json:"closedMonths"`
}

type VelocityJSON struct {
	DailyRate  decimal.Decimal `json:"dailyRate"`
	TargetRate decimal.Decimal `json:"targetRate"`
	Status     string          `json:"status"`
}

// handleGetSummary handles GET requests to /api/summary.
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	d, err := s.tracker.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum := d.Summary

	writeJSONResponse(w, &SummaryResponse{
		Month:              sum.Month.Format("2006-01"),
		Currency:           s.getCurrency(),
		ExpenseLimit:       sum.ExpenseLimit,
		SavingBuffer:       sum.SavingBuffer,
		ExpenseCount:       sum.ExpenseCount,
		GrossSpend:         sum.GrossSpend,
		NetCashFlow:        sum.NetCashFlow,
		LimitSpend:         sum.LimitSpend,
		LimitLeft:          sum.LimitLeft,
		SafeLimit:          sum.SafeLimit,
		LastMonthRecurring: sum.LastMonthRecurring,
		ThisMonthRecurring: sum.ThisMonthRecurring,
		Progress:           sum.Progress().Round(4),
		Velocity: VelocityJSON{
			DailyRate:  d.Velocity.DailyRate,
			TargetRate: d.Velocity.TargetRate,
			Status:     string(d.Velocity.Status),
		},
		TotalOwed:    d.TotalOwed,
		ClosedMonths: len(d.Rollover.Months),
	})
}

type DebtJSON struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type DebtsResponse struct {
	Currency string          `json:"currency"`
	Debts    []DebtJSON      `json:"debts"`
	Total    decimal.Decimal `json:"total"`
}

// handleGetDebts handles GET requests to /api/debts.
// Returns everyone with an outstanding balance, sorted by name.
func (s *Server) handleGetDebts(w http.ResponseWriter, r *http.Request) {
	debts, total, err := s.tracker.Debts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]DebtJSON, 0, len(debts))
	for _, d := range debts {
		out = append(out, DebtJSON{Name: d.Name, Amount: d.Amount})
	}
	writeJSONResponse(w, &DebtsResponse{Currency: s.getCurrency(), Debts: out, Total: total})
}

type OutstandingJSON struct {
	ExpenseID string          `json:"expenseId"`
	Label     string          `json:"label"`
	Date      string          `json:"date"`
	Remaining decimal.Decimal `json:"remaining"`
}

type DebtDetailResponse struct {
	Name     string            `json:"name"`
	Currency string            `json:"currency"`
	Debts    []OutstandingJSON `json:"debts"`
	Total    decimal.Decimal   `json:"total"`
}

// handleGetDebt handles GET requests to /api/debts/{name}.
// Lists the unpaid shares of one person in the order payments settle them.
func (s *Server) handleGetDebt(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	debts, total, err := s.tracker.DebtDetail(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]OutstandingJSON, 0, len(debts))
	for _, d := range debts {
		out = append(out, OutstandingJSON{
			ExpenseID: d.ExpenseID,
			Label:     d.Label,
			Date:      d.Date.Format(time.DateOnly),
			Remaining: d.Remaining,
		})
	}
	writeJSONResponse(w, &DebtDetailResponse{Name: name, Currency: s.getCurrency(), Debts: out, Total: total})
}

type SettlementJSON struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

type SettlementsResponse struct {
	Settlements []SettlementJSON `json:"settlements"`
}

func settlementJSON(st *ledger.Settlement) SettlementJSON {
	return SettlementJSON{ID: st.ID, Name: st.ParticipantName, Amount: st.Amount, Date: st.Date}
}

// handleGetSettlements handles GET requests to /api/settlements.
//
// Query parameters:
//   - name: Only return payments from this person.
func (s *Server) handleGetSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.tracker.Settlements(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]SettlementJSON, 0, len(settlements))
	for _, st := range settlements {
		out = append(out, settlementJSON(st))
	}
	writeJSONResponse(w, &SettlementsResponse{Settlements: out})
}

type PaymentRequest struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type AllocationJSON struct {
	ExpenseID     string          `json:"expenseId"`
	ParticipantID string          `json:"participantId"`
	ExpenseDate   string          `json:"expenseDate"`
	Amount        decimal.Decimal `json:"amount"`
}

type PaymentResponse struct {
	Settlement  SettlementJSON   `json:"settlement"`
	Allocations []AllocationJSON `json:"allocations"`
	Unallocated decimal.Decimal  `json:"unallocated"`
}

// handlePostPayment handles POST requests to /api/payments.
// The payment is applied oldest debt first; any excess is reported as unallocated.
func (s *Server) handlePostPayment(w http.ResponseWriter, r *http.Request) {
	var request PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	request.Name = strings.TrimSpace(request.Name)
	if request.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	payment, err := s.tracker.RecordPayment(r.Context(), request.Name, request.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	allocations := make([]AllocationJSON, 0, len(payment.Allocations))
	for _, a := range payment.Allocations {
		allocations = append(allocations, AllocationJSON{
			ExpenseID:     a.ExpenseID,
			ParticipantID: a.ParticipantID,
			ExpenseDate:   a.ExpenseDate.Format(time.DateOnly),
			Amount:        a.Amount,
		})
	}

	s.broadcast("payment")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSONResponse(w, &PaymentResponse{
		Settlement:  settlementJSON(payment.Settlement),
		Allocations: allocations,
		Unallocated: payment.Unallocated,
	})
}

type TypeSpendJSON struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

type MonthTotalJSON struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

type CategoryTotalJSON struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

type ShareJSON struct {
	Name        string          `json:"name"`
	TotalShared decimal.Decimal `json:"totalShared"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	Net         decimal.Decimal `json:"net"`
}

type AnalysisResponse struct {
	Currency       string              `json:"currency"`
	Months         int                 `json:"months"`
	Breakdown      []TypeSpendJSON     `json:"breakdown"`
	Recurring      decimal.Decimal     `json:"recurring"`
	OneTime        decimal.Decimal     `json:"oneTime"`
	Velocity       VelocityJSON        `json:"velocity"`
	Trend          []MonthTotalJSON    `json:"trend"`
	CategoryTotals []CategoryTotalJSON `json:"categoryTotals"`
	Shares         []ShareJSON         `json:"shares"`
	TotalLent      decimal.Decimal     `json:"totalLent"`
	TotalRecovered decimal.Decimal     `json:"totalRecovered"`
}

// handleGetAnalysis handles GET requests to /api/analysis.
//
// Query parameters:
//   - months: Size of the trend window, 6 when omitted.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	months := tracker.DefaultTrendMonths
	if param := r.URL.Query().Get("months"); param != "" {
		n, err := strconv.Atoi(param)
		if err != nil || n < 1 || n > 120 {
			http.Error(w, "invalid months (expected 1-120): "+param, http.StatusBadRequest)
			return
		}
		months = n
	}

	a, err := s.tracker.Analysis(r.Context(), months)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := &AnalysisResponse{
		Currency:       s.getCurrency(),
		Months:         a.Months,
		Breakdown:      make([]TypeSpendJSON, 0, len(a.Breakdown)),
		Recurring:      a.Split.Recurring,
		OneTime:        a.Split.OneTime,
		Trend:          make([]MonthTotalJSON, 0, len(a.Trend)),
		CategoryTotals: make([]CategoryTotalJSON, 0, len(a.CategoryTotals)),
		Shares:         make([]ShareJSON, 0, len(a.Shares.Participants)),
		TotalLent:      a.Shares.TotalLent,
		TotalRecovered: a.Shares.TotalRecovered,
		Velocity: VelocityJSON{
			DailyRate:  a.Velocity.DailyRate,
			TargetRate: a.Velocity.TargetRate,
			Status:     string(a.Velocity.Status),
		},
	}
	for _, b := range a.Breakdown {
		resp.Breakdown = append(resp.Breakdown, TypeSpendJSON{Type: string(b.Type), Amount: b.Amount})
	}
	for _, m := range a.Trend {
		resp.Trend = append(resp.Trend, MonthTotalJSON{Month: m.Month.Format("2006-01"), Amount: m.Amount})
	}
	for _, c := range a.CategoryTotals {
		resp.CategoryTotals = append(resp.CategoryTotals, CategoryTotalJSON{Name: c.Name, Type: string(c.Type), Amount: c.Amount})
	}
	for _, p := range a.Shares.Participants {
		resp.Shares = append(resp.Shares, ShareJSON{Name: p.Name, TotalShared: p.TotalShared, TotalPaid: p.TotalPaid, Net: p.Net()})
	}
	writeJSONResponse(w, resp)
}

type InfoResponse struct {
	Version   string `json:"version"`
	CommitSHA string `json:"commitSha"`
	ReadOnly  bool   `json:"readOnly"`
	Currency  string `json:"currency"`
}

// handleGetInfo handles GET requests to /api/info.
func (s *Server) handleGetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, &InfoResponse{Version: s.Version, CommitSHA: s.CommitSHA, ReadOnly: s.ReadOnly, Currency: s.getCurrency()})
}
