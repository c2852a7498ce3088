package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"moneysaver/internal/amqp"
	"moneysaver/internal/core"
	"moneysaver/internal/format"
	"moneysaver/internal/stats"
)

type recordDTO struct {
	Index    int    `json:"index"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Flag     string `json:"flag"`
}

type ledgerDTO struct {
	Author    string      `json:"author"`
	FileName  string      `json:"file_name"`
	CreatedAt string      `json:"created_at,omitempty"`
	Records   []recordDTO `json:"records"`
}

func toLedgerDTO(l *core.Ledger) ledgerDTO {
	dto := ledgerDTO{
		Author:    l.Author,
		FileName:  l.FileName,
		CreatedAt: l.CreatedAt,
		Records:   make([]recordDTO, 0, len(l.Records)),
	}
	for _, rec := range l.Records {
		dto.Records = append(dto.Records, recordDTO{
			Index:    rec.Index,
			Date:     rec.Date.String(),
			Category: rec.Category,
			Price:    rec.Amount.String(),
			Flag:     string(rec.Flag),
		})
	}
	return dto
}

func (s *Server) handleListLedgers(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Could not list ledgers: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ledgers": names})
}

type createLedgerRequest struct {
	Author   string `json:"author"`
	FileName string `json:"file_name"`
}

func (s *Server) handleCreateLedger(w http.ResponseWriter, r *http.Request) {
	var req createLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	req.Author = strings.TrimSpace(req.Author)
	req.FileName = strings.TrimSpace(req.FileName)
	if req.Author == "" || req.FileName == "" {
		writeError(w, http.StatusUnprocessableEntity, "Both author and file_name are required")
		return
	}

	l, err := s.store.Create(req.Author, req.FileName)
	if err != nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("Could not create ledger: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, toLedgerDTO(l))
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	l, err := s.store.Load(name)
	if err != nil {
		writeLoadError(w, name, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerDTO(l))
}

type addRecordRequest struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Flag     string `json:"flag"`
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req addRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	flag, err := core.ParseFlag(req.Flag)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid flag %q: must be %q or %q", req.Flag, core.FlagExpenditure, core.FlagIncome))
		return
	}

	date := core.Today()
	if strings.TrimSpace(req.Date) != "" {
		date, err = core.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid date %q: expected DD.MM.YYYY", req.Date))
			return
		}
	}

	amount := core.ParseAmount(req.Amount)
	if !amount.Valid() {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid amount %q: must be numeric", req.Amount))
		return
	}

	category := strings.TrimSpace(req.Category)
	if flag == core.FlagIncome {
		category = core.CategoryIncome
	}

	rec := core.Record{
		Date:     date,
		Category: category,
		Amount:   amount,
		Flag:     flag,
	}
	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid record: %v", err))
		return
	}

	l, err := s.store.Load(name)
	if err != nil {
		writeLoadError(w, name, err)
		return
	}

	l.Insert(rec)
	if err := s.store.Save(l); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Could not save ledger %q: %v", name, err))
		return
	}
	s.records.Delete(name)

	if s.publisher != nil {
		msg := amqp.NewLedgerSavedMessage(name, len(l.Records))
		if err := s.publisher.PublishLedgerSaved(r.Context(), msg); err != nil {
			// The save already succeeded; the periodic resync covers
			// a lost notification.
			slog.Error("Failed to publish ledger saved message", "ledger", name, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ledger":  name,
		"records": len(l.Records),
	})
}

func (s *Server) handleDailySeries(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	category := r.URL.Query().Get("category")
	if category == "" {
		category = core.CategoryAll
	}

	records, err := s.loadRecords(name)
	if err != nil {
		writeLoadError(w, name, err)
		return
	}

	_, expenditures := stats.Partition(records)
	series := stats.DailyTotals(stats.FilterByCategory(expenditures, category))

	writeJSON(w, http.StatusOK, map[string]any{
		"ledger":   name,
		"category": category,
		"series":   series,
	})
}

func (s *Server) handleCategorySeries(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	records, err := s.loadRecords(name)
	if err != nil {
		writeLoadError(w, name, err)
		return
	}

	_, expenditures := stats.Partition(records)
	series := stats.CategoryTotals(expenditures)

	writeJSON(w, http.StatusOK, map[string]any{
		"ledger": name,
		"series": series,
	})
}

func (s *Server) handleBalanceSeries(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	records, err := s.loadRecords(name)
	if err != nil {
		writeLoadError(w, name, err)
		return
	}

	series := stats.MonthlyBalance(records)

	writeJSON(w, http.StatusOK, map[string]any{
		"ledger": name,
		"series": series,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	records, err := s.loadRecords(name)
	if err != nil {
		writeLoadError(w, name, err)
		return
	}

	writeJSON(w, http.StatusOK, format.NewSummary(records))
}

// loadRecords returns the working-order records of a ledger, serving
// repeat reads from the cache.
func (s *Server) loadRecords(name string) ([]core.Record, error) {
	if records, ok := s.records.Get(name); ok {
		return records, nil
	}
	l, err := s.store.Load(name)
	if err != nil {
		return nil, err
	}
	s.records.Set(name, l.Records)
	return l.Records, nil
}

func writeLoadError(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Ledger %q does not exist", name))
	case errors.Is(err, core.ErrCorrupt):
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Ledger %q is corrupt: %v", name, err))
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Could not load ledger %q: %v", name, err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
