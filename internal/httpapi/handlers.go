package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"sarisari/backend/internal/backup"
	"sarisari/backend/internal/domain"
	"sarisari/backend/internal/report"
)

func (a *API) handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var (
			items []domain.InventoryItem
			err   error
		)
		if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			items, err = a.service.Inventory.Search(r.Context(), q)
		} else {
			items, err = a.service.Inventory.List(r.Context())
		}
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	case http.MethodPost:
		if !requireAdmin(w, r) {
			return
		}
		var req domain.InventoryItemCreate
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := validateItemCreate(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		item, err := a.service.Inventory.Create(r.Context(), req)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"item": item})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleLowStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	items, err := a.service.Inventory.LowStock(r.Context())
	if err != nil {
		a.writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleItemActions(w http.ResponseWriter, r *http.Request) {
	id, action, ok := pathID(r.URL.Path, "/api/v1/items/")
	if !ok || action != "" {
		writeNotFound(w, "item")
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := a.service.Inventory.Get(r.Context(), id)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		if item == nil {
			writeNotFound(w, "item")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"item": item})
	case http.MethodPatch:
		if !requireAdmin(w, r) {
			return
		}
		var req domain.InventoryItemUpdate
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := validateItemUpdate(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		item, err := a.service.Inventory.Update(r.Context(), id, req)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		if item == nil {
			writeNotFound(w, "item")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"item": item})
	case http.MethodDelete:
		if !requireAdmin(w, r) {
			return
		}
		deleted, err := a.service.Inventory.Delete(r.Context(), id)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		if !deleted {
			writeNotFound(w, "item")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleDebts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var (
			debts []domain.Debt
			err   error
		)
		if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			debts, err = a.service.Debts.Search(r.Context(), q)
		} else {
			debts, err = a.service.Debts.List(r.Context())
		}
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"debts": debts})
	case http.MethodPost:
		var req domain.DebtCreate
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := normalizeDebtCreate(&req, a.now()); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		debt, err := a.service.Debts.Create(r.Context(), req)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"debt": debt})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleDebtActions(w http.ResponseWriter, r *http.Request) {
	id, action, ok := pathID(r.URL.Path, "/api/v1/debts/")
	if !ok {
		writeNotFound(w, "debt")
		return
	}

	if action == "pay" {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		debt, err := a.service.Debts.MarkPaid(r.Context(), id)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		if debt == nil {
			writeNotFound(w, "debt")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"debt": debt})
		return
	}
	if action != "" {
		writeNotFound(w, "debt")
		return
	}

	switch r.Method {
	case http.MethodGet:
		debt, err := a.service.Debts.Get(r.Context(), id)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		if debt == nil {
			writeNotFound(w, "debt")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"debt": debt})
	case http.MethodPatch:
		var req domain.DebtUpdate
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := validateDebtUpdate(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		debt, err := a.service.Debts.Update(r.Context(), id, req)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		if debt == nil {
			writeNotFound(w, "debt")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"debt": debt})
	case http.MethodDelete:
		if !requireAdmin(w, r) {
			return
		}
		deleted, err := a.service.Debts.Delete(r.Context(), id)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		if !deleted {
			writeNotFound(w, "debt")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	default:
		writeMethodNotAllowed(w)
	}
}

// handleSales returns the newest sales last; ?limit= keeps only the tail.
func (a *API) handleSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	sales, err := a.service.Sales.List(r.Context())
	if err != nil {
		a.writeInternal(w, err)
		return
	}
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), len(sales), 0)
	if limit < len(sales) {
		sales = sales[len(sales)-limit:]
	}
	writeJSON(w, http.StatusOK, map[string]any{"sales": sales})
}

func (a *API) handleSalesDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	sales, err := a.service.Sales.List(r.Context())
	if err != nil {
		a.writeInternal(w, err)
		return
	}
	days := report.GroupSalesByDay(sales)
	limit := parsePositiveLimit(r.URL.Query().Get("days"), 30, 366)
	if limit < len(days) {
		days = days[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (a *API) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	ctx := r.Context()
	items, err := a.service.Inventory.List(ctx)
	if err != nil {
		a.writeInternal(w, err)
		return
	}
	debts, err := a.service.Debts.List(ctx)
	if err != nil {
		a.writeInternal(w, err)
		return
	}
	sales, err := a.service.Sales.List(ctx)
	if err != nil {
		a.writeInternal(w, err)
		return
	}
	summary := report.Summarize(items, debts, sales, a.now())

	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))) {
	case "csv":
		body, err := report.CSV(summary)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"report-%s.csv\"", summary.Date))
		_, _ = w.Write(body)
	case "html":
		body, err := report.HTML(summary, a.currency)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	case "", "json":
		writeJSON(w, http.StatusOK, summary)
	default:
		writeError(w, http.StatusBadRequest, errors.New("format must be json, csv or html"))
	}
}

func (a *API) handleBackupExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	stamp := a.now().Format("20060102-150405")
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))) {
	case "", "json":
		body, err := backup.ExportJSON(r.Context(), a.service.KV)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"sarisari-backup-%s.json\"", stamp))
		_, _ = w.Write(body)
	case "csv":
		body, err := backup.ExportCSV(r.Context(), a.service.KV)
		if err != nil {
			a.writeInternal(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"sarisari-backup-%s.csv\"", stamp))
		_, _ = w.Write(body)
	default:
		writeError(w, http.StatusBadRequest, errors.New("format must be json or csv"))
	}
}

// handleBackupImport reloads the item and debt stores whenever any key was
// written, including after a partial failure, so later writes start from
// what is actually stored.
func (a *API) handleBackupImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var (
		written int
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))) {
	case "", "json":
		written, err = backup.ImportJSON(r.Context(), a.service.KV, r.Body)
	case "csv":
		written, err = backup.ImportCSV(r.Context(), a.service.KV, r.Body)
	default:
		writeError(w, http.StatusBadRequest, errors.New("format must be json or csv"))
		return
	}
	if err == nil || written > 0 {
		if reloadErr := a.service.Reload(r.Context()); reloadErr != nil {
			a.writeInternal(w, errors.Join(err, reloadErr))
			return
		}
	}
	if err != nil {
		a.logger.Warn("backup import stopped", zap.Int("keys_written", written), zap.Error(err))
		if errors.Is(err, backup.ErrMalformed) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		a.writeInternal(w, err)
		return
	}
	a.logger.Info("backup imported", zap.Int("keys", written))
	writeJSON(w, http.StatusOK, map[string]any{"imported": written})
}

func (a *API) handleBackupClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	removed, err := backup.Clear(r.Context(), a.service.KV)
	if err == nil || removed > 0 {
		if reloadErr := a.service.Reload(r.Context()); reloadErr != nil {
			a.writeInternal(w, errors.Join(err, reloadErr))
			return
		}
	}
	if err != nil {
		a.writeInternal(w, err)
		return
	}
	a.logger.Warn("all data cleared", zap.Int("keys", removed))
	writeJSON(w, http.StatusOK, map[string]any{"cleared": removed})
}
