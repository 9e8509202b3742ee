package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"sarisari/backend/internal/domain"
	"sarisari/backend/internal/service"
)

type cartAddRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type modalOpenRequest struct {
	ItemID string `json:"itemId"`
}

// lookupItem resolves an item id against the live inventory and writes the
// error response itself when it cannot.
func (a *API) lookupItem(w http.ResponseWriter, r *http.Request, id string) (*domain.InventoryItem, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("itemId is required"))
		return nil, false
	}
	item, err := a.service.Inventory.Get(r.Context(), id)
	if err != nil {
		a.writeInternal(w, err)
		return nil, false
	}
	if item == nil {
		writeNotFound(w, "item")
		return nil, false
	}
	return item, true
}

func (a *API) handleCart(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, sess.Cart.View())
	case http.MethodDelete:
		sess.Cart.Clear()
		writeJSON(w, http.StatusOK, sess.Cart.View())
	default:
		writeMethodNotAllowed(w)
	}
}

// handleCartAdd adds the item at its current stock. A missing quantity
// means one unit; a negative one is rejected.
func (a *API) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req cartAddRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateCartAdd(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	item, ok := a.lookupItem(w, r, req.ItemID)
	if !ok {
		return
	}

	sess := a.session(r)
	sess.Cart.Add(*item, req.Quantity)
	writeJSON(w, http.StatusOK, sess.Cart.View())
}

func (a *API) handleCartLine(w http.ResponseWriter, r *http.Request) {
	id, action, ok := pathID(r.URL.Path, "/api/v1/cart/items/")
	if !ok || action != "" {
		writeNotFound(w, "cart line")
		return
	}
	sess := a.session(r)

	switch r.Method {
	case http.MethodPatch:
		var req quantityRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sess.Cart.UpdateQuantity(id, req.Quantity)
	case http.MethodDelete:
		sess.Cart.Remove(id)
	default:
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, sess.Cart.View())
}

func (a *API) handleModalState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, a.session(r).Modal.State())
}

func (a *API) handleModalAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	action, extra, ok := pathID(r.URL.Path, "/api/v1/cart/modal/")
	if !ok || extra != "" {
		writeNotFound(w, "modal action")
		return
	}
	sess := a.session(r)

	switch action {
	case "open":
		var req modalOpenRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		item, ok := a.lookupItem(w, r, req.ItemID)
		if !ok {
			return
		}
		sess.Modal.Open(*item)
	case "quantity":
		var req quantityRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if !sess.Modal.SetQuantity(req.Quantity) {
			writeError(w, http.StatusUnprocessableEntity, errors.New("quantity out of range"))
			return
		}
	case "confirm":
		sess.Modal.Confirm()
		writeJSON(w, http.StatusOK, map[string]any{
			"modal": sess.Modal.State(),
			"cart":  sess.Cart.View(),
		})
		return
	case "close":
		sess.Modal.Close()
	default:
		writeNotFound(w, "modal action")
		return
	}
	writeJSON(w, http.StatusOK, sess.Modal.State())
}

// handleCheckout runs the caller's cart against a fresh inventory snapshot.
// A failed checkout still reports the attempted totals alongside the error.
func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	sess := a.session(r)
	items, err := a.service.Inventory.List(r.Context())
	if err != nil {
		a.writeInternal(w, err)
		return
	}

	result, err := a.service.Checkout.Run(r.Context(), sess.Cart.Lines(), items, sess.Cart.Clear)
	if err != nil {
		if errors.Is(err, service.ErrItemUpdateFailed) {
			writeJSON(w, http.StatusConflict, map[string]any{"error": result.Message, "result": result})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": result.Message, "result": result})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
