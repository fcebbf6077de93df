package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hitoshi/nomicho/internal/drink"
	"github.com/hitoshi/nomicho/internal/middleware"
	"github.com/hitoshi/nomicho/internal/model"
)

// DrinkServiceInterface はドリンクハンドラーが必要とするサービスインターフェース。
type DrinkServiceInterface interface {
	ListDrinks(ctx context.Context, callerID, houseID string) ([]*model.DrinkType, error)
	CreateDrink(ctx context.Context, callerID string, input drink.CreateInput) (*model.DrinkType, error)
	GetDrink(ctx context.Context, callerID, drinkID string) (*model.DrinkType, error)
	UpdateDrink(ctx context.Context, callerID, drinkID string, input drink.UpdateInput) (*model.DrinkType, error)
	DeleteDrink(ctx context.Context, callerID, drinkID string) error
	Restock(ctx context.Context, callerID, drinkID string, quantity int) (*model.DrinkType, error)
	ShoppingList(ctx context.Context, callerID, houseID string) ([]*model.DrinkType, error)
}

// DrinkHandler はドリンク管理のHTTPハンドラー。
type DrinkHandler struct {
	service DrinkServiceInterface
}

// NewDrinkHandler はDrinkHandlerを生成する。
func NewDrinkHandler(service DrinkServiceInterface) *DrinkHandler {
	return &DrinkHandler{
		service: service,
	}
}

// createDrinkRequest はドリンク作成リクエストのボディ。
// 単価は桁落ちを避けるため文字列で受け取る。
type createDrinkRequest struct {
	HouseID           string `json:"house_id"`
	Name              string `json:"name"`
	PricePerUnit      string `json:"price_per_unit"`
	LowStockThreshold *int   `json:"low_stock_threshold"`
	CurrentStock      int    `json:"current_stock"`
}

// updateDrinkRequest はドリンク更新リクエストのボディ。nilのフィールドは変更しない。
type updateDrinkRequest struct {
	Name              *string `json:"name"`
	PricePerUnit      *string `json:"price_per_unit"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
	CurrentStock      *int    `json:"current_stock"`
}

// restockRequest は在庫補充リクエストのボディ。
type restockRequest struct {
	Quantity int `json:"quantity"`
}

// drinkResponse はドリンク情報のAPIレスポンス。
type drinkResponse struct {
	ID                string `json:"id"`
	HouseID           string `json:"house_id"`
	Name              string `json:"name"`
	PricePerUnit      string `json:"price_per_unit"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	CurrentStock      int    `json:"current_stock"`
	IsLowStock        bool   `json:"is_low_stock"`
}

// List はハウスのドリンク一覧を返す。
// GET /api/drinks?house_id=xxx
func (h *DrinkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	houseID := r.URL.Query().Get("house_id")
	drinks, err := h.service.ListDrinks(r.Context(), userID, houseID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeDrinkListResponse(w, drinks)
}

// Create はドリンクを登録する。
// POST /api/drinks
func (h *DrinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req createDrinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	price, err := decimal.NewFromString(req.PricePerUnit)
	if err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	created, err := h.service.CreateDrink(r.Context(), userID, drink.CreateInput{
		HouseID:           req.HouseID,
		Name:              req.Name,
		PricePerUnit:      price,
		LowStockThreshold: req.LowStockThreshold,
		CurrentStock:      req.CurrentStock,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toDrinkResponse(created))
}

// Get はドリンク詳細を返す。
// GET /api/drinks/:id
func (h *DrinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	d, err := h.service.GetDrink(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toDrinkResponse(d))
}

// Update はドリンク情報を更新する。
// PATCH /api/drinks/:id
func (h *DrinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req updateDrinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	input := drink.UpdateInput{
		Name:              req.Name,
		LowStockThreshold: req.LowStockThreshold,
		CurrentStock:      req.CurrentStock,
	}
	if req.PricePerUnit != nil {
		price, err := decimal.NewFromString(*req.PricePerUnit)
		if err != nil {
			writeInvalidRequestResponse(w)
			return
		}
		input.PricePerUnit = &price
	}

	updated, err := h.service.UpdateDrink(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toDrinkResponse(updated))
}

// Delete はドリンクを削除する。
// DELETE /api/drinks/:id
func (h *DrinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	if err := h.service.DeleteDrink(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restock は在庫を補充する。
// POST /api/drinks/:id/restock
func (h *DrinkHandler) Restock(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	d, err := h.service.Restock(r.Context(), userID, chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toDrinkResponse(d))
}

// ShoppingList はハウスの買い出しリストを返す。
// GET /api/houses/:id/shopping-list
func (h *DrinkHandler) ShoppingList(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	drinks, err := h.service.ShoppingList(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeDrinkListResponse(w, drinks)
}

// writeDrinkListResponse はドリンク一覧のレスポンスを書き込む。
func writeDrinkListResponse(w http.ResponseWriter, drinks []*model.DrinkType) {
	results := make([]drinkResponse, len(drinks))
	for i, d := range drinks {
		results[i] = toDrinkResponse(d)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// toDrinkResponse はmodel.DrinkTypeからAPIレスポンスに変換する。
func toDrinkResponse(d *model.DrinkType) drinkResponse {
	return drinkResponse{
		ID:                d.ID,
		HouseID:           d.HouseID,
		Name:              d.Name,
		PricePerUnit:      d.PricePerUnit.StringFixed(2),
		LowStockThreshold: d.LowStockThreshold,
		CurrentStock:      d.CurrentStock,
		IsLowStock:        d.IsLowStock(),
	}
}
