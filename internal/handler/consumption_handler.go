package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nomicho/internal/consumption"
	"github.com/hitoshi/nomicho/internal/middleware"
	"github.com/hitoshi/nomicho/internal/model"
)

// ConsumptionServiceInterface は消費記録ハンドラーが必要とするサービスインターフェース。
type ConsumptionServiceInterface interface {
	Record(ctx context.Context, callerID string, input consumption.RecordInput) (*model.Consumption, error)
	List(ctx context.Context, callerID, houseID string) ([]model.ConsumptionWithNames, error)
	Recent(ctx context.Context, callerID string) ([]model.ConsumptionWithNames, error)
	Get(ctx context.Context, callerID, consumptionID string) (*model.Consumption, error)
	Update(ctx context.Context, callerID, consumptionID string, input consumption.UpdateInput) (*model.Consumption, error)
	Delete(ctx context.Context, callerID, consumptionID string) error
}

// ConsumptionHandler は消費記録のHTTPハンドラー。
type ConsumptionHandler struct {
	service ConsumptionServiceInterface
}

// NewConsumptionHandler はConsumptionHandlerを生成する。
func NewConsumptionHandler(service ConsumptionServiceInterface) *ConsumptionHandler {
	return &ConsumptionHandler{
		service: service,
	}
}

// recordConsumptionRequest は消費記録作成リクエストのボディ。
type recordConsumptionRequest struct {
	DrinkTypeID string     `json:"drink_type_id"`
	Quantity    int        `json:"quantity"`
	ConsumedAt  *time.Time `json:"consumed_at"`
}

// updateConsumptionRequest は消費記録更新リクエストのボディ。nilのフィールドは変更しない。
type updateConsumptionRequest struct {
	Quantity   *int       `json:"quantity"`
	ConsumedAt *time.Time `json:"consumed_at"`
}

// consumptionResponse は消費記録のAPIレスポンス。
type consumptionResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DrinkTypeID string    `json:"drink_type_id"`
	HouseID     string    `json:"house_id"`
	Quantity    int       `json:"quantity"`
	ConsumedAt  time.Time `json:"consumed_at"`
	Cost        string    `json:"cost"`
}

// consumptionWithNamesResponse はユーザー名・ドリンク名付きの消費記録レスポンス。
type consumptionWithNamesResponse struct {
	consumptionResponse
	Username  string `json:"username"`
	DrinkName string `json:"drink_name"`
}

// Record は消費を記録する。記録者は常に呼び出し元自身。
// POST /api/consumptions
func (h *ConsumptionHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req recordConsumptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	c, err := h.service.Record(r.Context(), userID, consumption.RecordInput{
		DrinkTypeID: req.DrinkTypeID,
		Quantity:    req.Quantity,
		ConsumedAt:  req.ConsumedAt,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toConsumptionResponse(c))
}

// List はハウスの消費記録一覧を返す。
// GET /api/consumptions?house_id=xxx
func (h *ConsumptionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	houseID := r.URL.Query().Get("house_id")
	list, err := h.service.List(r.Context(), userID, houseID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeConsumptionListResponse(w, list)
}

// Recent は呼び出し元が所属する全ハウスの直近の消費記録を返す。
// GET /api/consumptions/recent
func (h *ConsumptionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	list, err := h.service.Recent(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeConsumptionListResponse(w, list)
}

// Get は消費記録の詳細を返す。
// GET /api/consumptions/:id
func (h *ConsumptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	c, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toConsumptionResponse(c))
}

// Update は消費記録の数量と消費日時を更新する。金額は変更されない。
// PATCH /api/consumptions/:id
func (h *ConsumptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req updateConsumptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	c, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), consumption.UpdateInput{
		Quantity:   req.Quantity,
		ConsumedAt: req.ConsumedAt,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toConsumptionResponse(c))
}

// Delete は消費記録を削除する。在庫は戻さない。
// DELETE /api/consumptions/:id
func (h *ConsumptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeConsumptionListResponse は名前付き消費記録一覧のレスポンスを書き込む。
func writeConsumptionListResponse(w http.ResponseWriter, list []model.ConsumptionWithNames) {
	results := make([]consumptionWithNamesResponse, len(list))
	for i, c := range list {
		results[i] = consumptionWithNamesResponse{
			consumptionResponse: toConsumptionResponse(&c.Consumption),
			Username:            c.Username,
			DrinkName:           c.DrinkName,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// toConsumptionResponse はmodel.ConsumptionからAPIレスポンスに変換する。
func toConsumptionResponse(c *model.Consumption) consumptionResponse {
	return consumptionResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		DrinkTypeID: c.DrinkTypeID,
		HouseID:     c.HouseID,
		Quantity:    c.Quantity,
		ConsumedAt:  c.ConsumedAt,
		Cost:        c.Cost.StringFixed(2),
	}
}
