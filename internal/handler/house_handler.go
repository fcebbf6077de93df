package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nomicho/internal/house"
	"github.com/hitoshi/nomicho/internal/middleware"
)

// HouseServiceInterface はハウスハンドラーが必要とするサービスインターフェース。
type HouseServiceInterface interface {
	ListHouses(ctx context.Context, callerID string) ([]house.HouseInfo, error)
	CreateHouse(ctx context.Context, callerID, name string) (*house.HouseInfo, error)
	GetHouse(ctx context.Context, callerID, houseID string) (*house.HouseInfo, error)
	UpdateHouse(ctx context.Context, callerID, houseID string, input house.UpdateInput) (*house.HouseInfo, error)
	DeleteHouse(ctx context.Context, callerID, houseID string) error
}

// HouseHandler はハウス管理のHTTPハンドラー。
type HouseHandler struct {
	service HouseServiceInterface
}

// NewHouseHandler はHouseHandlerを生成する。
func NewHouseHandler(service HouseServiceInterface) *HouseHandler {
	return &HouseHandler{
		service: service,
	}
}

// createHouseRequest はハウス作成リクエストのボディ。
type createHouseRequest struct {
	Name string `json:"name"`
}

// updateHouseRequest はハウス更新リクエストのボディ。
// nilのフィールドは変更しない。
type updateHouseRequest struct {
	Name      *string  `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

// houseResponse はハウス情報のAPIレスポンス。メンバーとドリンクを埋め込む。
type houseResponse struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Members []searchResultResponse `json:"members"`
	Drinks  []drinkResponse        `json:"drinks"`
}

// List は呼び出し元が所属するハウス一覧を返す。
// GET /api/houses
func (h *HouseHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	infos, err := h.service.ListHouses(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]houseResponse, len(infos))
	for i := range infos {
		results[i] = toHouseResponse(&infos[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// Create はハウスを作成する。作成者が最初のメンバーになる。
// POST /api/houses
func (h *HouseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req createHouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	info, err := h.service.CreateHouse(r.Context(), userID, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toHouseResponse(info))
}

// Get はハウス詳細を返す。
// GET /api/houses/:id
func (h *HouseHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	info, err := h.service.GetHouse(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toHouseResponse(info))
}

// Update はハウス名とメンバー構成を更新する。
// PATCH /api/houses/:id
func (h *HouseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req updateHouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	info, err := h.service.UpdateHouse(r.Context(), userID, chi.URLParam(r, "id"), house.UpdateInput{
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toHouseResponse(info))
}

// Delete はハウスを削除する。ドリンクと消費記録も連動して削除される。
// DELETE /api/houses/:id
func (h *HouseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	if err := h.service.DeleteHouse(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toHouseResponse はhouse.HouseInfoからAPIレスポンスに変換する。
func toHouseResponse(info *house.HouseInfo) houseResponse {
	members := make([]searchResultResponse, len(info.Members))
	for i, m := range info.Members {
		members[i] = searchResultResponse{
			ID:       m.ID,
			Username: m.Username,
			Name:     m.Name,
		}
	}

	drinks := make([]drinkResponse, len(info.Drinks))
	for i, d := range info.Drinks {
		drinks[i] = toDrinkResponse(d)
	}

	return houseResponse{
		ID:      info.House.ID,
		Name:    info.House.Name,
		Members: members,
		Drinks:  drinks,
	}
}
