package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nomicho/internal/middleware"
	"github.com/hitoshi/nomicho/internal/model"
)

// DebtServiceInterface は立替金ハンドラーが必要とするサービスインターフェース。
type DebtServiceInterface interface {
	MemberDebts(ctx context.Context, callerID, houseID string) ([]*model.MemberDebt, error)
}

// DebtHandler は立替金集計のHTTPハンドラー。
type DebtHandler struct {
	service DebtServiceInterface
}

// NewDebtHandler はDebtHandlerを生成する。
func NewDebtHandler(service DebtServiceInterface) *DebtHandler {
	return &DebtHandler{
		service: service,
	}
}

// drinkDebtResponse はドリンク別の立替金内訳のAPIレスポンス。
type drinkDebtResponse struct {
	DrinkName string `json:"drink_name"`
	Quantity  int    `json:"quantity"`
	TotalCost string `json:"total_cost"`
}

// memberDebtResponse はメンバーごとの立替金のAPIレスポンス。
type memberDebtResponse struct {
	UserID    string              `json:"user_id"`
	Username  string              `json:"username"`
	TotalOwed string              `json:"total_owed"`
	Breakdown []drinkDebtResponse `json:"breakdown"`
}

// MemberDebts はハウスの全メンバーの立替金を返す。
// GET /api/houses/:id/debts
func (h *DebtHandler) MemberDebts(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	debts, err := h.service.MemberDebts(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]memberDebtResponse, len(debts))
	for i, d := range debts {
		breakdown := make([]drinkDebtResponse, len(d.Breakdown))
		for j, b := range d.Breakdown {
			breakdown[j] = drinkDebtResponse{
				DrinkName: b.DrinkName,
				Quantity:  b.Quantity,
				TotalCost: b.TotalCost.StringFixed(2),
			}
		}
		results[i] = memberDebtResponse{
			UserID:    d.UserID,
			Username:  d.Username,
			TotalOwed: d.TotalOwed.StringFixed(2),
			Breakdown: breakdown,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
