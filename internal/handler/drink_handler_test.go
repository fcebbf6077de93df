package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/nomicho/internal/drink"
	"github.com/hitoshi/nomicho/internal/model"
)

// mockDrinkService はDrinkServiceInterfaceのモック実装。
type mockDrinkService struct {
	listDrinksFn   func(ctx context.Context, callerID, houseID string) ([]*model.DrinkType, error)
	createDrinkFn  func(ctx context.Context, callerID string, input drink.CreateInput) (*model.DrinkType, error)
	getDrinkFn     func(ctx context.Context, callerID, drinkID string) (*model.DrinkType, error)
	updateDrinkFn  func(ctx context.Context, callerID, drinkID string, input drink.UpdateInput) (*model.DrinkType, error)
	deleteDrinkFn  func(ctx context.Context, callerID, drinkID string) error
	restockFn      func(ctx context.Context, callerID, drinkID string, quantity int) (*model.DrinkType, error)
	shoppingListFn func(ctx context.Context, callerID, houseID string) ([]*model.DrinkType, error)
}

func (m *mockDrinkService) ListDrinks(ctx context.Context, callerID, houseID string) ([]*model.DrinkType, error) {
	if m.listDrinksFn != nil {
		return m.listDrinksFn(ctx, callerID, houseID)
	}
	return nil, nil
}

func (m *mockDrinkService) CreateDrink(ctx context.Context, callerID string, input drink.CreateInput) (*model.DrinkType, error) {
	if m.createDrinkFn != nil {
		return m.createDrinkFn(ctx, callerID, input)
	}
	return nil, nil
}

func (m *mockDrinkService) GetDrink(ctx context.Context, callerID, drinkID string) (*model.DrinkType, error) {
	if m.getDrinkFn != nil {
		return m.getDrinkFn(ctx, callerID, drinkID)
	}
	return nil, nil
}

func (m *mockDrinkService) UpdateDrink(ctx context.Context, callerID, drinkID string, input drink.UpdateInput) (*model.DrinkType, error) {
	if m.updateDrinkFn != nil {
		return m.updateDrinkFn(ctx, callerID, drinkID, input)
	}
	return nil, nil
}

func (m *mockDrinkService) DeleteDrink(ctx context.Context, callerID, drinkID string) error {
	if m.deleteDrinkFn != nil {
		return m.deleteDrinkFn(ctx, callerID, drinkID)
	}
	return nil
}

func (m *mockDrinkService) Restock(ctx context.Context, callerID, drinkID string, quantity int) (*model.DrinkType, error) {
	if m.restockFn != nil {
		return m.restockFn(ctx, callerID, drinkID, quantity)
	}
	return nil, nil
}

func (m *mockDrinkService) ShoppingList(ctx context.Context, callerID, houseID string) ([]*model.DrinkType, error) {
	if m.shoppingListFn != nil {
		return m.shoppingListFn(ctx, callerID, houseID)
	}
	return nil, nil
}

// --- POST /api/drinks テスト ---

func TestDrinkHandler_Create_Success(t *testing.T) {
	svc := &mockDrinkService{
		createDrinkFn: func(ctx context.Context, callerID string, input drink.CreateInput) (*model.DrinkType, error) {
			if !input.PricePerUnit.Equal(decimal.RequireFromString("250.00")) {
				t.Errorf("price = %s, want 250.00", input.PricePerUnit)
			}
			return &model.DrinkType{
				ID:                "drink-1",
				HouseID:           input.HouseID,
				Name:              input.Name,
				PricePerUnit:      input.PricePerUnit,
				LowStockThreshold: 6,
				CurrentStock:      input.CurrentStock,
			}, nil
		},
	}

	h := NewDrinkHandler(svc)

	body := `{"house_id": "house-1", "name": "ビール", "price_per_unit": "250.00", "current_stock": 12}`
	req := httptest.NewRequest(http.MethodPost, "/api/drinks", bytes.NewBufferString(body))
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp drinkResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.PricePerUnit != "250.00" {
		t.Errorf("price_per_unit = %q, want %q", resp.PricePerUnit, "250.00")
	}
	if resp.IsLowStock {
		t.Error("is_low_stock = true, want false (stock 12 > threshold 6)")
	}
}

func TestDrinkHandler_Create_InvalidPrice(t *testing.T) {
	createCalled := false
	svc := &mockDrinkService{
		createDrinkFn: func(ctx context.Context, callerID string, input drink.CreateInput) (*model.DrinkType, error) {
			createCalled = true
			return nil, nil
		},
	}

	h := NewDrinkHandler(svc)

	body := `{"house_id": "house-1", "name": "ビール", "price_per_unit": "二百五十円"}`
	req := httptest.NewRequest(http.MethodPost, "/api/drinks", bytes.NewBufferString(body))
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if createCalled {
		t.Error("CreateDrink should not be called")
	}
}

func TestDrinkHandler_Create_NameTaken(t *testing.T) {
	svc := &mockDrinkService{
		createDrinkFn: func(ctx context.Context, callerID string, input drink.CreateInput) (*model.DrinkType, error) {
			return nil, model.NewDrinkNameTakenError(input.Name)
		},
	}

	h := NewDrinkHandler(svc)

	body := `{"house_id": "house-1", "name": "ビール", "price_per_unit": "250.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/drinks", bytes.NewBufferString(body))
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	errResp := parseAPIErrorResponse(t, w)
	if errResp["code"] != model.ErrCodeDrinkNameTaken {
		t.Errorf("code = %q, want %q", errResp["code"], model.ErrCodeDrinkNameTaken)
	}
}

// --- POST /api/drinks/:id/restock テスト ---

func TestDrinkHandler_Restock(t *testing.T) {
	svc := &mockDrinkService{
		restockFn: func(ctx context.Context, callerID, drinkID string, quantity int) (*model.DrinkType, error) {
			if quantity != 24 {
				t.Errorf("quantity = %d, want 24", quantity)
			}
			return &model.DrinkType{
				ID:                drinkID,
				Name:              "ビール",
				PricePerUnit:      decimal.RequireFromString("250.00"),
				LowStockThreshold: 6,
				CurrentStock:      27,
			}, nil
		},
	}

	h := NewDrinkHandler(svc)

	body := `{"quantity": 24}`
	req := httptest.NewRequest(http.MethodPost, "/api/drinks/drink-1/restock", bytes.NewBufferString(body))
	req = withUserID(req, "user-1")
	req = withChiURLParam(req, "id", "drink-1")
	w := httptest.NewRecorder()

	h.Restock(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp drinkResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CurrentStock != 27 {
		t.Errorf("current_stock = %d, want 27", resp.CurrentStock)
	}
}

func TestDrinkHandler_Restock_InvalidQuantity(t *testing.T) {
	svc := &mockDrinkService{
		restockFn: func(ctx context.Context, callerID, drinkID string, quantity int) (*model.DrinkType, error) {
			return nil, model.NewInvalidQuantityError(quantity)
		},
	}

	h := NewDrinkHandler(svc)

	body := `{"quantity": -3}`
	req := httptest.NewRequest(http.MethodPost, "/api/drinks/drink-1/restock", bytes.NewBufferString(body))
	req = withUserID(req, "user-1")
	req = withChiURLParam(req, "id", "drink-1")
	w := httptest.NewRecorder()

	h.Restock(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	errResp := parseAPIErrorResponse(t, w)
	if errResp["code"] != model.ErrCodeInvalidQuantity {
		t.Errorf("code = %q, want %q", errResp["code"], model.ErrCodeInvalidQuantity)
	}
}

// --- GET /api/houses/:id/shopping-list テスト ---

func TestDrinkHandler_ShoppingList(t *testing.T) {
	svc := &mockDrinkService{
		shoppingListFn: func(ctx context.Context, callerID, houseID string) ([]*model.DrinkType, error) {
			if houseID != "house-1" {
				t.Errorf("houseID = %q, want %q", houseID, "house-1")
			}
			return []*model.DrinkType{
				{
					ID:                "drink-1",
					Name:              "ビール",
					PricePerUnit:      decimal.RequireFromString("250.00"),
					LowStockThreshold: 6,
					CurrentStock:      2,
				},
			}, nil
		},
	}

	h := NewDrinkHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/houses/house-1/shopping-list", nil)
	req = withUserID(req, "user-1")
	req = withChiURLParam(req, "id", "house-1")
	w := httptest.NewRecorder()

	h.ShoppingList(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []drinkResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("len(resp) = %d, want 1", len(resp))
	}
	if !resp[0].IsLowStock {
		t.Error("is_low_stock = false, want true")
	}
}

// --- GET /api/drinks/:id テスト ---

func TestDrinkHandler_Get_NotFound(t *testing.T) {
	svc := &mockDrinkService{
		getDrinkFn: func(ctx context.Context, callerID, drinkID string) (*model.DrinkType, error) {
			return nil, model.NewDrinkNotFoundError(drinkID)
		},
	}

	h := NewDrinkHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/drinks/drink-x", nil)
	req = withUserID(req, "outsider")
	req = withChiURLParam(req, "id", "drink-x")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	errResp := parseAPIErrorResponse(t, w)
	if errResp["code"] != model.ErrCodeDrinkNotFound {
		t.Errorf("code = %q, want %q", errResp["code"], model.ErrCodeDrinkNotFound)
	}
}
