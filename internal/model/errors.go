// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, house, drink, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUsernameTaken       = "USERNAME_TAKEN"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeWeakPassword        = "WEAK_PASSWORD"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeHouseNotFound       = "HOUSE_NOT_FOUND"
	ErrCodeMemberLimit         = "MEMBER_LIMIT"
	ErrCodeDrinkNotFound       = "DRINK_NOT_FOUND"
	ErrCodeDrinkNameTaken      = "DRINK_NAME_TAKEN"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeConsumptionNotFound = "CONSUMPTION_NOT_FOUND"
)

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("このユーザー名は既に使用されています: %s", username),
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "登録済みのアカウントでログインしてください。",
	}
}

// NewWeakPasswordError はパスワード強度不足エラーを生成する。
func NewWeakPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  "パスワードは8文字以上で指定してください。",
		Category: "validation",
		Action:   "より長いパスワードを設定してください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// ユーザーの存在有無を区別せず、常に同じメッセージを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewHouseNotFoundError はハウス未検出エラーを生成する。
// 呼び出し元がメンバーでないハウスへのアクセスにも同じエラーを返し、
// ハウスの存在有無を漏らさない。
func NewHouseNotFoundError(houseID string) *APIError {
	return &APIError{
		Code:     ErrCodeHouseNotFound,
		Message:  fmt.Sprintf("指定されたハウスが見つかりません: %s", houseID),
		Category: "house",
		Action:   "所属しているハウスのIDを確認してください。",
	}
}

// NewMemberLimitError はメンバー数上限エラーを生成する。
func NewMemberLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeMemberLimit,
		Message:  fmt.Sprintf("ハウスのメンバーは最大%d人までです。", MaxHouseMembers),
		Category: "validation",
		Action:   "メンバー数を減らしてから再度お試しください。",
	}
}

// NewDrinkNotFoundError はドリンク未検出エラーを生成する。
// メンバー外ハウスのドリンクへのアクセスにも同じエラーを返す。
func NewDrinkNotFoundError(drinkID string) *APIError {
	return &APIError{
		Code:     ErrCodeDrinkNotFound,
		Message:  fmt.Sprintf("指定されたドリンクが見つかりません: %s", drinkID),
		Category: "drink",
		Action:   "ドリンクIDを確認してください。",
	}
}

// NewDrinkNameTakenError はハウス内でのドリンク名重複エラーを生成する。
func NewDrinkNameTakenError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDrinkNameTaken,
		Message:  fmt.Sprintf("このハウスには同名のドリンクが既に登録されています: %s", name),
		Category: "drink",
		Action:   "別の名前を指定するか、既存のドリンクを編集してください。",
	}
}

// NewInvalidQuantityError は補充数量が正でない場合のエラーを生成する。
func NewInvalidQuantityError(quantity int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidQuantity,
		Message:  fmt.Sprintf("数量は正の整数で指定してください: %d", quantity),
		Category: "validation",
		Action:   "1以上の数量を指定してください。",
	}
}

// NewConsumptionNotFoundError は消費記録未検出エラーを生成する。
func NewConsumptionNotFoundError(consumptionID string) *APIError {
	return &APIError{
		Code:     ErrCodeConsumptionNotFound,
		Message:  fmt.Sprintf("指定された消費記録が見つかりません: %s", consumptionID),
		Category: "drink",
		Action:   "消費記録のIDを確認してください。",
	}
}
