package payload

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyTitle はタイトルのないペイロードを受信したことを表す。
var ErrEmptyTitle = errors.New("ペイロードにタイトルがありません")

// Encode はペイロードをJSONにシリアライズする。
func Encode(p Push) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("ペイロードのシリアライズに失敗: %w", err)
	}
	return data, nil
}

// Decode は受信したJSONをペイロードにデシリアライズする。
func Decode(data []byte) (*Push, error) {
	var p Push
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("ペイロードのデシリアライズに失敗: %w", err)
	}
	if p.Title == "" {
		return nil, ErrEmptyTitle
	}
	return &p, nil
}
