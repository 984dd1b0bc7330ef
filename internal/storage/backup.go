package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// FormatError バックアップファイルの形式エラー。保存データは変更されていない。
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}

// Bundle データ引継ぎ用のバックアップ1件。plan と records はそれぞれ
// 独立した JSON 文字列として格納する（ブラウザ版と同じ形式）。
type Bundle struct {
	Plan       string `json:"plan"`
	Records    string `json:"records"`
	ExportedAt string `json:"exportedAt"` // ISO-8601
}

// ExportBundle 現在の保存データをバックアップとして取り出す。
// 未保存のキーは空の JSON（{} / []）で埋める。
func (s *Store) ExportBundle() (*Bundle, error) {
	planData, err := s.Get(KeyPlan)
	if err != nil {
		return nil, err
	}
	recordsData, err := s.Get(KeyRecords)
	if err != nil {
		return nil, err
	}

	if planData == "" {
		planData = "{}"
	}
	if recordsData == "" {
		recordsData = "[]"
	}

	return &Bundle{
		Plan:       planData,
		Records:    recordsData,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// ParseBundle バックアップを検証して plan と records の JSON 文字列を
// 取り出す。保存データには触れない。plan と records の両方が文字列で、
// かつそれぞれが JSON として解釈できなければ FormatError。
func ParseBundle(data []byte) (planData, recordsData string, err error) {
	var raw struct {
		Plan    *string `json:"plan"`
		Records *string `json:"records"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", "", &FormatError{Message: fmt.Sprintf("有効なJSONファイルではありません: %v", err)}
	}
	if raw.Plan == nil || raw.Records == nil {
		return "", "", &FormatError{Message: "ファイルの形式が正しくありません（planまたはrecordsキーが見つかりません）"}
	}
	if !json.Valid([]byte(*raw.Plan)) {
		return "", "", &FormatError{Message: "計画データの形式が無効です"}
	}
	if !json.Valid([]byte(*raw.Records)) {
		return "", "", &FormatError{Message: "記録データの形式が無効です"}
	}
	return *raw.Plan, *raw.Records, nil
}

// ImportBundle バックアップから復元する。検証に失敗した場合は
// FormatError を返し、どちらのキーにも書き込まない。
func (s *Store) ImportBundle(data []byte) error {
	planData, recordsData, err := ParseBundle(data)
	if err != nil {
		return err
	}
	return s.SetBoth(planData, recordsData)
}
