package kb

import "github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"

// MenuDictionaryEntry メニュー辞書の1行（読み取り専用の参照データ）
type MenuDictionaryEntry struct {
	CanonicalName string      `json:"menuName"`
	Synonyms      []string    `json:"synonyms"`
	Group         model.Group `json:"group"`
	Alert         string      `json:"alert,omitempty"`
}

// GeneralHygieneItem 一般衛生管理項目の定義
type GeneralHygieneItem struct {
	ID                 string `json:"id"`
	Name               string `json:"itemName"`
	Why                string `json:"why"`
	How                string `json:"how"`
	DefaultWhen        string `json:"defaultWhen"`
	DefaultResponsible string `json:"defaultResponsible"`
	DefaultResponse    string `json:"defaultResponse"`
}

// CriticalControlItem 重要管理項目（分類ごと）の定義
type CriticalControlItem struct {
	Group           model.Group `json:"group"`
	Title           string      `json:"title"`
	Principle       string      `json:"principle"`
	Why             string      `json:"why"`
	How             string      `json:"how"`
	DefaultWhen     string      `json:"defaultWhen"`
	DefaultResponse string      `json:"defaultResponse"`
}

// KnowledgeBase 起動時に一度だけ読み込む3つの参照テーブル
type KnowledgeBase struct {
	MenuDict      []MenuDictionaryEntry
	GeneralItems  []GeneralHygieneItem
	CriticalItems []CriticalControlItem
}

// Empty 空の参照データ（読み込み失敗時の縮退運転用）
func Empty() *KnowledgeBase {
	return &KnowledgeBase{}
}

// GeneralItem ID で一般衛生項目を引く
func (k *KnowledgeBase) GeneralItem(id string) (GeneralHygieneItem, bool) {
	for _, item := range k.GeneralItems {
		if item.ID == id {
			return item, true
		}
	}
	return GeneralHygieneItem{}, false
}

// CriticalItem 分類で重要管理項目を引く
func (k *KnowledgeBase) CriticalItem(g model.Group) (CriticalControlItem, bool) {
	for _, item := range k.CriticalItems {
		if item.Group == g {
			return item, true
		}
	}
	return CriticalControlItem{}, false
}
