package plan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/classifier"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/kb"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"
)

// ValidationError 入力値の検証エラー。状態は一切変更されていない。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// 実施計画の種別
const (
	KindGeneral  = "general"  // 一般衛生管理
	KindCritical = "critical" // 重要管理
)

// Header 計画のヘッダ情報（Step1 の入力）
type Header struct {
	RestaurantName string `json:"restaurantName"`
	Preparer       string `json:"planPreparer"`
	Date           string `json:"planDate"`
}

// Store 衛生管理計画の保持と更新。計画は1セッションにつき1つで、
// 同時書き込みは想定しない（ロックは HTTP アダプタ越しの呼び出し保護のみ）。
type Store struct {
	mu         sync.RWMutex
	kb         *kb.KnowledgeBase
	classifier *classifier.Classifier
	plan       *model.HygienePlan
}

// NewStore 空の計画を持つストア
func NewStore(k *kb.KnowledgeBase, c *classifier.Classifier) *Store {
	return &Store{
		kb:         k,
		classifier: c,
		plan:       model.NewHygienePlan(),
	}
}

// SetKnowledgeBase 参照データ読み込み完了時に差し替える
func (s *Store) SetKnowledgeBase(k *kb.KnowledgeBase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kb = k
}

// Plan 現在の計画のコピー
func (s *Store) Plan() *model.HygienePlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan.Clone()
}

// StageClassification 分類確認後の計画生成。rawNames の各品目は
// overrides があればそれを、無ければ分類器の判定を使う。overrides の
// キーは送信された rawNames 内の位置で、空行を挟んでもずれない。
// 必須項目が欠けている場合は ValidationError を返し、状態は変更しない。
func (s *Store) StageClassification(header Header, rawNames []string, overrides map[int]model.Group) error {
	if strings.TrimSpace(header.RestaurantName) == "" {
		return validationErrorf("店名を入力してください")
	}
	if strings.TrimSpace(header.Preparer) == "" {
		return validationErrorf("作成者を入力してください")
	}
	if strings.TrimSpace(header.Date) == "" {
		return validationErrorf("作成日を入力してください")
	}

	var names []string
	var rawIndexes []int
	for i, raw := range rawNames {
		if v := strings.TrimSpace(raw); v != "" {
			names = append(names, v)
			rawIndexes = append(rawIndexes, i)
		}
	}
	if len(names) == 0 {
		return validationErrorf("品目を入力してください")
	}

	classification := map[model.Group][]string{
		model.GroupNonHeated: {},
		model.GroupHeated:    {},
		model.GroupRetail:    {},
	}
	for i, name := range names {
		g, ok := overrides[rawIndexes[i]]
		if !ok {
			g = s.classifier.Classify(name).Group
		}
		if !g.Valid() {
			return validationErrorf("分類の値が不正です: %d", g)
		}
		classification[g] = append(classification[g], name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan.RestaurantName = header.RestaurantName
	s.plan.Preparer = header.Preparer
	s.plan.Date = header.Date
	s.plan.RawMenuItems = names
	s.plan.Classification = classification
	return nil
}

// UpdateScheduleDetail 実施計画1項目分の更新。
// kind=general のとき id は一般衛生項目ID、kind=critical のとき id は分類番号。
// KnowledgeBase に定義されていない項目は ValidationError。
func (s *Store) UpdateScheduleDetail(kind, id string, detail model.ScheduleDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case KindGeneral:
		if _, ok := s.kb.GeneralItem(id); !ok {
			return validationErrorf("未定義の一般衛生項目です: %s", id)
		}
		s.plan.GeneralHygieneDetails[id] = detail
		return nil
	case KindCritical:
		n, err := strconv.Atoi(id)
		if err != nil {
			return validationErrorf("分類番号が不正です: %s", id)
		}
		g := model.Group(n)
		if _, ok := s.kb.CriticalItem(g); !ok {
			return validationErrorf("未定義の重要管理項目です: %s", id)
		}
		s.plan.CriticalControlDetails[g] = model.CriticalDetail{
			When:     detail.When,
			Response: detail.Response,
		}
		return nil
	default:
		return validationErrorf("不明な種別です: %s", kind)
	}
}

// EffectiveGeneralDetail 利用者入力 → 既定値 の順で解決した実施計画
func (s *Store) EffectiveGeneralDetail(id string) model.ScheduleDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effectiveGeneralLocked(id)
}

func (s *Store) effectiveGeneralLocked(id string) model.ScheduleDetail {
	d := s.plan.GeneralHygieneDetails[id]
	item, ok := s.kb.GeneralItem(id)
	if !ok {
		return d
	}
	if d.When == "" {
		d.When = item.DefaultWhen
	}
	if d.Responsible == "" {
		d.Responsible = item.DefaultResponsible
	}
	if d.Response == "" {
		d.Response = item.DefaultResponse
	}
	return d
}

// EffectiveCriticalDetail 利用者入力 → 既定値 の順で解決した実施計画
func (s *Store) EffectiveCriticalDetail(g model.Group) model.CriticalDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effectiveCriticalLocked(g)
}

func (s *Store) effectiveCriticalLocked(g model.Group) model.CriticalDetail {
	d := s.plan.CriticalControlDetails[g]
	item, ok := s.kb.CriticalItem(g)
	if !ok {
		return d
	}
	if d.When == "" {
		d.When = item.DefaultWhen
	}
	if d.Response == "" {
		d.Response = item.DefaultResponse
	}
	return d
}

// Serialize 永続化表現（JSON）へ変換する
func (s *Store) Serialize() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.Marshal(s.plan)
	if err != nil {
		return "", fmt.Errorf("計画のシリアライズ失敗: %w", err)
	}
	return string(data), nil
}

// Deserialize 永続化表現から計画を丸ごと置き換える。
// 空文字は「保存データなし」として空の計画に戻す。
func (s *Store) Deserialize(blob string) error {
	if strings.TrimSpace(blob) == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.plan = model.NewHygienePlan()
		return nil
	}

	p := model.NewHygienePlan()
	if err := json.Unmarshal([]byte(blob), p); err != nil {
		return fmt.Errorf("計画の読み込み失敗: %w", err)
	}
	if p.Classification == nil {
		p.Classification = map[model.Group][]string{}
	}
	for _, g := range model.Groups() {
		if p.Classification[g] == nil {
			p.Classification[g] = []string{}
		}
	}
	if p.GeneralHygieneDetails == nil {
		p.GeneralHygieneDetails = map[string]model.ScheduleDetail{}
	}
	if p.CriticalControlDetails == nil {
		p.CriticalControlDetails = map[model.Group]model.CriticalDetail{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = p
	return nil
}

// Clear 計画を初期状態へ戻す
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = model.NewHygienePlan()
}
