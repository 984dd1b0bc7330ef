package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"
)

// tempThreshold 非加熱品の保管温度基準（℃）。超えたら不良。
const tempThreshold = 10.0

// PreconditionError 操作の前提条件が満たされていない。状態は変更されていない。
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// Store 営業日ごとの衛生管理記録の集合。追加順を保持し、ID は単調増加。
// 同時書き込みは想定しない（ロックは HTTP アダプタ越しの呼び出し保護のみ）。
type Store struct {
	mu      sync.RWMutex
	records []*model.DailyRecord
	nextID  int64
}

// NewStore 空の記録ストア
func NewStore() *Store {
	return &Store{nextID: 1}
}

// AddRecord 新しい営業日の記録を追加する。全点検は未入力、自由記入欄は空。
// 同一日付の重複は許容する（警告は呼び出し側が HasDate で判断する）。
func (s *Store) AddRecord(date, eventName, checkerName string) *model.DailyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &model.DailyRecord{
		ID:          s.nextID,
		Date:        date,
		EventName:   eventName,
		Checks:      map[string]model.CheckResult{},
		CheckerName: checkerName,
	}
	s.nextID++
	s.records = append(s.records, r)
	return r.Clone()
}

// HasDate 同じ営業日の記録が既にあるか（重複警告の判断材料）
func (s *Store) HasDate(date string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.Date == date {
			return true
		}
	}
	return false
}

// LatestDefaults 直近（日付降順で先頭）の記録のイベント名とチェック者名。
// 新規追加ダイアログの初期値に使う。記録が無ければ空。
func (s *Store) LatestDefaults() (eventName, checkerName string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := s.latestLocked()
	if latest == nil {
		return "", ""
	}
	return latest.EventName, latest.CheckerName
}

// latestLocked 日付降順・同日付は追加順で先頭の記録
func (s *Store) latestLocked() *model.DailyRecord {
	if len(s.records) == 0 {
		return nil
	}
	sorted := make([]*model.DailyRecord, len(s.records))
	copy(sorted, s.records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	return sorted[0]
}

// Get ID で記録を引く（コピーを返す）
func (s *Store) Get(id int64) (*model.DailyRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.findLocked(id)
	if r == nil {
		return nil, false
	}
	return r.Clone(), true
}

// Records 全記録のコピー（追加順）
func (s *Store) Records() []*model.DailyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.DailyRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	return out
}

// Count 記録数
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// SetCheckStatus 点検セルの状態を直接設定する。未知の ID は何もしない。
func (s *Store) SetCheckStatus(id int64, itemID string, status model.CheckStatus) error {
	if !status.Valid() {
		return fmt.Errorf("不正な状態値です: %q", status)
	}
	if !isMandatoryItem(itemID) {
		return fmt.Errorf("不明な管理項目です: %s", itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findLocked(id)
	if r == nil {
		return nil
	}
	c := r.Checks[itemID]
	c.Status = status
	r.Checks[itemID] = c
	return nil
}

// SetTemperature 温度入力から状態を導出して設定する（非加熱品の行のみ）。
// 空・数値でない → 未入力、10℃超 → 不良、それ以外 → 良好。
// 手入力で選んだ状態があっても温度変更時は導出結果で上書きする（意図した優先）。
func (s *Store) SetTemperature(id int64, itemID string, value string) error {
	if !model.IsTemperatureItem(itemID) {
		return fmt.Errorf("温度入力の対象項目ではありません: %s", itemID)
	}

	value = strings.TrimSpace(value)
	status := model.StatusUnset
	if value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			if v > tempThreshold {
				status = model.StatusBad
			} else {
				status = model.StatusGood
			}
		} else {
			value = ""
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findLocked(id)
	if r == nil {
		return nil
	}
	r.Checks[itemID] = model.CheckResult{Status: status, Temperature: value}
	return nil
}

// SetText 自由記入欄の更新。確認者名はここでは書けない（ConfirmRecord 専用）。
func (s *Store) SetText(id int64, field, value string) error {
	switch field {
	case model.FieldSpecialNotes, model.FieldReviewNotes, model.FieldCheckerName:
	case model.FieldConfirmerName:
		return fmt.Errorf("確認者名は確認操作でのみ記入できます")
	default:
		return fmt.Errorf("不明な記入欄です: %s", field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findLocked(id)
	if r == nil {
		return nil
	}
	switch field {
	case model.FieldSpecialNotes:
		r.SpecialNotes = value
	case model.FieldReviewNotes:
		r.ReviewNotes = value
	case model.FieldCheckerName:
		r.CheckerName = value
	}
	return nil
}

// SetDate 記録の営業日を変更する
func (s *Store) SetDate(id int64, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.findLocked(id); r != nil {
		r.Date = date
	}
}

// SetEventName 記録のイベント名を変更する
func (s *Store) SetEventName(id int64, eventName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.findLocked(id); r != nil {
		r.EventName = eventName
	}
}

// ConfirmRecord 記録の確認（サインオフ）。9項目すべて入力済みで、
// かつ確認者名が未記入のときだけ成功し、一度だけ記入される。
// 条件を満たさない場合は PreconditionError を返し、状態は変更しない。
func (s *Store) ConfirmRecord(id int64, confirmerName string) error {
	confirmerName = strings.TrimSpace(confirmerName)
	if confirmerName == "" {
		return &PreconditionError{Message: "確認者名を入力してください"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findLocked(id)
	if r == nil {
		return &PreconditionError{Message: "記録が見つかりません"}
	}
	if r.ConfirmerName != "" {
		return &PreconditionError{Message: "この記録は確認済みです"}
	}
	if !allChecksFilledLocked(r) {
		return &PreconditionError{Message: "すべての管理項目を入力してから確認してください"}
	}
	r.ConfirmerName = confirmerName
	return nil
}

// NeedsConfirmation 9項目すべて入力済みで確認者名が未記入か
// （呼び出し側が確認ダイアログを出すタイミングの判断材料。確認自体は行わない）
func (s *Store) NeedsConfirmation(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.findLocked(id)
	if r == nil {
		return false
	}
	return allChecksFilledLocked(r) && r.ConfirmerName == ""
}

// NeedsAttention 不良の点検があるのに特記事項が未記入か
func (s *Store) NeedsAttention(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.findLocked(id)
	if r == nil {
		return false
	}
	return needsAttention(r)
}

// AnyNeedsAttention 特記事項未記入の不良記録が1件でもあるか（保存前警告用）
func (s *Store) AnyNeedsAttention() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if needsAttention(r) {
			return true
		}
	}
	return false
}

// DeleteRecord 記録を削除する。存在しない ID は何もしない
// （ID は一意で呼び出し側が管理している前提。起こらないはずの状況）。
func (s *Store) DeleteRecord(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]*model.DailyRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.ID == id {
			continue
		}
		next = append(next, r)
	}
	s.records = next
}

// AppendReview 直近（日付降順で先頭）の記録の振り返り欄へ追記する。
// 記録が無い場合は false を返す。
func (s *Store) AppendReview(text string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.latestLocked()
	if latest == nil {
		return 0, false
	}
	if latest.ReviewNotes != "" {
		latest.ReviewNotes += "\n\n"
	}
	latest.ReviewNotes += text
	return latest.ID, true
}

// Serialize 永続化表現（JSON 配列）へ変換する
func (s *Store) Serialize() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.records
	if records == nil {
		records = []*model.DailyRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("記録のシリアライズ失敗: %w", err)
	}
	return string(data), nil
}

// Deserialize 永続化表現から記録集合を丸ごと置き換える。
// 空文字は「保存データなし」として空集合に戻す。次の ID は最大 ID+1。
func (s *Store) Deserialize(blob string) error {
	var records []*model.DailyRecord
	if strings.TrimSpace(blob) != "" {
		if err := json.Unmarshal([]byte(blob), &records); err != nil {
			return fmt.Errorf("記録の読み込み失敗: %w", err)
		}
	}

	var maxID int64
	for _, r := range records {
		if r.Checks == nil {
			r.Checks = map[string]model.CheckResult{}
		}
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.nextID = maxID + 1
	return nil
}

// Clear 記録をすべて消す（ID 採番は継続する）
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

func (s *Store) findLocked(id int64) *model.DailyRecord {
	for _, r := range s.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func allChecksFilledLocked(r *model.DailyRecord) bool {
	for _, itemID := range model.MandatoryCheckItems() {
		if r.Checks[itemID].Status == model.StatusUnset {
			return false
		}
	}
	return true
}

func needsAttention(r *model.DailyRecord) bool {
	hasBad := false
	for _, c := range r.Checks {
		if c.Status == model.StatusBad {
			hasBad = true
			break
		}
	}
	return hasBad && strings.TrimSpace(r.SpecialNotes) == ""
}

func isMandatoryItem(itemID string) bool {
	for _, id := range model.MandatoryCheckItems() {
		if id == itemID {
			return true
		}
	}
	return false
}
