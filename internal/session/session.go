package session

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/classifier"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/kb"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/plan"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/record"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/storage"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/view"
)

// Session 1利用者分の状態一式。計画・記録・分類器・射影・永続化を束ね、
// アンビエントなシングルトンを持たずに main から配線する。
type Session struct {
	Storage    *storage.Store
	Classifier *classifier.Classifier
	Plans      *plan.Store
	Records    *record.Store
	Projector  *view.Projector

	// 参照データは起動後に非同期で差し替わる
	kbMu sync.RWMutex
	kb   *kb.KnowledgeBase
}

// New 空の参照データで開始するセッション。参照データは LoadKnowledgeBase の
// 完了までは空のままで、分類はすべて物品販売(3)へ縮退する。
func New(st *storage.Store) *Session {
	empty := kb.Empty()
	c := classifier.New()
	plans := plan.NewStore(empty, c)
	records := record.NewStore()

	return &Session{
		Storage:    st,
		Classifier: c,
		Plans:      plans,
		Records:    records,
		Projector:  view.New(plans, records, empty),
		kb:         empty,
	}
}

// LoadKnowledgeBase 参照データ（CSV）を読み込んで各コンポーネントへ配る。
// 読み込み失敗は致命的ではなく、空の参照データのまま続行する。
func (s *Session) LoadKnowledgeBase(dir string) {
	k, err := kb.Load(dir)
	if err != nil {
		log.Printf("参照データの読み込み失敗（空のまま続行します）: %v", err)
		return
	}
	s.ReplaceKnowledgeBase(k)
}

// ReplaceKnowledgeBase 読み込み済みの参照データを各コンポーネントへ配る
func (s *Session) ReplaceKnowledgeBase(k *kb.KnowledgeBase) {
	s.kbMu.Lock()
	s.kb = k
	s.kbMu.Unlock()

	s.Classifier.SetDictionary(k.MenuDict)
	s.Plans.SetKnowledgeBase(k)
	s.Projector.SetKnowledgeBase(k)
}

// KB 現在の参照データ
func (s *Session) KB() *kb.KnowledgeBase {
	s.kbMu.RLock()
	defer s.kbMu.RUnlock()
	return s.kb
}

// LoadState 保存データから計画と記録を復元する
func (s *Session) LoadState() error {
	planData, err := s.Storage.Get(storage.KeyPlan)
	if err != nil {
		return err
	}
	if err := s.Plans.Deserialize(planData); err != nil {
		return err
	}

	recordsData, err := s.Storage.Get(storage.KeyRecords)
	if err != nil {
		return err
	}
	return s.Records.Deserialize(recordsData)
}

// SaveState 計画と記録を保存する。失敗してもメモリ上の状態は壊れない。
func (s *Session) SaveState() error {
	planData, err := s.Plans.Serialize()
	if err != nil {
		return err
	}
	recordsData, err := s.Records.Serialize()
	if err != nil {
		return err
	}
	return s.Storage.SetBoth(planData, recordsData)
}

// ExportBundle 現在の状態を保存してからバックアップとして取り出す
func (s *Session) ExportBundle() (*storage.Bundle, error) {
	if err := s.SaveState(); err != nil {
		return nil, fmt.Errorf("バックアップ前の保存失敗: %w", err)
	}
	return s.Storage.ExportBundle()
}

// ImportBundle バックアップから復元する。形式検証の後、使い捨ての
// ストアへの読み込みで中身の形まで確かめてから保存データを上書きする。
// どの段階で失敗しても保存データとメモリ上の状態は変わらない。
func (s *Session) ImportBundle(data []byte) error {
	planData, recordsData, err := storage.ParseBundle(data)
	if err != nil {
		return err
	}

	// 形の合わない JSON（例: ただの数値）をここで弾く
	if err := plan.NewStore(s.KB(), s.Classifier).Deserialize(planData); err != nil {
		return &storage.FormatError{Message: fmt.Sprintf("計画データの形式が無効です: %v", err)}
	}
	if err := record.NewStore().Deserialize(recordsData); err != nil {
		return &storage.FormatError{Message: fmt.Sprintf("記録データの形式が無効です: %v", err)}
	}

	if err := s.Storage.SetBoth(planData, recordsData); err != nil {
		return err
	}
	return s.LoadState()
}

// ClearAll 保存データとメモリ上の状態をすべて消す
func (s *Session) ClearAll() error {
	if err := s.Storage.ClearAll(); err != nil {
		return err
	}
	s.Plans.Clear()
	s.Records.Clear()
	return nil
}

// Status 状態表示用のサマリ
type Status struct {
	InstallID         string `json:"installId"`
	HasPlan           bool   `json:"hasPlan"`
	RecordCount       int    `json:"recordCount"`
	MenuDictEntries   int    `json:"menuDictEntries"`
	NeedsAttentionAny bool   `json:"needsAttentionAny"`
}

// CurrentStatus 現在のセッション状態
func (s *Session) CurrentStatus() Status {
	return Status{
		InstallID:         s.Storage.InstallID(),
		HasPlan:           s.Plans.Plan().HasClassification(),
		RecordCount:       s.Records.Count(),
		MenuDictEntries:   len(s.KB().MenuDict),
		NeedsAttentionAny: s.Records.AnyNeedsAttention(),
	}
}

// MarshalBundle バックアップをダウンロード用の JSON バイト列にする
func MarshalBundle(b *storage.Bundle) ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}
