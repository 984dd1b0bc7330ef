package session

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/plan"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/storage"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	st, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(st)
	s.LoadKnowledgeBase("") // 埋め込み CSV
	return s
}

func stageTestPlan(t *testing.T, s *Session) {
	t.Helper()
	header := plan.Header{RestaurantName: "テスト食堂", Preparer: "山田", Date: "2024-08-01"}
	if err := s.Plans.StageClassification(header, []string{"からあげ", "サラダ"}, nil); err != nil {
		t.Fatal(err)
	}
}

// TestSaveLoadState 保存と復元
func TestSaveLoadState(t *testing.T) {
	st, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	s1 := New(st)
	s1.LoadKnowledgeBase("")
	stageTestPlan(t, s1)
	r := s1.Records.AddRecord("2024-08-01", "夏祭り", "山田")
	s1.Records.SetCheckStatus(r.ID, model.ItemHandwashing, model.StatusGood)

	if err := s1.SaveState(); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	// 同じストレージから別セッションで復元
	s2 := New(st)
	s2.LoadKnowledgeBase("")
	if err := s2.LoadState(); err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}

	if s2.Plans.Plan().RestaurantName != "テスト食堂" {
		t.Errorf("restaurantName = %s", s2.Plans.Plan().RestaurantName)
	}
	got, ok := s2.Records.Get(r.ID)
	if !ok {
		t.Fatal("record missing after reload")
	}
	if got.Checks[model.ItemHandwashing].Status != model.StatusGood {
		t.Error("check status lost after reload")
	}
}

// TestBundleRoundTrip エクスポート → 全消去 → インポート で深い等価
func TestBundleRoundTrip(t *testing.T) {
	s := newTestSession(t)
	stageTestPlan(t, s)
	r := s.Records.AddRecord("2024-08-01", "夏祭り", "山田")
	s.Records.SetTemperature(r.ID, model.ItemGroup1, "8.5")
	s.Records.SetText(r.ID, model.FieldSpecialNotes, "特になし")

	wantPlan := s.Plans.Plan()
	wantRecords := s.Records.Records()

	bundle, err := s.ExportBundle()
	if err != nil {
		t.Fatalf("ExportBundle failed: %v", err)
	}
	data, err := MarshalBundle(bundle)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.ClearAll(); err != nil {
		t.Fatal(err)
	}
	if s.Plans.Plan().HasClassification() || s.Records.Count() != 0 {
		t.Fatal("state should be empty after ClearAll")
	}

	if err := s.ImportBundle(data); err != nil {
		t.Fatalf("ImportBundle failed: %v", err)
	}

	if !reflect.DeepEqual(s.Plans.Plan(), wantPlan) {
		t.Errorf("plan mismatch after round trip:\n%+v\n%+v", s.Plans.Plan(), wantPlan)
	}
	if !reflect.DeepEqual(s.Records.Records(), wantRecords) {
		t.Errorf("records mismatch after round trip")
	}
}

// TestImportBundleAtomic 不正なバンドルでは保存もメモリも変わらない
func TestImportBundleAtomic(t *testing.T) {
	s := newTestSession(t)
	stageTestPlan(t, s)
	if err := s.SaveState(); err != nil {
		t.Fatal(err)
	}

	err := s.ImportBundle([]byte(`{"plan":"{broken","records":"[]"}`))
	var ferr *storage.FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError, got %v", err)
	}

	if s.Plans.Plan().RestaurantName != "テスト食堂" {
		t.Error("in-memory plan mutated by failed import")
	}
	v, _ := s.Storage.Get(storage.KeyPlan)
	var check map[string]interface{}
	if err := json.Unmarshal([]byte(v), &check); err != nil {
		t.Errorf("persisted plan corrupted: %v", err)
	}
}

// TestDegradedWithoutKnowledgeBase 参照データ未読み込みでも動く
func TestDegradedWithoutKnowledgeBase(t *testing.T) {
	st, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(st) // LoadKnowledgeBase を呼ばない

	got := s.Classifier.Classify("からあげ")
	if got.Group != model.GroupRetail {
		t.Errorf("degraded classify = %d, want %d", got.Group, model.GroupRetail)
	}

	status := s.CurrentStatus()
	if status.MenuDictEntries != 0 {
		t.Errorf("MenuDictEntries = %d, want 0", status.MenuDictEntries)
	}
}

// TestCurrentStatus 状態サマリ
func TestCurrentStatus(t *testing.T) {
	s := newTestSession(t)

	status := s.CurrentStatus()
	if status.HasPlan {
		t.Error("HasPlan should be false initially")
	}
	if status.InstallID == "" {
		t.Error("InstallID should be set")
	}

	stageTestPlan(t, s)
	r := s.Records.AddRecord("2024-08-01", "", "")
	s.Records.SetCheckStatus(r.ID, model.ItemCoolerTemp, model.StatusBad)

	status = s.CurrentStatus()
	if !status.HasPlan {
		t.Error("HasPlan should be true")
	}
	if status.RecordCount != 1 {
		t.Errorf("RecordCount = %d, want 1", status.RecordCount)
	}
	if !status.NeedsAttentionAny {
		t.Error("NeedsAttentionAny should be true")
	}
}

// TestReplaceKnowledgeBaseConcurrentReads 参照データの非同期差し替えと
// HTTP アダプタ側の読み取りが同時に走っても安全であること（-race で検出）。
func TestReplaceKnowledgeBaseConcurrentReads(t *testing.T) {
	s := newTestSession(t)
	stageTestPlan(t, s)
	s.Records.AddRecord("2024-08-10", "夏祭り", "佐藤")

	k := s.KB()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			s.ReplaceKnowledgeBase(k)
		}
	}()

	for i := 0; i < 200; i++ {
		_ = s.CurrentStatus()
		_ = s.KB()
		_ = s.Projector.RecordMatrix()
		_ = s.Projector.PlanSummaryRows()
	}
	<-done

	if got := s.CurrentStatus().MenuDictEntries; got == 0 {
		t.Errorf("MenuDictEntries = %d, want > 0", got)
	}
}

// TestImportBundleWrongShape JSON としては有効でも形の合わないデータは
// 保存前に弾かれ、保存データもメモリも変わらない
func TestImportBundleWrongShape(t *testing.T) {
	s := newTestSession(t)
	stageTestPlan(t, s)
	if err := s.SaveState(); err != nil {
		t.Fatal(err)
	}
	before, _ := s.Storage.Get(storage.KeyPlan)

	// "123" は有効な JSON だが計画の形ではない
	err := s.ImportBundle([]byte(`{"plan":"123","records":"[]"}`))
	var ferr *storage.FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError, got %v", err)
	}

	after, _ := s.Storage.Get(storage.KeyPlan)
	if after != before {
		t.Error("persisted plan overwritten by rejected import")
	}
	if s.Plans.Plan().RestaurantName != "テスト食堂" {
		t.Error("in-memory plan mutated by rejected import")
	}
}
