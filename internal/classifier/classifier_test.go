package classifier

import (
	"testing"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/kb"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"
)

func testDict() []kb.MenuDictionaryEntry {
	return []kb.MenuDictionaryEntry{
		{CanonicalName: "からあげ", Synonyms: []string{"から揚げ", "唐揚げ"}, Group: model.GroupHeated},
		{CanonicalName: "サラダ", Synonyms: []string{"さらだ"}, Group: model.GroupNonHeated},
		{CanonicalName: "刺身", Synonyms: []string{"さしみ"}, Group: model.GroupNonHeated, Alert: "保健所へ相談してください。"},
		{CanonicalName: "ラムネ", Group: model.GroupRetail},
	}
}

// TestClassify 辞書一致の基本ケース
func TestClassify(t *testing.T) {
	c := New()
	c.SetDictionary(testDict())

	tests := []struct {
		name      string
		input     string
		wantGroup model.Group
		wantAlert bool
	}{
		{"正式名で一致", "からあげ", model.GroupHeated, false},
		{"同義語で一致", "から揚げ", model.GroupHeated, false},
		{"カタカナ表記でも一致", "カラアゲ", model.GroupHeated, false},
		{"半角カナでも一致", "ｶﾗｱｹﾞ", model.GroupHeated, false},
		{"注意書き付きエントリ", "刺身", model.GroupNonHeated, true},
		{"辞書に無い品目は物品販売", "未知のメニュー", model.GroupRetail, false},
		{"前後空白は無視", "  サラダ ", model.GroupNonHeated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.input)
			if got.Group != tt.wantGroup {
				t.Errorf("Classify(%q).Group = %d, want %d", tt.input, got.Group, tt.wantGroup)
			}
			if (got.Alert != "") != tt.wantAlert {
				t.Errorf("Classify(%q).Alert = %q, wantAlert=%v", tt.input, got.Alert, tt.wantAlert)
			}
		})
	}
}

// TestClassifyEmptyDictionary 辞書未読み込み時はすべて物品販売
func TestClassifyEmptyDictionary(t *testing.T) {
	c := New()

	got := c.Classify("からあげ")
	if got.Group != model.GroupRetail {
		t.Errorf("empty dict: Group = %d, want %d", got.Group, model.GroupRetail)
	}
	if got.Alert != "" {
		t.Errorf("empty dict: Alert = %q, want empty", got.Alert)
	}
}

// TestClassifyTableOrder 表の並び順で先のエントリが勝つ
func TestClassifyTableOrder(t *testing.T) {
	c := New()
	c.SetDictionary([]kb.MenuDictionaryEntry{
		{CanonicalName: "やきそば", Group: model.GroupHeated},
		{CanonicalName: "やきそばパン", Group: model.GroupNonHeated},
	})

	// 完全一致する先のエントリが勝ち、後のエントリには届かない
	got := c.Classify("やきそば")
	if got.Group != model.GroupHeated {
		t.Errorf("Group = %d, want %d", got.Group, model.GroupHeated)
	}
}

// TestClassifyPrefixHeuristic 先頭一致ヒューリスティックの境界
func TestClassifyPrefixHeuristic(t *testing.T) {
	c := New()
	c.SetDictionary([]kb.MenuDictionaryEntry{
		{CanonicalName: "フライドポテト", Synonyms: []string{"ポテト"}, Group: model.GroupHeated},
	})

	// 長さ7に対し minLen = ceil(4.9)+1 = 6。先頭6文字一致なら揺れを許す
	if got := c.Classify("フライドポテそ"); got.Group != model.GroupHeated {
		t.Errorf("near-match Group = %d, want %d", got.Group, model.GroupHeated)
	}
	// 全く別の名前は一致しない
	if got := c.Classify("たいやき"); got.Group != model.GroupRetail {
		t.Errorf("no-match Group = %d, want %d", got.Group, model.GroupRetail)
	}
}

// TestClassifyBatch 一括判定と注意書きの収集
func TestClassifyBatch(t *testing.T) {
	c := New()
	c.SetDictionary(testDict())

	items, alerts := c.ClassifyBatch([]string{"からあげ", "刺身", "未知のメニュー"})

	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if items[0].Group != model.GroupHeated {
		t.Errorf("items[0].Group = %d, want %d", items[0].Group, model.GroupHeated)
	}
	if items[1].Group != model.GroupNonHeated {
		t.Errorf("items[1].Group = %d, want %d", items[1].Group, model.GroupNonHeated)
	}
	if items[2].Group != model.GroupRetail {
		t.Errorf("items[2].Group = %d, want %d", items[2].Group, model.GroupRetail)
	}

	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if alerts[0].Name != "刺身" {
		t.Errorf("alerts[0].Name = %s, want 刺身", alerts[0].Name)
	}
}
