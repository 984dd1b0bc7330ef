package kb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"
)

// TestLoadEmbedded 埋め込み CSV の読み込み
func TestLoadEmbedded(t *testing.T) {
	k, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(k.MenuDict) == 0 {
		t.Fatal("MenuDict should not be empty")
	}
	if len(k.GeneralItems) != 6 {
		t.Errorf("GeneralItems = %d, want 6", len(k.GeneralItems))
	}
	if len(k.CriticalItems) != 3 {
		t.Errorf("CriticalItems = %d, want 3", len(k.CriticalItems))
	}

	// 先頭エントリの型付けを確認
	first := k.MenuDict[0]
	if first.CanonicalName != "からあげ" {
		t.Errorf("first menu = %s, want からあげ", first.CanonicalName)
	}
	if first.Group != model.GroupHeated {
		t.Errorf("first menu group = %d, want %d", first.Group, model.GroupHeated)
	}
	if len(first.Synonyms) != 4 {
		t.Errorf("first menu synonyms = %d, want 4", len(first.Synonyms))
	}
}

// TestLoadDirOverride データディレクトリの CSV が優先される
func TestLoadDirOverride(t *testing.T) {
	dir := t.TempDir()
	csvData := "menu_name,synonyms,group,alert\nテスト品目,,1,注意書き\n"
	if err := os.WriteFile(filepath.Join(dir, "menu_dict.csv"), []byte(csvData), 0644); err != nil {
		t.Fatal(err)
	}

	k, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(k.MenuDict) != 1 {
		t.Fatalf("MenuDict = %d entries, want 1", len(k.MenuDict))
	}
	if k.MenuDict[0].CanonicalName != "テスト品目" {
		t.Errorf("menu = %s, want テスト品目", k.MenuDict[0].CanonicalName)
	}
	if k.MenuDict[0].Alert != "注意書き" {
		t.Errorf("alert = %q, want 注意書き", k.MenuDict[0].Alert)
	}
	// 上書きしていないテーブルは埋め込み版のまま
	if len(k.GeneralItems) != 6 {
		t.Errorf("GeneralItems = %d, want 6", len(k.GeneralItems))
	}
}

// TestParseGroupDefaults 分類列の既定値
func TestParseGroupDefaults(t *testing.T) {
	tests := []struct {
		input string
		want  model.Group
	}{
		{"1", model.GroupNonHeated},
		{"2", model.GroupHeated},
		{"3", model.GroupRetail},
		{"", model.GroupRetail},
		{"abc", model.GroupRetail},
		{"9", model.GroupRetail},
	}
	for _, tt := range tests {
		if got := parseGroup(tt.input); got != tt.want {
			t.Errorf("parseGroup(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

// TestParseCSVWithBOM BOM 付き CSV も読める
func TestParseCSVWithBOM(t *testing.T) {
	data := []byte("\xef\xbb\xbfmenu_name,group\nサラダ,1\n")
	rows, err := parseCSV(data)
	if err != nil {
		t.Fatalf("parseCSV failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0]["menu_name"] != "サラダ" {
		t.Errorf("menu_name = %q, want サラダ", rows[0]["menu_name"])
	}
}

// TestKnowledgeBaseLookups ID・分類での引き当て
func TestKnowledgeBaseLookups(t *testing.T) {
	k, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	item, ok := k.GeneralItem(model.ItemHandwashing)
	if !ok {
		t.Fatal("GeneralItem(handwashing) not found")
	}
	if item.Name == "" {
		t.Error("GeneralItem name should not be empty")
	}

	cc, ok := k.CriticalItem(model.GroupHeated)
	if !ok {
		t.Fatal("CriticalItem(group2) not found")
	}
	if cc.Principle == "" {
		t.Error("CriticalItem principle should not be empty")
	}

	if _, ok := k.GeneralItem("unknown"); ok {
		t.Error("unknown id should not be found")
	}
}
