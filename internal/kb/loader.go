package kb

import (
	"bytes"
	"embed"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"
)

//go:embed assets/*.csv
var assets embed.FS

const (
	menuDictFile = "menu_dict.csv"
	generalFile  = "general_hygiene.csv"
	criticalFile = "critical_control.csv"
)

// Load 3つの参照テーブルを読み込む。
// dir に同名の CSV があればそちらを優先し（保健所側での差し替え用）、
// 無ければ埋め込みの CSV を使う。失敗した場合でも呼び出し側は Empty() で
// 縮退運転できるため、ここでは読めたところまでを返さずエラーにする。
func Load(dir string) (*KnowledgeBase, error) {
	menuRows, err := readTable(dir, menuDictFile)
	if err != nil {
		return nil, fmt.Errorf("メニュー辞書の読み込み失敗: %w", err)
	}
	generalRows, err := readTable(dir, generalFile)
	if err != nil {
		return nil, fmt.Errorf("一般衛生項目の読み込み失敗: %w", err)
	}
	criticalRows, err := readTable(dir, criticalFile)
	if err != nil {
		return nil, fmt.Errorf("重要管理項目の読み込み失敗: %w", err)
	}

	k := &KnowledgeBase{}
	for _, row := range menuRows {
		name := strings.TrimSpace(row["menu_name"])
		if name == "" {
			continue
		}
		k.MenuDict = append(k.MenuDict, MenuDictionaryEntry{
			CanonicalName: name,
			Synonyms:      splitSynonyms(row["synonyms"]),
			Group:         parseGroup(row["group"]),
			Alert:         strings.TrimSpace(row["alert"]),
		})
	}
	for _, row := range generalRows {
		name := strings.TrimSpace(row["item_name"])
		if name == "" {
			continue
		}
		// id 列が無い行は項目名を ID として扱う
		id := strings.TrimSpace(row["id"])
		if id == "" {
			id = name
		}
		k.GeneralItems = append(k.GeneralItems, GeneralHygieneItem{
			ID:                 id,
			Name:               name,
			Why:                strings.TrimSpace(row["why"]),
			How:                strings.TrimSpace(row["how"]),
			DefaultWhen:        strings.TrimSpace(row["default_when"]),
			DefaultResponsible: strings.TrimSpace(row["default_responsible"]),
			DefaultResponse:    strings.TrimSpace(row["default_response"]),
		})
	}
	for _, row := range criticalRows {
		g := model.Group(0)
		if n, err := strconv.Atoi(strings.TrimSpace(row["group"])); err == nil {
			g = model.Group(n)
		}
		if !g.Valid() {
			continue
		}
		k.CriticalItems = append(k.CriticalItems, CriticalControlItem{
			Group:           g,
			Title:           strings.TrimSpace(row["title"]),
			Principle:       strings.TrimSpace(row["principle"]),
			Why:             strings.TrimSpace(row["why"]),
			How:             strings.TrimSpace(row["how"]),
			DefaultWhen:     strings.TrimSpace(row["default_when"]),
			DefaultResponse: strings.TrimSpace(row["default_response"]),
		})
	}
	return k, nil
}

// readTable 列名→値 のマップ列として CSV を読む
func readTable(dir, name string) ([]map[string]string, error) {
	var data []byte
	var err error
	if dir != "" {
		path := filepath.Join(dir, name)
		if _, statErr := os.Stat(path); statErr == nil {
			data, err = os.ReadFile(path)
			if err != nil {
				return nil, err
			}
		}
	}
	if data == nil {
		data, err = assets.ReadFile("assets/" + name)
		if err != nil {
			return nil, err
		}
	}
	return parseCSV(data)
}

func parseCSV(data []byte) ([]map[string]string, error) {
	// Excel 保存の CSV は BOM 付きのことがある
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var out []map[string]string
	for _, row := range rows[1:] {
		empty := true
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		m := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				m[h] = strings.TrimSpace(row[i])
			} else {
				m[h] = ""
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// parseGroup 分類列の値。数値でない・範囲外は物品販売(3)扱い
func parseGroup(s string) model.Group {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return model.GroupRetail
	}
	g := model.Group(n)
	if !g.Valid() {
		return model.GroupRetail
	}
	return g
}

func splitSynonyms(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
