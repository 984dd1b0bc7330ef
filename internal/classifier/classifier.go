package classifier

import (
	"math"
	"sync"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/kb"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/text"
)

// prefixRatio 先頭一致とみなす割合。minLen = ceil(0.7 × 長い方の文字数) + 1
const prefixRatio = 0.7

// Result 1品目の判定結果
type Result struct {
	Group model.Group `json:"group"`
	Alert string      `json:"alert,omitempty"`
}

// Alert 確認ダイアログ向けの注意書き（品目名と注意文のペア）
type Alert struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Classifier メニュー名をあいまい一致で取扱い分類へ割り当てる。
//
// 辞書は表の並び順に走査し、最初に一致したエントリが勝つ。編集距離ではなく
// 先頭一致ヒューリスティックのため、正規形の先頭が重なる別エントリが先に
// あると誤分類しうる。これは観測済みの挙動として意図的に保持している
// （辞書の並び順が分類結果の一部になっている）。
type Classifier struct {
	mu   sync.RWMutex
	dict []kb.MenuDictionaryEntry
}

// New 辞書未設定（空）の分類器。参照データの読み込み完了まで
// すべて物品販売(3)・注意書きなしとして振る舞う。
func New() *Classifier {
	return &Classifier{}
}

// SetDictionary 参照データ読み込み完了後に一度だけ呼ぶ
func (c *Classifier) SetDictionary(entries []kb.MenuDictionaryEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dict = entries
}

// Classify メニュー名1件を判定する。どのエントリにも一致しなければ
// 物品販売(3)・注意書きなし。
func (c *Classifier) Classify(name string) Result {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query := text.Normalize(name)
	for _, entry := range c.dict {
		candidates := append([]string{entry.CanonicalName}, entry.Synonyms...)
		for _, cand := range candidates {
			if cand == "" {
				continue
			}
			if prefixMatch(query, text.Normalize(cand)) {
				return Result{Group: entry.Group, Alert: entry.Alert}
			}
		}
	}
	return Result{Group: model.GroupRetail}
}

// ClassifyBatch 各品目を独立に判定し、注意書き付きエントリに一致した
// 品目は確認表示用に {品目名, 注意文} を収集する。計画自体は変更しない。
func (c *Classifier) ClassifyBatch(names []string) ([]model.ClassifiedMenuItem, []Alert) {
	items := make([]model.ClassifiedMenuItem, 0, len(names))
	var alerts []Alert
	for _, name := range names {
		r := c.Classify(name)
		items = append(items, model.ClassifiedMenuItem{Name: name, Group: r.Group})
		if r.Alert != "" {
			alerts = append(alerts, Alert{Name: name, Message: r.Alert})
		}
	}
	return items, alerts
}

// prefixMatch 正規化済みの2文字列の先頭 minLen 文字が等しいか。
// 文字数が minLen に満たない側は全体を比較に使う。
func prefixMatch(a, b string) bool {
	ra := []rune(a)
	rb := []rune(b)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	minLen := int(math.Ceil(float64(longer)*prefixRatio)) + 1
	return leading(ra, minLen) == leading(rb, minLen)
}

func leading(r []rune, n int) string {
	if len(r) < n {
		return string(r)
	}
	return string(r[:n])
}
