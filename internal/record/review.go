package record

import (
	"fmt"
	"strings"
	"time"
)

// MonthlyReview 月次振り返りの回答。Format で振り返り欄へ追記する
// テキストブロックに変換する。
type MonthlyReview struct {
	Month string `json:"month"` // YYYY-MM。空なら現在日時から補う

	// Q1: 記録は毎回つけられたか
	RecordsKept       bool   `json:"recordsKept"`
	RecordsKeptAction string `json:"recordsKeptAction"` // いいえの場合の対策

	// Q2: 営業中に気付いた問題点
	Problems string `json:"problems"`

	// Q3: 従業員の変更
	StaffChanged       bool   `json:"staffChanged"`
	StaffExplained     bool   `json:"staffExplained"`
	StaffExplainedDate string `json:"staffExplainedDate"`
	StaffUnderstood    bool   `json:"staffUnderstood"`

	// Q4: メニュー・工程の変更
	MenuChanged      bool   `json:"menuChanged"`
	MenuReviewed     bool   `json:"menuReviewed"`
	MenuReviewedDate string `json:"menuReviewedDate"`

	// Q5: 設備・器具の変更
	EquipmentChanged      bool   `json:"equipmentChanged"`
	EquipmentReviewed     bool   `json:"equipmentReviewed"`
	EquipmentReviewedDate string `json:"equipmentReviewedDate"`
}

// Format 振り返り欄のテキストブロックを組み立てる
func (r MonthlyReview) Format() string {
	month := strings.TrimSpace(r.Month)
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "【%s 月次振り返り】\n", month)

	fmt.Fprintf(&b, "Q1(記録): %s", yesNo(r.RecordsKept))
	if !r.RecordsKept {
		fmt.Fprintf(&b, " →対策: %s", r.RecordsKeptAction)
	}
	b.WriteString("\n")

	problems := strings.TrimSpace(r.Problems)
	if problems == "" {
		problems = "なし"
	}
	fmt.Fprintf(&b, "Q2(問題点): %s\n", problems)

	if r.StaffChanged {
		fmt.Fprintf(&b, "Q3(従業員変更): はい →説明:%s, 理解:%s\n",
			doneMark(r.StaffExplained, r.StaffExplainedDate), yesNo(r.StaffUnderstood))
	}
	if r.MenuChanged {
		fmt.Fprintf(&b, "Q4(メニュー等変更): はい →見直し:%s\n",
			doneMark(r.MenuReviewed, r.MenuReviewedDate))
	}
	if r.EquipmentChanged {
		fmt.Fprintf(&b, "Q5(設備変更): はい →見直し:%s\n",
			doneMark(r.EquipmentReviewed, r.EquipmentReviewedDate))
	}

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "はい"
	}
	return "いいえ"
}

func doneMark(done bool, date string) string {
	if !done {
		return "未"
	}
	return fmt.Sprintf("済(%s)", date)
}
