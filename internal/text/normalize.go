package text

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// 全角カタカナ → ひらがな の固定コードポイントオフセット（ァ U+30A1 〜 ン U+30F3）
const (
	katakanaFirst = 'ァ'
	katakanaLast  = 'ン'
	kanaOffset    = 0x60
)

// Normalize メニュー名を比較用の正規形へ変換する。
// NFKC 互換正規化 → 全角カタカナをひらがなへ → 小文字化 → 前後空白の除去 の順。
// 半角カタカナや全角英数は NFKC の段階で吸収される。冪等で、空文字にも安全。
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if r >= katakanaFirst && r <= katakanaLast {
			return r - kanaOffset
		}
		return r
	}, s)
	return strings.TrimSpace(strings.ToLower(s))
}
