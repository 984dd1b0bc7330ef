package text

import "testing"

// TestNormalize 正規化の基本変換
func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"カタカナ→ひらがな", "カラアゲ", "からあげ"},
		{"濁点付きカタカナ", "ヤキソバ", "やきそば"},
		{"半角カタカナ", "ｶﾗｱｹﾞ", "からあげ"},
		{"全角英数", "ＡＢＣ１２３", "abc123"},
		{"大文字", "Hot Dog", "hot dog"},
		{"前後空白", "  サラダ  ", "さらだ"},
		{"ひらがなはそのまま", "からあげ", "からあげ"},
		{"漢字はそのまま", "唐揚げ", "唐揚げ"},
		{"長音符は保持", "ラーメン", "らーめん"},
		{"空文字", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestNormalizeIdempotent 2回適用しても結果が変わらない
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"カラアゲ",
		"ｶｷ氷",
		"Ｈｏｔ　Ｄｏｇ",
		"  フランクフルト  ",
		"焼きそば",
		"ヴィシソワーズ",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize is not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
