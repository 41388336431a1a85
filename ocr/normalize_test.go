package ocr

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "LOGIN Here", "login here"},
		{"double space collapse", "sign  in", "sign in"},
		{"newline flatten", "user\npassword", "user password"},
		{"vietnamese diacritics", "Đăng nhập", "dang nhap"},
		{"mixed accents", "mật khẩu", "mat khau"},
		{"latin accents", "café naïve", "cafe naive"},
		{"non-ascii dropped", "login 登录 page", "login  page"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_TableCoversWholeAlphabet(t *testing.T) {
	// Every accented source character must map to a plain ASCII letter.
	for _, r := range fromChars {
		got := Normalize(string(r))
		if len(got) != 1 || got[0] < 'a' || got[0] > 'z' {
			t.Errorf("Normalize(%q) = %q, want a single ASCII letter", string(r), got)
		}
	}
}
