package syntax

import "testing"

func TestLanguageFromPath(t *testing.T) {
	tests := []struct {
		path   string
		want   Language
		wantOK bool
	}{
		{"main.go", LangGo, true},
		{"src/App.TSX", LangTSX, true},
		{"lib/util.mjs", LangJavaScript, true},
		{"Service.cs", LangCSharp, true},
		{"build.gradle.kts", LangKotlin, true},
		{"README.md", "", false},
		{"Makefile", "", false},
	}
	for _, tt := range tests {
		got, ok := LanguageFromPath(tt.path)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LanguageFromPath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
}
