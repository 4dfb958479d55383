// Package syntax wraps tree-sitter parsing for the languages codeaxe can
// build symbol trees for.
package syntax

import (
	"path/filepath"
	"strings"
)

// Language represents a supported programming language.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
	LangCSharp     Language = "csharp"
)

var extensions = map[string]Language{
	".go":   LangGo,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".ts":   LangTypeScript,
	".mts":  LangTypeScript,
	".cts":  LangTypeScript,
	".tsx":  LangTSX,
	".py":   LangPython,
	".rs":   LangRust,
	".java": LangJava,
	".kt":   LangKotlin,
	".kts":  LangKotlin,
	".cs":   LangCSharp,
}

// LanguageFromExtension returns the language for a file extension (with dot).
func LanguageFromExtension(ext string) (Language, bool) {
	lang, ok := extensions[strings.ToLower(ext)]
	return lang, ok
}

// LanguageFromPath returns the language for a file path.
func LanguageFromPath(path string) (Language, bool) {
	return LanguageFromExtension(filepath.Ext(path))
}
