package editor

import (
	"path/filepath"
	"strings"
)

// Language identifiers understood by the symbol parser.
const (
	LangGo         = "go"
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangMarkdown   = "markdown"
	LangPlainText  = "plaintext"
)

// DetectLanguage returns a language identifier derived from the file
// extension.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".go":
		return LangGo
	case ".py", ".pyw":
		return LangPython
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript
	case ".md", ".markdown":
		return LangMarkdown
	case ".rs":
		return "rust"
	case ".ts", ".tsx":
		return "typescript"
	case ".rb":
		return "ruby"
	case ".java":
		return "java"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".cxx", ".hpp":
		return "cpp"
	case ".lua":
		return "lua"
	case ".sh", ".bash":
		return "shellscript"
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return LangPlainText
	}
}
