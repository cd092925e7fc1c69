package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "invalid_model":
			return "モデル型ではありません"
		case "invalid_link":
			return "リンク先がモデルのインスタンスではありません"
		case "out_of_range":
			return "値が範囲外です"
		case "invalid_format":
			return "書式が不正です"
		case "readonly_field":
			return "読み取り専用フィールドです"
		case "unknown_field":
			return "未知のフィールドです"
		case "delete_forbidden":
			return "フィールドは削除できません"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "invalid_model":
			return "not a model type"
		case "invalid_link":
			return "link target is not a model instance"
		case "out_of_range":
			return "value out of range"
		case "invalid_format":
			return "invalid format"
		case "readonly_field":
			return "field is read-only"
		case "unknown_field":
			return "unknown field"
		case "delete_forbidden":
			return "field cannot be deleted"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
