package i18n

import "strings"

// Translator retrieves localized messages for validation codes.
// data provides values substituted into {name} placeholders (for example,
// "min" or "choices").
type Translator interface {
	Message(code string, data map[string]string) string
}

// Message codes produced by the schema engine.
const (
	CodeNull                 = "null"
	CodeRequired             = "required"
	CodeBlank                = "blank"
	CodeWhitespace           = "whitespace"
	CodeNotString            = "not_string"
	CodeNotInteger           = "not_integer"
	CodeNotFloat             = "not_float"
	CodeNotBoolean           = "not_boolean"
	CodeNotIterable          = "not_iterable"
	CodeNotDict              = "not_dict"
	CodeNotDate              = "not_date"
	CodeNotDatetime          = "not_datetime"
	CodeTZAware              = "tz_aware"
	CodeTZNaive              = "tz_naive"
	CodeNotFile              = "not_file"
	CodeNotUUID              = "not_uuid"
	CodeUnknownField         = "unknown_field"
	CodeOneOfMultiple        = "one_of_multiple"
	CodeNoneMatched          = "none_matched"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeChoices              = "choices"
	CodeUnique               = "unique"
	CodeLengthBetween        = "length_between"
	CodeLengthMin            = "length_min"
	CodeLengthMax            = "length_max"
	CodePattern              = "pattern"
	CodeGt                   = "gt"
	CodeGte                  = "gte"
	CodeLt                   = "lt"
	CodeLte                  = "lte"
	CodeMultipleOf           = "multiple_of"
	CodeKeyPrefix            = "key_prefix"
	CodeValuePrefix          = "value_prefix"
	CodeDuplicateKey         = "duplicate_key"
	CodeInvalidJSON          = "invalid_json"
	CodeUnsupportedMedia     = "unsupported_media"
	CodeInvalidForm          = "invalid_form"
	CodeEmail                = "email"
	CodeURL                  = "url"
	CodeTagFailed            = "tag_failed"
)

var catalog = map[string]map[string]string{
	"en": {
		CodeNull:                 "The value cannot be null.",
		CodeRequired:             "This field is required.",
		CodeBlank:                "This field cannot be blank.",
		CodeWhitespace:           "The value cannot be a whitespace string.",
		CodeNotString:            "Not a valid string.",
		CodeNotInteger:           "Not a valid integer.",
		CodeNotFloat:             "Not a valid float.",
		CodeNotBoolean:           "Not a valid boolean.",
		CodeNotIterable:          "Not a valid list.",
		CodeNotDict:              "Not a valid dict object.",
		CodeNotDate:              "Not a valid date string.",
		CodeNotDatetime:          "Not a valid datetime string.",
		CodeTZAware:              "Timezone-aware datetimes are not supported.",
		CodeTZNaive:              "Timezone-naive datetimes are not supported.",
		CodeNotFile:              "Not a valid file.",
		CodeNotUUID:              "Not a valid UUID.",
		CodeUnknownField:         "Unknown field.",
		CodeOneOfMultiple:        "Multiple schemas were matched.",
		CodeNoneMatched:          "No schema is matched.",
		CodeDiscriminatorMissing: "'{property}' is required.",
		CodeDiscriminatorUnknown: "{property}={value} does not match the discriminator mapping.",
		CodeChoices:              "Must be one of {choices}.",
		CodeUnique:               "The item is not unique.",
		CodeLengthBetween:        "Length must be between {min} and {max}.",
		CodeLengthMin:            "Length must be at least {min}.",
		CodeLengthMax:            "Length must be at most {max}.",
		CodePattern:              "{value} does not match pattern {pattern}.",
		CodeGt:                   "The value must be greater than {bound}.",
		CodeGte:                  "The value must be greater than or equal to {bound}.",
		CodeLt:                   "The value must be less than {bound}.",
		CodeLte:                  "The value must be less than or equal to {bound}.",
		CodeMultipleOf:           "The value must be a multiple of {multiple}.",
		CodeKeyPrefix:            "The key {key}: ",
		CodeValuePrefix:          "The value of {key}: ",
		CodeDuplicateKey:         "Duplicate key '{key}'.",
		CodeInvalidJSON:          "Malformed JSON body.",
		CodeUnsupportedMedia:     "Unsupported media type {type}.",
		CodeInvalidForm:          "Malformed form body.",
		CodeEmail:                "Not a valid email address.",
		CodeURL:                  "Not a valid URL.",
		CodeTagFailed:            "Failed the {tag} check.",
	},
	"zh": {
		CodeNull:                 "值不能为空",
		CodeRequired:             "这个字段是必需的",
		CodeBlank:                "字段不能为空",
		CodeWhitespace:           "不能是空白字符串",
		CodeNotString:            "必须是字符串",
		CodeNotInteger:           "不是一个整数",
		CodeNotFloat:             "不是一个浮点数",
		CodeNotBoolean:           "不是一个有效布尔值",
		CodeNotIterable:          "不是一个可迭代对象",
		CodeNotDict:              "不是一个有效的字典对象",
		CodeNotDate:              "不是一个有效的日期字符串",
		CodeNotDatetime:          "不是一个有效的日期时间字符串",
		CodeTZAware:              "不支持带时区的日期时间",
		CodeTZNaive:              "不支持不带时区的日期时间",
		CodeNotFile:              "不是一个文件",
		CodeNotUUID:              "不是一个有效的 UUID",
		CodeUnknownField:         "未知字段",
		CodeOneOfMultiple:        "匹配了多个模式",
		CodeNoneMatched:          "没有匹配的模式",
		CodeDiscriminatorMissing: "'{property}' 是必需的",
		CodeDiscriminatorUnknown: "{property}={value} 不在鉴别器映射中",
		CodeChoices:              "必须是 {choices} 中的一个",
		CodeUnique:               "元素不唯一",
		CodeLengthBetween:        "长度必须在 {min} 到 {max} 之间",
		CodeLengthMin:            "长度最小为 {min}",
		CodeLengthMax:            "长度最大为 {max}",
		CodePattern:              "{value} 不匹配模式 {pattern}",
		CodeGt:                   "值必须大于 {bound}",
		CodeGte:                  "值必须大于等于 {bound}",
		CodeLt:                   "值必须小于 {bound}",
		CodeLte:                  "值必须小于等于 {bound}",
		CodeMultipleOf:           "值必须是 {multiple} 的倍数",
		CodeKeyPrefix:            "键 {key}: ",
		CodeValuePrefix:          "{key} 的值: ",
		CodeDuplicateKey:         "键 '{key}' 重复",
		CodeInvalidJSON:          "JSON 格式错误",
		CodeUnsupportedMedia:     "不支持的媒体类型 {type}",
		CodeInvalidForm:          "表单格式错误",
		CodeEmail:                "不是一个有效的电子邮件地址",
		CodeURL:                  "不是一个有效的 URL",
		CodeTagFailed:            "未通过 {tag} 校验",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := catalog[t.lang][code]
	if !ok {
		tmpl, ok = catalog["en"][code]
	}
	if !ok {
		return code
	}
	return fill(tmpl, data)
}

func fill(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"zh").
func SetLanguage(lang string) {
	if _, ok := catalog[lang]; !ok {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// Languages lists the built-in catalogue languages.
func Languages() []string { return []string{"en", "zh"} }

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
