package validator

import "regexp"

var (
	EmailRX = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
)

// FieldError 某个字段的校验错误
type FieldError struct {
	Field   string
	Message string
}

// Validator 类型中按 Check 调用顺序存放校验错误，响应只取第一条
type Validator struct {
	Errors []FieldError
}

// New 构造函数，返回新的 Validator 实例
func New() *Validator {
	return &Validator{}
}

// Valid 函数在 errors 为空时返回 true
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError 追加一条错误信息，同一字段只保留最先出现的那条
func (v *Validator) AddError(field, message string) {
	for _, e := range v.Errors {
		if e.Field == field {
			return
		}
	}

	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

// Check 在校验未通过时增加一条错误消息
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// First 返回最先失败的那条校验错误
func (v *Validator) First() FieldError {
	if len(v.Errors) == 0 {
		return FieldError{}
	}

	return v.Errors[0]
}

// Matches 在传入值匹配正则的时候返回 true
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// Unique 在传入的列表没有重复值时返回 true
func Unique(values []string) bool {
	uniqueValues := make(map[string]bool)

	for _, value := range values {
		uniqueValues[value] = true
	}

	return len(values) == len(uniqueValues)
}

// In 当值在指定的列表中时返回 true
func In(value string, list ...string) bool {
	for i := range list {
		if value == list[i] {
			return true
		}
	}

	return false
}
