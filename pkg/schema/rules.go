/*
 * @Description: 基于 validator 的字段约束与提示信息
 * @Author: 安知鱼
 * @Date: 2025-09-03 11:02:27
 * @LastEditTime: 2025-09-12 15:48:10
 * @LastEditors: 安知鱼
 */
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 错误路径使用 json 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func checkConstraints(doc *model.CmsData) []Issue {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Issue{{Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := trimRoot(fe.Namespace())
		issues = append(issues, Issue{Path: path, Message: message(path, fe)})
	}
	return issues
}

// trimRoot 去掉命名空间开头的结构体名，例如 "CmsData."
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(path string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		inNavigation := strings.Contains(path, "navigation[")
		switch {
		case fe.Field() == "id":
			return "Missing identifier"
		case fe.Field() == "src":
			return "Provide a file path or URL"
		case inNavigation && fe.Field() == "label":
			return "Set a navigation label"
		case inNavigation && fe.Field() == "href":
			return "Provide a slug or URL"
		}
		return "String must contain at least 1 character(s)"
	case "oneof":
		options := strings.Fields(fe.Param())
		for i, o := range options {
			options[i] = "'" + o + "'"
		}
		return fmt.Sprintf("Invalid enum value. Expected %s, received '%v'", strings.Join(options, " | "), fe.Value())
	case "gt":
		return fmt.Sprintf("Number must be greater than %s", fe.Param())
	case "len":
		return fmt.Sprintf("Array must contain exactly %s element(s)", fe.Param())
	}
	return fmt.Sprintf("Failed on the '%s' rule", fe.Tag())
}
