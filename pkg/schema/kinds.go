/*
 * @Description: 按文档模型的 Go 类型检查 JSON 值的类型
 * @Author: 安知鱼
 * @Date: 2025-09-19 10:36:48
 * @LastEditTime: 2025-09-19 14:02:15
 * @LastEditors: 安知鱼
 */
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
)

var documentType = reflect.TypeOf(model.CmsData{})

// checkKinds 沿着模型类型检查 v，每个类型不符的值报告一次。
// 不符的值会从树中移除（数组元素置为 null），保证后续的 Unmarshal 能够成功。
// 返回 false 表示 v 本身类型不符。
func checkKinds(path string, t reflect.Type, v any, issues *[]Issue) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fail := func(want string) bool {
		*issues = append(*issues, Issue{Path: path, Message: expected(want, v)})
		return false
	}

	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return fail("object")
		}
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			name := jsonName(sf)
			if name == "" {
				continue
			}
			val, present := m[name]
			if !present {
				continue
			}
			if !checkKinds(joinPath(path, name), sf.Type, val, issues) {
				delete(m, name)
			}
		}
		return true
	case reflect.Slice, reflect.Array:
		items, ok := v.([]any)
		if !ok {
			return fail("array")
		}
		for i, item := range items {
			if !checkKinds(fmt.Sprintf("%s[%d]", path, i), t.Elem(), item, issues) {
				items[i] = nil
			}
		}
		return true
	case reflect.String:
		if _, ok := v.(string); !ok {
			return fail("string")
		}
	case reflect.Bool:
		if _, ok := v.(bool); !ok {
			return fail("boolean")
		}
	case reflect.Float32, reflect.Float64:
		if _, ok := v.(json.Number); !ok {
			return fail("number")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.(json.Number)
		if !ok {
			return fail("number")
		}
		if _, err := n.Int64(); err != nil {
			*issues = append(*issues, Issue{Path: path, Message: "Expected integer, received float"})
			return false
		}
	}
	return true
}

func jsonName(sf reflect.StructField) string {
	if !sf.IsExported() {
		return ""
	}
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return sf.Name
	}
	return name
}
