/*
 * @Description: CMS 文档解析与校验
 * @Author: 安知鱼
 * @Date: 2025-09-03 09:18:52
 * @LastEditTime: 2025-09-16 21:12:03
 * @LastEditors: 安知鱼
 */
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
)

// Issue 记录一处违反约束的位置与说明
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError 表示文档未通过校验，Issues 中每个违反的约束对应一条记录
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return "文档校验失败: " + strings.Join(parts, "; ")
}

// AsValidationError 判断 err 是否为校验错误
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Parse 将原始 JSON 解析为经过校验的文档。
// 显式的 null 不等同于缺失，出现在任何字段上都会被拒绝。
func Parse(raw []byte) (*model.CmsData, error) {
	tree, err := decodeTree(raw)
	if err != nil {
		return nil, &ValidationError{Issues: []Issue{{Message: fmt.Sprintf("Invalid JSON: %v", err)}}}
	}
	return parseTree(tree, false)
}

// ParseValue 接受任意值（通常是已解码的 JSON），返回经过校验的文档。
// 输入不会被修改。
func ParseValue(v any) (*model.CmsData, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &ValidationError{Issues: []Issue{{Message: fmt.Sprintf("Unsupported value: %v", err)}}}
	}
	return Parse(raw)
}

// Validate 重新校验一个已类型化的文档，成功时返回一份新的副本。
// Go 的 nil 切片会被编码为 null，这里按缺失处理。
func Validate(doc *model.CmsData) (*model.CmsData, error) {
	if doc == nil {
		return nil, &ValidationError{Issues: []Issue{{Message: "Expected object, received null"}}}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, &ValidationError{Issues: []Issue{{Message: fmt.Sprintf("Unsupported value: %v", err)}}}
	}
	tree, err := decodeTree(raw)
	if err != nil {
		return nil, &ValidationError{Issues: []Issue{{Message: err.Error()}}}
	}
	return parseTree(tree, true)
}

func decodeTree(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// parseTree 依次执行结构检查、类型检查与字段约束检查，所有阶段的问题一并返回。
// 已在前两个阶段报告的字段，其下的约束问题不再重复报告。
func parseTree(tree any, nullAsMissing bool) (*model.CmsData, error) {
	if _, ok := tree.(map[string]any); !ok {
		return nil, &ValidationError{Issues: []Issue{{Message: expected("object", tree)}}}
	}

	var issues []Issue
	documentShape.walk("", tree, nullAsMissing, &issues)
	checkKinds("", documentType, tree, &issues)

	normalized, err := json.Marshal(tree)
	if err != nil {
		return nil, &ValidationError{Issues: append(issues, Issue{Message: err.Error()})}
	}
	var doc model.CmsData
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, &ValidationError{Issues: append(issues, Issue{Message: err.Error()})}
	}

	reported := issues
	for _, issue := range append(checkConstraints(&doc), checkUniqueness(&doc)...) {
		if !covered(reported, issue.Path) {
			issues = append(issues, issue)
		}
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return &doc, nil
}

// covered 判断 path 是否位于某个已报告问题的字段之内
func covered(reported []Issue, path string) bool {
	for _, issue := range reported {
		if issue.Path == "" {
			continue
		}
		if path == issue.Path ||
			strings.HasPrefix(path, issue.Path+".") ||
			strings.HasPrefix(path, issue.Path+"[") {
			return true
		}
	}
	return false
}

// checkUniqueness 检查集合内的 id 与作品 slug 不重复
func checkUniqueness(doc *model.CmsData) []Issue {
	var issues []Issue

	ids := make(map[string]int, len(doc.ArtLibrary.Artworks))
	slugs := make(map[string]string, len(doc.ArtLibrary.Artworks))
	for i, art := range doc.ArtLibrary.Artworks {
		base := fmt.Sprintf("artLibrary.artworks[%d]", i)
		if _, dup := ids[art.ID]; dup {
			issues = append(issues, Issue{Path: base + ".id", Message: fmt.Sprintf("Duplicate identifier %q", art.ID)})
		}
		ids[art.ID] = i
		if owner, dup := slugs[art.Slug]; dup && owner != art.ID {
			issues = append(issues, Issue{Path: base + ".slug", Message: fmt.Sprintf("Slug %q is already used by artwork %q", art.Slug, owner)})
			continue
		}
		slugs[art.Slug] = art.ID
	}

	expoIDs := make(map[string]struct{}, len(doc.Expositions))
	for i, expo := range doc.Expositions {
		if _, dup := expoIDs[expo.ID]; dup {
			issues = append(issues, Issue{Path: fmt.Sprintf("expositions[%d].id", i), Message: fmt.Sprintf("Duplicate identifier %q", expo.ID)})
		}
		expoIDs[expo.ID] = struct{}{}
	}
	return issues
}
