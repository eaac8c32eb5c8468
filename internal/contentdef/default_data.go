package contentdef

import (
	_ "embed"
	"fmt"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/schema"
)

// SiteVersion 是默认文档的版本号
const SiteVersion = "1.0.0"

//go:embed default_cms.json
var rawDefault []byte

// defaultDoc 在包加载时校验一次。默认文档与 schema 不一致时直接 panic，
// 问题会在启动阶段暴露，而不是等到第一个请求。
var defaultDoc = mustParse(rawDefault)

func mustParse(raw []byte) *model.CmsData {
	doc, err := schema.Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("contentdef: 默认内容未通过校验: %v", err))
	}
	return doc
}

// Default 返回默认文档的一份独立副本，用于兜底与重置
func Default() *model.CmsData {
	return defaultDoc.Clone()
}

// Raw 返回内嵌的原始 JSON
func Raw() []byte {
	out := make([]byte, len(rawDefault))
	copy(out, rawDefault)
	return out
}
