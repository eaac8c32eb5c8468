/*
 * @Description: 时区工具 - 展览日期按站点所在时区计算
 * @Author: 安知鱼
 * @Date: 2026-01-15 10:00:00
 * @LastEditTime: 2026-02-03 11:26:14
 * @LastEditors: 安知鱼
 */
package utils

import (
	"fmt"
	"time"

	// 容器镜像里通常没有 zoneinfo
	_ "time/tzdata"
)

// DefaultSiteTimezone 站点默认时区
const DefaultSiteTimezone = "Europe/Bucharest"

// DateLayout 是文档中日期字段使用的格式
const DateLayout = "2006-01-02"

// LoadLocation 按 IANA 名称加载时区，名称为空时使用默认时区
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultSiteTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("无法识别的时区 '%s': %w", name, err)
	}
	return loc, nil
}

// NowIn 获取指定时区的当前时间
func NowIn(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// StartOfDayIn 获取指定日期在该时区的开始时间（00:00:00）
func StartOfDayIn(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DateIn 返回 t 在该时区对应的日期字符串
func DateIn(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ParseDateIn 使用指定时区解析日期字符串
func ParseDateIn(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, loc)
}
