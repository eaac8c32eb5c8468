/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2025-10-21 18:10:06
 * @LastEditors: 安知鱼
 */
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/anzhiyu-c/anheyu-atelier/cmd/server"
)

// @title           Anheyu Atelier API
// @version         1.0
// @description     Anheyu Atelier 作品集站点接口文档

// @contact.name   安知鱼
// @contact.url    https://github.com/anzhiyu-c/anheyu-atelier

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8091
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 在请求头中添加 Bearer Token，格式为: Bearer {token}
func main() {
	// 解析命令行参数
	var adminEmail string
	flag.StringVar(&adminEmail, "issue-admin-token", "", "为指定邮箱签发管理员 Token 并退出")
	flag.Parse()

	if adminEmail != "" {
		token, err := server.IssueAdminToken(adminEmail)
		if err != nil {
			log.Fatalf("签发 Token 失败: %v", err)
		}
		fmt.Println(token)
		return
	}

	// 调用位于 cmd/server 包中的 NewApp 函数来构建整个应用
	app, cleanup, err := server.NewApp()
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		log.Fatalf("应用初始化失败: %v", err)
	}

	// defer 按后进先出执行：先停止后台任务，再关闭连接
	defer cleanup()
	defer app.Stop()

	app.PrintBanner()

	if err := app.Run(); err != nil {
		log.Printf("应用运行失败: %v", err)
	}
}
