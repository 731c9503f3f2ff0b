// reportctl 对导出的 JSON 数据离线运行报表计算
package main

import (
	"os"

	"github.com/BerniceZTT/crm_reports/utils"
)

func main() {
	utils.InitLogger(os.Getenv("LOG_LEVEL"))
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
