// Package cmd 命令行入口
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configDefault 内嵌的默认配置，找不到配置文件时写出
var configDefault string

var rootCmd = &cobra.Command{
	Use:   "ecrit-note-service",
	Short: "Ecrit Note Service",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute 执行根命令
func Execute(c string) {
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
