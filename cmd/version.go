package cmd

import (
	"fmt"

	"github.com/haierkeys/ecrit-note-service/internal/app"
	pkgapp "github.com/haierkeys/ecrit-note-service/pkg/app"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print out version info and exit. // 打印版本信息并退出。",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !versionJSON {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s ( Git:%s ) BuildTime:%s\n", app.Name, app.Version, app.GitTag, app.BuildTime)
			return nil
		}
		raw, err := sonic.ConfigStd.MarshalIndent(pkgapp.VersionInfo{
			Version:   app.Version,
			GitTag:    app.GitTag,
			BuildTime: app.BuildTime,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print as JSON // 以 JSON 格式输出")
	rootCmd.AddCommand(versionCmd)
}
