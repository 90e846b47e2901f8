package cmd

import (
	"fmt"

	internalApp "github.com/haierkeys/ecrit-note-service/internal/app"
	pkgapp "github.com/haierkeys/ecrit-note-service/pkg/app"

	"github.com/spf13/cobra"
)

type tokenFlags struct {
	config   string
	uid      string
	nickname string
	expiry   string
}

// 签发用于本地调试的用户 Token；生产环境的 Token 由外部身份系统签发
func init() {
	flags := new(tokenFlags)

	tokenCommand := &cobra.Command{
		Use:   "token -u uid [-c config_file]",
		Short: "Issue a user token signed with the configured key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := flags.config
			if cfgPath == "" {
				cfgPath = findConfigFile()
			}
			if cfgPath == "" {
				return fmt.Errorf("config file not found")
			}

			cfg, _, err := internalApp.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if flags.expiry != "" {
				cfg.Security.TokenExpiry = flags.expiry
			}

			tm := pkgapp.NewTokenManager(pkgapp.TokenConfig{
				SecretKey: cfg.Security.AuthTokenKey,
				Issuer:    cfg.Security.TokenIssuer,
				Expiry:    cfg.GetTokenExpiry(),
			})
			token, err := tm.Generate(flags.uid, flags.nickname, "")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	rootCmd.AddCommand(tokenCommand)
	fs := tokenCommand.Flags()
	fs.StringVarP(&flags.config, "config", "c", "", "config file")
	fs.StringVarP(&flags.uid, "uid", "u", "", "user id")
	fs.StringVarP(&flags.nickname, "nickname", "n", "", "nickname")
	fs.StringVarP(&flags.expiry, "expiry", "e", "", "token expiry, e.g. 24h or 7d")
	_ = tokenCommand.MarkFlagRequired("uid")
}
