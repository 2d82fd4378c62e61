package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"gallery/internal/auth"
	"gallery/internal/config"
)

func newAdminCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the credentials that guard API mutations",
	}
	cmd.AddCommand(newAdminPasswdCmd(cfg, jsonOutput))
	return cmd
}

func newAdminPasswdCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var passwordStdin bool
	var global bool
	var username string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Set the admin username and password",
		Args:  requireExactlyArgs(0, "passwd takes no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !passwordStdin {
				return fmt.Errorf("--password-stdin is required")
			}
			if username == "" {
				username = cfg.Admin.Username
			}
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			creds, err := auth.Credentials{}.WithPassword(username, password, auth.DefaultPasswordPolicy)
			if err != nil {
				return err
			}

			path, err := configPath(global)
			if err != nil {
				return err
			}
			if err := config.SetKey(path, "admin.username", creds.Username); err != nil {
				return err
			}
			if err := config.SetKey(path, "admin.password_hash", creds.PasswordHash); err != nil {
				return err
			}

			if *jsonOutput {
				return writeJSON(map[string]any{"username": creds.Username, "config": path})
			}
			return writePlain("admin password for %s written to %s\n", creds.Username, path)
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	cmd.Flags().BoolVar(&global, "global", false, "write to global config (~/"+config.FileName+")")
	cmd.Flags().StringVar(&username, "username", "", "admin username (default from admin.username)")
	return cmd
}

// readPassword takes the first line of r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	return password, nil
}
