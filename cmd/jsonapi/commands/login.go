package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/dbendilas/jsonapi/internal/constants"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		apiEndpoint string
		token       string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store API credentials",
		Long:  "Store the API endpoint and bearer token in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiEndpoint == "" {
				apiEndpoint = viper.GetString("api")
			}

			if apiEndpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("API endpoint: ")
				apiEndpoint, _ = reader.ReadString('\n')
				apiEndpoint = strings.TrimSpace(apiEndpoint)
			}

			if apiEndpoint == "" {
				return ErrAPIEndpointRequired
			}

			if token == "" {
				fmt.Print("Token: ")

				byteToken, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				token = string(byteToken)

				fmt.Println()
			}

			if err := saveCredentials(apiEndpoint, token); err != nil {
				return err
			}

			fmt.Printf("Credentials for %s saved.\n", apiEndpoint)

			return nil
		},
	}

	cmd.Flags().StringVar(&apiEndpoint, "api", "", "API endpoint URL")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (prompted when omitted)")

	return cmd
}

func saveCredentials(apiEndpoint, token string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("finding home directory: %w", err)
	}

	configDir := filepath.Join(home, ".jsonapi")
	if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	content, err := yaml.Marshal(map[string]string{
		"api":   apiEndpoint,
		"token": token,
	})
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	configFile := filepath.Join(configDir, "config.yml")
	if err := os.WriteFile(configFile, content, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
