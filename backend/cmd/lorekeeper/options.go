package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lore-keeper/backend/internal/client"
	"lore-keeper/backend/internal/constants"
	"lore-keeper/backend/internal/gateway"
	"lore-keeper/backend/pkg/config"
)

// Output formats accepted by -o
const (
	formatText = "text"
	formatYAML = "yaml"
	formatJSON = "json"
)

// options are the persistent flags shared by every command
type options struct {
	apiURL    string
	token     string
	jwtSecret string
	timeout   time.Duration
}

func defaultOptions() *options {
	cfg := config.FromEnv()
	return &options{
		apiURL:    cfg.APIURL,
		token:     cfg.APIToken,
		jwtSecret: cfg.JWTSecret,
		timeout:   constants.ClientTimeout,
	}
}

func (o *options) client() *client.Client {
	return client.New(o.apiURL, o.token, o.timeout)
}

// caller carries no identity of its own; the server derives the user from the token
func (o *options) caller() gateway.Caller {
	return gateway.Caller{Token: o.token}
}

func addOutputFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "output", "o", formatText, "Output format: text, yaml or json")
}

// writeOutput renders v as yaml or json, or calls text for the human format
func writeOutput(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case formatText, "":
		return text(w)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want text, yaml or json)", format)
	}
}

// argOrStdin returns arg, or all of stdin when arg is "-"
func argOrStdin(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
