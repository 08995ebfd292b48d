// Package searchcmder provides the search command for querying a running
// forumsearch server.
package searchcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/forumsearch/api"
	"github.com/papercomputeco/forumsearch/pkg/cliui"
	"github.com/papercomputeco/forumsearch/pkg/config"
	"github.com/papercomputeco/forumsearch/pkg/forum"
)

const requestTimeout = 60 * time.Second

// Output is a search response with results left undecoded, since they differ
// between posts and comments.
type Output = api.SearchResponse[json.RawMessage]

type searchCommander struct {
	flags config.FlagSet

	kind      forum.Kind
	query     string
	limit     int
	threshold float64
	apiTarget string
	apiToken  string

	jsonOut bool
	plain   bool

	viper *viper.Viper
}

var searchFlags = []string{
	config.FlagAPITarget,
	config.FlagLimit,
	config.FlagThreshold,
}

const searchLongDesc string = `Search forum posts or comments via a running forumsearch server.

The query is embedded by the server and compared against the stored post
title or comment content embeddings. Results at or above the similarity
threshold are printed most similar first.

Examples:
  forumsearch search posts "animal welfare"
  forumsearch search posts "animal welfare" --limit 5 --threshold 0.75
  forumsearch search comments "moral weights" --api-target http://localhost:8787
  forumsearch search comments "moral weights" --json`

const searchShortDesc string = "Search forum posts or comments"

func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: searchShortDesc,
		Long:  searchLongDesc,
	}

	cmd.AddCommand(newKindCmd(forum.KindPost, "Search posts by title similarity"))
	cmd.AddCommand(newKindCmd(forum.KindComment, "Search comments by content similarity"))

	return cmd
}

func newKindCmd(kind forum.Kind, short string) *cobra.Command {
	cmder := &searchCommander{
		flags: config.Flags,
		kind:  kind,
	}

	cmd := &cobra.Command{
		Use:   string(kind) + " <query>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flags, searchFlags)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]
			cmder.apiTarget = cmder.viper.GetString("client.api_target")
			cmder.apiToken = cmder.viper.GetString("client.api_token")
			cmder.limit = cmder.viper.GetInt("search.limit")
			cmder.threshold = cmder.viper.GetFloat64("search.threshold")

			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddIntFlag(cmd, cmder.flags, config.FlagLimit, &cmder.limit)
	config.AddFloat64Flag(cmd, cmder.flags, config.FlagThreshold, &cmder.threshold)
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the raw JSON response")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print plain text without markdown rendering")

	return cmd
}

func (c *searchCommander) run(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	output, raw, err := SearchAPI(ctx, c.apiTarget, c.apiToken, c.kind, api.SearchBody{
		Query:     c.query,
		Limit:     &c.limit,
		Threshold: &c.threshold,
	})
	if err != nil {
		return err
	}

	if c.jsonOut {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			_, err = w.Write(raw)
			return err
		}
		fmt.Fprintln(w, pretty.String())
		return nil
	}

	if c.plain || !cliui.IsTerminal(os.Stdout) {
		fmt.Fprintln(w, output.Text)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(output.Text, cliui.Width(os.Stdout))
	if err != nil {
		fmt.Fprintln(w, output.Text)
		return nil
	}
	fmt.Fprint(w, rendered)
	return nil
}

// SearchAPI calls POST /search/{kind} on the forumsearch server and returns
// the parsed output along with the raw response body.
func SearchAPI(ctx context.Context, apiTarget, apiToken string, kind forum.Kind, body api.SearchBody) (*Output, []byte, error) {
	searchURL, err := url.Parse(apiTarget)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	searchURL.Path = "/search/" + string(kind)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+apiToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to forumsearch at %s: %w", apiTarget, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return nil, nil, fmt.Errorf("search request failed (HTTP %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, nil, fmt.Errorf("search request failed (HTTP %d): %s", resp.StatusCode, string(raw))
	}

	var output Output
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return &output, raw, nil
}
