package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	searchLanguages  []string
	searchDateFilter string
	searchPage       int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search GitHub repositories",
	Long: `Search GitHub repositories through the gitseek server.

Results are sorted by stars. Language and freshness filters are compiled
into the upstream query; when you are logged in the search also lands in
your recent-searches history.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show your recent searches",
	Args:  cobra.NoArgs,
	RunE:  runRecent,
}

func init() {
	searchCmd.Flags().StringSliceVarP(&searchLanguages, "language", "l", nil, "filter by language (repeatable)")
	searchCmd.Flags().StringVarP(&searchDateFilter, "date", "d", "all", "freshness filter (all, week, month, year)")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "result page")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(recentCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	client := NewAPIClientFromProfile(ActiveProfile(config))

	query := strings.Join(args, " ")
	result, err := client.Search(cmd.Context(), query, searchLanguages, searchDateFilter, searchPage)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return RenderSearchResult(result, viper.GetString("output"))
}

func runRecent(cmd *cobra.Command, _ []string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	client := NewAPIClientFromProfile(ActiveProfile(config))

	searches, err := client.RecentSearches(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch recent searches: %w", err)
	}

	return RenderRecentSearches(searches, viper.GetString("output"))
}
