package cli

import (
	"fmt"

	"gitseek/internal/domain"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	trackDescription string
	trackLanguage    string
	trackStars       int
)

var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "Manage your visited repositories",
}

var visitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show your most recently visited repositories",
	Args:  cobra.NoArgs,
	RunE:  runVisitsList,
}

var visitsTrackCmd = &cobra.Command{
	Use:   "track <url> <name>",
	Short: "Record a repository visit",
	Args:  cobra.ExactArgs(2),
	RunE:  runVisitsTrack,
}

func init() {
	visitsTrackCmd.Flags().StringVar(&trackDescription, "description", "", "repository description snapshot")
	visitsTrackCmd.Flags().StringVar(&trackLanguage, "language", "", "repository language snapshot")
	visitsTrackCmd.Flags().IntVar(&trackStars, "stars", 0, "repository star count snapshot")

	visitsCmd.AddCommand(visitsListCmd)
	visitsCmd.AddCommand(visitsTrackCmd)
	rootCmd.AddCommand(visitsCmd)
}

func runVisitsList(cmd *cobra.Command, _ []string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	client := NewAPIClientFromProfile(ActiveProfile(config))

	repos, err := client.MostVisited(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch visited repositories: %w", err)
	}

	return RenderVisitedRepos(repos, viper.GetString("output"))
}

func runVisitsTrack(cmd *cobra.Command, args []string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	client := NewAPIClientFromProfile(ActiveProfile(config))

	snapshot := domain.RepoSnapshot{
		Description: trackDescription,
		Stars:       trackStars,
		Language:    trackLanguage,
	}

	record, err := client.TrackVisit(cmd.Context(), args[0], args[1], snapshot)
	if err != nil {
		return fmt.Errorf("failed to track visit: %w", err)
	}

	fmt.Printf("Recorded visit to %s (%d total)\n", record.Name, record.Count)
	return nil
}
