package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gitseek/internal/domain"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatYML  = "yml"
	formatCSV  = "csv"
)

// RenderSearchResult renders one page of search results in the specified format
func RenderSearchResult(result *domain.SearchResult, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		return renderJSON(result)
	case formatYAML, formatYML:
		return renderYAML(result)
	case formatCSV:
		return renderRepositoriesCSV(result.Items)
	default:
		return renderSearchResultTable(result)
	}
}

// RenderVisitedRepos renders the most-visited listing in the specified format
func RenderVisitedRepos(repos []domain.VisitedRepo, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		return renderJSON(repos)
	case formatYAML, formatYML:
		return renderYAML(repos)
	case formatCSV:
		return renderVisitedCSV(repos)
	default:
		return renderVisitedTable(repos)
	}
}

// RenderRecentSearches renders the search history in the specified format
func RenderRecentSearches(searches []domain.RecentSearch, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		return renderJSON(searches)
	case formatYAML, formatYML:
		return renderYAML(searches)
	default:
		return renderRecentSearchesTable(searches)
	}
}

// RenderUser renders the authenticated user's profile
func RenderUser(user *domain.PublicProfile, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		return renderJSON(user)
	case formatYAML, formatYML:
		return renderYAML(user)
	default:
		fmt.Printf("Logged in as %s", user.Username)
		if user.DisplayName != "" && user.DisplayName != user.Username {
			fmt.Printf(" (%s)", user.DisplayName)
		}
		fmt.Println()
		return nil
	}
}

func renderJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func renderYAML(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func renderSearchResultTable(result *domain.SearchResult) error {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Repository", "Stars", "Language", "Description"})

	for _, repo := range result.Items {
		description := repo.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}

		language := repo.Language
		if language == "" {
			language = "-"
		}

		t.AppendRow(table.Row{
			repo.FullName,
			repo.Stars,
			language,
			description,
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()

	fmt.Printf("Page %d of %d (%d repositories)\n", result.Page, result.TotalPages, result.TotalCount)
	return nil
}

func renderRepositoriesCSV(repos []domain.Repository) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"full_name", "stars", "language", "url", "description"}); err != nil {
		return err
	}
	for _, repo := range repos {
		record := []string{
			repo.FullName,
			strconv.Itoa(repo.Stars),
			repo.Language,
			repo.HTMLURL,
			repo.Description,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func renderVisitedTable(repos []domain.VisitedRepo) error {
	if len(repos) == 0 {
		fmt.Println("No visited repositories yet.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Repository", "Visits", "Last Visited", "Stars", "Language"})

	for _, repo := range repos {
		language := repo.Language
		if language == "" {
			language = "-"
		}

		t.AppendRow(table.Row{
			repo.Name,
			repo.Count,
			repo.LastVisited.Format("2006-01-02 15:04"),
			repo.Stars,
			language,
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func renderVisitedCSV(repos []domain.VisitedRepo) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"name", "url", "count", "last_visited", "stars", "language"}); err != nil {
		return err
	}
	for _, repo := range repos {
		record := []string{
			repo.Name,
			repo.URL,
			strconv.Itoa(repo.Count),
			repo.LastVisited.Format("2006-01-02T15:04:05Z07:00"),
			strconv.Itoa(repo.Stars),
			repo.Language,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func renderRecentSearchesTable(searches []domain.RecentSearch) error {
	if len(searches) == 0 {
		fmt.Println("No recent searches.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Query", "When"})

	for _, search := range searches {
		t.AppendRow(table.Row{
			search.Query,
			search.Timestamp.Format("2006-01-02 15:04"),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
