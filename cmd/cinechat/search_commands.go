package main

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cinechat/internal/catalog/tmdb"
	"cinechat/internal/search"
	"cinechat/internal/services"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var showQuery bool

	cmd := &cobra.Command{
		Use:   "search <request>",
		Short: "Search movies with a natural-language request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, _, err := ctx.pipeline()
			if err != nil {
				return err
			}
			outcome, err := pipeline.Search(cmd.Context(), search.Request{Query: strings.Join(args, " ")})
			if err != nil {
				return userFacing(err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, outcome)
			}
			out := cmd.OutOrStdout()
			if showQuery {
				fmt.Fprintf(out, "Criteria: %s\n", outcome.Criteria.Raw)
				fmt.Fprintf(out, "Query:    %s\n", formatQuery(outcome.Discover.Values()))
				for _, dropped := range outcome.Criteria.Dropped {
					fmt.Fprintf(out, "Dropped:  %s=%s (%s)\n", dropped.Field, dropped.Value, dropped.Reason)
				}
			}
			printMovies(out, outcome.Results)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showQuery, "show-query", false, "Print the extracted criteria and catalog parameters")
	return cmd
}

func newChatCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <request>",
		Short: "Print the criteria the language model extracts from a request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, _, err := ctx.pipeline()
			if err != nil {
				return err
			}
			message, err := pipeline.Extractor().Extract(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return userFacing(err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{"message": message})
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var (
		genres           []string
		country          string
		originalLanguage string
		from             string
		to               string
		minRating        string
		maxRating        string
		sortBy           string
		page             int
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Query the catalog directly with explicit filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			setIf := func(key, value string) {
				if value = strings.TrimSpace(value); value != "" {
					params.Set(key, value)
				}
			}
			setIf(tmdb.ParamGenres, strings.Join(genres, ","))
			setIf(tmdb.ParamOriginCountry, country)
			setIf(tmdb.ParamOriginalLanguage, originalLanguage)
			setIf(tmdb.ParamReleaseDateGTE, from)
			setIf(tmdb.ParamReleaseDateLTE, to)
			setIf(tmdb.ParamVoteAverageGTE, minRating)
			setIf(tmdb.ParamVoteAverageLTE, maxRating)
			setIf(tmdb.ParamSortBy, sortBy)
			if page > 0 {
				params.Set(tmdb.ParamPage, strconv.Itoa(page))
			}

			pipeline, _, err := ctx.pipeline()
			if err != nil {
				return err
			}
			normalized, err := pipeline.Normalizer().NormalizeParams(params)
			if err != nil {
				return userFacing(err)
			}
			resp, err := pipeline.Catalog().Discover(cmd.Context(), normalized.Query)
			if err != nil {
				return userFacing(err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string][]tmdb.Movie{"results": resp.Results})
			}
			printMovies(cmd.OutOrStdout(), resp.Results)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&genres, "genre", "g", nil, "Genre label or id (repeatable)")
	cmd.Flags().StringVar(&country, "country", "", "Origin country (ISO 3166-1 alpha-2)")
	cmd.Flags().StringVar(&originalLanguage, "original-language", "", "Original language (ISO 639-1)")
	cmd.Flags().StringVar(&from, "from", "", "Earliest release date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest release date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&minRating, "min-rating", "", "Minimum vote average (0-10)")
	cmd.Flags().StringVar(&maxRating, "max-rating", "", "Maximum vote average (0-10)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort key (default popularity.desc)")
	cmd.Flags().IntVar(&page, "page", 0, "Result page (default 1)")
	return cmd
}

// userFacing keeps the wrapped error for errors.Is while printing the single
// message a user should see.
func userFacing(err error) error {
	return &cliError{msg: services.UserMessage(err), err: err}
}

type cliError struct {
	msg string
	err error
}

func (e *cliError) Error() string { return e.msg }
func (e *cliError) Unwrap() error { return e.err }

func formatQuery(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+values.Get(key))
	}
	return strings.Join(parts, " ")
}
