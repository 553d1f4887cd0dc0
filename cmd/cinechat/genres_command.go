package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"cinechat/internal/catalog/tmdb"
	"cinechat/internal/genre"
	"cinechat/internal/search"
)

func newGenresCommand(ctx *commandContext) *cobra.Command {
	genresCmd := &cobra.Command{
		Use:         "genres",
		Short:       "List the genre vocabulary",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			all := genre.All()
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string][]genre.Genre{"genres": all})
			}
			rows := make([][]string, 0, len(all))
			for _, g := range all {
				rows = append(rows, []string{g.Label, strconv.Itoa(g.ID)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Label", "ID"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	genresCmd.AddCommand(newGenresCheckCommand(ctx))
	return genresCmd
}

type genreDrift struct {
	ID     int    `json:"id"`
	Label  string `json:"label"`
	Remote string `json:"remote,omitempty"`
	Status string `json:"status"`
}

func newGenresCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compare the genre vocabulary with the catalog's genre list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			catalog, err := search.NewCatalog(cfg)
			if err != nil {
				return err
			}
			remote, err := catalog.Genres(cmd.Context())
			if err != nil {
				return userFacing(err)
			}

			report := compareGenres(genre.All(), remote)
			drift := 0
			for _, entry := range report {
				if entry.Status != "ok" {
					drift++
				}
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, map[string]any{"genres": report, "drift": drift}); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(report))
				for _, entry := range report {
					rows = append(rows, []string{strconv.Itoa(entry.ID), entry.Label, entry.Remote, entry.Status})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(out, []string{"ID", "Label", "Catalog", "Status"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
			}
			if drift > 0 {
				return errors.New("genre vocabulary differs from the catalog")
			}
			if !ctx.jsonOutput() {
				fmt.Fprintln(cmd.OutOrStdout(), "Genre vocabulary matches the catalog")
			}
			return nil
		},
	}
}

func compareGenres(local []genre.Genre, remote []tmdb.Genre) []genreDrift {
	byID := make(map[int]string, len(remote))
	for _, r := range remote {
		byID[r.ID] = r.Name
	}
	seen := make(map[int]bool, len(local))
	report := make([]genreDrift, 0, len(local))
	for _, g := range local {
		seen[g.ID] = true
		name, ok := byID[g.ID]
		entry := genreDrift{ID: g.ID, Label: g.Label, Remote: name, Status: "ok"}
		switch {
		case !ok:
			entry.Status = "missing"
		case name != g.Label:
			entry.Status = "renamed"
		}
		report = append(report, entry)
	}
	var extra []genreDrift
	for id, name := range byID {
		if !seen[id] {
			extra = append(extra, genreDrift{ID: id, Remote: name, Status: "unmapped"})
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].ID < extra[j].ID })
	return append(report, extra...)
}
