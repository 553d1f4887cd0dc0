package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"cinechat/internal/catalog/tmdb"
	"cinechat/internal/genre"
)

func printMovies(out io.Writer, movies []tmdb.Movie) {
	if len(movies) == 0 {
		fmt.Fprintln(out, "No movies matched")
		return
	}
	headers := []string{"#", "ID", "Title", "Released", "Rating", "Genres"}
	rows := make([][]string, 0, len(movies))
	for i, movie := range movies {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(movie.ID, 10),
			movie.DisplayTitle(),
			fallback(movie.ReleaseDate, "-"),
			strconv.FormatFloat(movie.VoteAverage, 'f', 1, 64),
			genreLabels(movie.GenreIDs),
		})
	}
	fmt.Fprintln(out, renderTable(out, headers, rows, []columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft}))
}

func genreLabels(ids []int) string {
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if label, ok := genre.Label(id); ok {
			labels = append(labels, label)
		}
	}
	return strings.Join(labels, ", ")
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
