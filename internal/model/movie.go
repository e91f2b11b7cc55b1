package model

// TMDBImageBaseURL prefixes poster and backdrop paths returned by the catalog.
const TMDBImageBaseURL = "https://image.tmdb.org/t/p/"

// MovieRef is a movie as returned by the external catalog.  The board never
// mutates it; it is copied into shelf and grid records verbatim.
//
// Fields:
//  ID          – catalog identifier.
//  Title       – localized title.
//  Overview    – short synopsis.
//  PosterPath  – image path relative to the catalog image host (nullable).
//  ReleaseDate – release date as reported by the catalog (YYYY-MM-DD).
// The remaining fields are carried along for display only.
type MovieRef struct {
    ID               int64    `json:"id"`
    Title            string   `json:"title"`
    Overview         string   `json:"overview"`
    PosterPath       *string  `json:"poster_path"`
    ReleaseDate      string   `json:"release_date"`
    OriginalTitle    string   `json:"original_title,omitempty"`
    OriginalLanguage string   `json:"original_language,omitempty"`
    VoteAverage      float64  `json:"vote_average,omitempty"`
    VoteCount        int      `json:"vote_count,omitempty"`
    Popularity       float64  `json:"popularity,omitempty"`
    BackdropPath     *string  `json:"backdrop_path,omitempty"`
    Adult            bool     `json:"adult,omitempty"`
    GenreIDs         []int    `json:"genre_ids,omitempty"`
    Video            bool     `json:"video,omitempty"`
}

// PosterURL returns the absolute poster URL for the given TMDB size bucket
// (for example "w500").  It returns "" when the movie has no poster.
func (m MovieRef) PosterURL(size string) string {
    if m.PosterPath == nil || *m.PosterPath == "" {
        return ""
    }
    if size == "" {
        size = "w500"
    }
    return TMDBImageBaseURL + size + *m.PosterPath
}
