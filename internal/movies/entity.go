// Package movies is the movie catalog built on tabula repositories: movies,
// users and their favorite movies.
package movies

//go:generate go run github.com/syssam/tabula/cmd/tabulagen .

// Movie is a catalog entry.
//
//tabula:entity
type Movie struct {
	Id              int     `json:"id" yaml:"id"`
	Title           string  `json:"title" yaml:"title"`
	KinopoiskRating float32 `json:"kinopoisk_rating" yaml:"kinopoisk_rating"`
	KinopoiskVotes  int     `json:"kinopoisk_votes" yaml:"kinopoisk_votes"`
	Lists           string  `json:"lists,omitempty" yaml:"lists,omitempty"`
	ReleaseDate     string  `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	Country         string  `json:"country,omitempty" yaml:"country,omitempty"`
	Director        string  `json:"director,omitempty" yaml:"director,omitempty"`
	Genre           string  `json:"genre,omitempty" yaml:"genre,omitempty"`
	Quality         string  `json:"quality,omitempty" yaml:"quality,omitempty"`
	AgeRating       string  `json:"age_rating,omitempty" yaml:"age_rating,omitempty"`
	Duration        string  `json:"duration,omitempty" yaml:"duration,omitempty"`
	Series          string  `json:"series,omitempty" yaml:"series,omitempty"`
	Description     string  `json:"description,omitempty" yaml:"description,omitempty"`
	PosterUrl       string  `json:"poster_url,omitempty" yaml:"poster_url,omitempty"`
	TrailerUrl      string  `json:"trailer_url,omitempty" yaml:"trailer_url,omitempty"`
}

// User is a registered account. Password holds a bcrypt hash.
//
//tabula:entity search=Login
type User struct {
	Id       int    `json:"id" yaml:"id"`
	Email    string `json:"email" yaml:"email"`
	Login    string `json:"login" yaml:"login"`
	Password string `json:"-" yaml:"-"`
	Role     string `json:"role" yaml:"role"`
}

// Favorite links a user to a bookmarked movie.
//
//tabula:entity table=UserFavorites
type Favorite struct {
	Id      int `json:"id" yaml:"id"`
	UserId  int `json:"user_id" yaml:"user_id"`
	MovieId int `json:"movie_id" yaml:"movie_id"`
}

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
