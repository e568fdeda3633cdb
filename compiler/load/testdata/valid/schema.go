package valid

// Movie is a catalog entry.
//
//tabula:entity search=Title
type Movie struct {
	Id              int
	Title           string
	KinopoiskRating float32
	PosterUrl       string `tabula:"poster_url"`
	Draft           bool   `tabula:"-"`
	notes           string
}

//tabula:entity table=UserFavorites search=
type Favorite struct {
	Id      int64
	UserId  int
	MovieId int
}

// Plain is not an entity.
type Plain struct {
	Name string
}
