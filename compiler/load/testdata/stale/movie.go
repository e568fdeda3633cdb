package stale

//tabula:entity
type Movie struct {
	Id    int
	Title string
}
