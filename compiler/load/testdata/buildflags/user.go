package buildflags

//tabula:entity
type User struct {
	Id    int
	Login string
}
