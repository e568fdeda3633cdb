//go:build groups

package buildflags

//tabula:entity table=Groups
type Group struct {
	Id   int
	Name string
}
