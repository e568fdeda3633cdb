package failure

import "time"

//tabula:entity
type Screening struct {
	Title string
	At    time.Time
}
