// Package schema describes entity types for tabula.
//
// An entity is a plain struct with an Id field. It exposes an explicit field
// table instead of being inspected through reflection:
//
//	type Movie struct {
//		Id              int
//		Title           string
//		KinopoiskRating float32
//	}
//
//	func (*Movie) Schema() []field.Descriptor {
//		return []field.Descriptor{
//			field.Int("Id"),
//			field.String("Title"),
//			field.Float32("KinopoiskRating"),
//		}
//	}
//
//	func (m *Movie) Values() []any   { return []any{m.Id, m.Title, m.KinopoiskRating} }
//	func (m *Movie) Pointers() []any { return []any{&m.Id, &m.Title, &m.KinopoiskRating} }
//
// The tabulagen command writes these methods for structs marked with a
// //tabula:entity comment.
//
// # Descriptors
//
// Describe validates the field table once per type and caches the result:
//
//	desc, err := schema.Describe[Movie]()
//	desc.Table        // "Movies"
//	desc.IDColumn()   // "Id"
//	desc.Search       // "Title"
//
// The default table is the English plural of the type name. Implement
// TableName to override it and SearchField to choose the searched field.
package schema
