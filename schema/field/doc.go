// Package field describes entity fields and coerces database values into them.
//
// An entity lists its fields in declaration order:
//
//	func (Movie) Schema() []field.Descriptor {
//		return []field.Descriptor{
//			field.Int("Id"),
//			field.String("Title"),
//			field.Float32("KinopoiskRating"),
//			field.String("PosterUrl").StorageKey("poster_url"),
//		}
//	}
//
// # Field Types
//
// Supported Go types are string, int, int32, int64, float32, float64 and
// bool. Their semantic kinds are string, integer, floating-point and boolean.
//
// # Coercion
//
// Assign converts a raw driver value into a field pointer:
//
//	var rating float32
//	err := field.Assign(&rating, float64(8.6)) // ok
//	err = field.Assign(&rating, 1e300)          // ErrOutOfRange
//
//	var votes int32
//	err = field.Assign(&votes, 2.5)             // ErrNotIntegral
//	err = field.Assign(&votes, []byte("1024"))  // ok
//
// Widening always succeeds. Narrowing succeeds only when the value fits.
package field
