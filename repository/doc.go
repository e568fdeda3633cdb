// Package repository is the generic data-access API over entity types.
//
// A repository is bound to one entity type and one table. Every operation
// acquires a connection from the Driver, builds a statement, executes it,
// maps the rows and releases the connection on every path.
//
//	drv, err := sql.Open(dialect.SQLite, "", "file:movies.db")
//	if err != nil {
//		return err
//	}
//	repo, err := repository.New[movies.Movie](drv, repository.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	top, err := repo.GetAll(ctx, repository.OrderBy("KinopoiskRating"), repository.Take(10))
//
// Two calling conventions share one configuration. Repository is lenient:
// execution and mapping failures are logged with the operation, table and a
// call id, and the call returns nil or an empty slice. Strict returns every
// error, and *tabula.NotFoundError when a lookup, update or delete matches
// no row. Both return *tabula.ShapeError and *tabula.UnsupportedOperatorError
// immediately.
//
// Predicates name fields; they are resolved to quoted storage columns:
//
//	fav, err := favorites.FirstOrDefault(ctx, predicate.And(
//		predicate.FieldEQ("UserId", userID),
//		predicate.FieldEQ("MovieId", movieID),
//	))
//
// WithCache caches reads in a tabula.Cache. Create, Update and Delete drop
// every cached read of the table.
package repository
