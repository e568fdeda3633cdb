package movies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/predicate"
	"github.com/syssam/tabula/repository"
)

// DefaultTop is the number of movies listed when no search term is given.
const DefaultTop = 12

// Catalog errors.
var (
	ErrMovieNotFound      = errors.New("movies: movie not found")
	ErrUserNotFound       = errors.New("movies: user not found")
	ErrLoginTaken         = errors.New("movies: login already exists")
	ErrInvalidCredentials = errors.New("movies: invalid login or password")
	ErrAlreadyFavorite    = errors.New("movies: movie already in favorites")
	ErrNotFavorite        = errors.New("movies: movie not in favorites")
)

// Tables names the tables of the catalog entities. Empty names keep the
// entity defaults.
type Tables struct {
	Movies    string
	Users     string
	Favorites string
}

// Catalog implements the movie site use cases.
type Catalog struct {
	Movies    *repository.Strict[Movie, *Movie]
	Users     *repository.Strict[User, *User]
	Favorites *repository.Strict[Favorite, *Favorite]

	log  *slog.Logger
	cost int
}

// New returns a catalog whose repositories share drv, log and opts. A nil
// log uses slog.Default.
func New(drv repository.Driver, tables Tables, log *slog.Logger, opts ...repository.Option) (*Catalog, error) {
	if log == nil {
		log = slog.Default()
	}
	opts = append([]repository.Option{repository.WithLogger(log)}, opts...)
	movies, err := repository.NewStrict[Movie](drv, withTable(opts, tables.Movies)...)
	if err != nil {
		return nil, err
	}
	users, err := repository.NewStrict[User](drv, withTable(opts, tables.Users)...)
	if err != nil {
		return nil, err
	}
	favorites, err := repository.NewStrict[Favorite](drv, withTable(opts, tables.Favorites)...)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		Movies:    movies,
		Users:     users,
		Favorites: favorites,
		log:       log.With("component", "catalog"),
		cost:      bcrypt.DefaultCost,
	}, nil
}

func withTable(opts []repository.Option, table string) []repository.Option {
	if table == "" {
		return opts
	}
	return append(opts[:len(opts):len(opts)], repository.WithTable(table))
}

// TopRated returns up to n movies by descending rating. A non-positive n
// lists every movie.
func (c *Catalog) TopRated(ctx context.Context, n int) ([]*Movie, error) {
	return c.Movies.GetAll(ctx, repository.OrderBy(MovieFieldKinopoiskRating), repository.Take(n))
}

// Browse returns the DefaultTop best rated movies, or the movies whose title
// contains search.
func (c *Catalog) Browse(ctx context.Context, search string) ([]*Movie, error) {
	if strings.TrimSpace(search) == "" {
		return c.TopRated(ctx, DefaultTop)
	}
	return c.Movies.Search(ctx, search)
}

// Movie returns the movie with the given id.
func (c *Catalog) Movie(ctx context.Context, id int64) (*Movie, error) {
	m, err := c.Movies.GetByID(ctx, id)
	if tabula.IsNotFound(err) {
		return nil, fmt.Errorf("%w: id %d", ErrMovieNotFound, id)
	}
	return m, err
}

// UserByLogin returns the user with the given login.
func (c *Catalog) UserByLogin(ctx context.Context, login string) (*User, error) {
	u, err := c.Users.FirstOrDefault(ctx, UserColumns.Login.EQ(login))
	if tabula.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, login)
	}
	return u, err
}

// Signup is a registration request.
type Signup struct {
	Login    string
	Password string
	Email    string
	Role     string // RoleUser or RoleAdmin; anything else becomes RoleUser
}

// Signup registers a user. Logins are unique.
func (c *Catalog) Signup(ctx context.Context, s Signup) (*User, error) {
	if s.Login == "" || s.Password == "" {
		return nil, fmt.Errorf("%w: login and password are required", ErrInvalidCredentials)
	}
	switch _, err := c.UserByLogin(ctx, s.Login); {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrLoginTaken, s.Login)
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), c.cost)
	if err != nil {
		return nil, fmt.Errorf("movies: hash password: %w", err)
	}
	role := s.Role
	if role != RoleAdmin {
		role = RoleUser
	}
	u, err := c.Users.Create(ctx, &User{Email: s.Email, Login: s.Login, Password: string(hash), Role: role})
	if err != nil {
		return nil, err
	}
	c.log.InfoContext(ctx, "user signed up", "user_id", u.Id, "role", u.Role)
	return u, nil
}

// SignIn returns the user whose login and password match.
func (c *Catalog) SignIn(ctx context.Context, login, password string) (*User, error) {
	u, err := c.UserByLogin(ctx, login)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// FavoriteMovies returns the movies the user bookmarked, oldest bookmark
// first. Favorites of deleted movies are skipped.
func (c *Catalog) FavoriteMovies(ctx context.Context, userID int64) ([]*Movie, error) {
	favs, err := c.Favorites.Where(ctx, FavoriteColumns.UserId.EQ(int(userID)))
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(favs))
	for i, f := range favs {
		ids[i] = f.MovieId
	}
	ms, missing, err := c.moviesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		c.log.WarnContext(ctx, "favorite of missing movie", "user_id", userID, "movie_id", id)
	}
	return ms, nil
}

// AddFavorite bookmarks a movie for a user.
func (c *Catalog) AddFavorite(ctx context.Context, userID, movieID int64) (*Favorite, error) {
	if _, err := c.Movie(ctx, movieID); err != nil {
		return nil, err
	}
	if _, err := c.favorite(ctx, userID, movieID); err == nil {
		return nil, ErrAlreadyFavorite
	} else if !errors.Is(err, ErrNotFavorite) {
		return nil, err
	}
	return c.Favorites.Create(ctx, &Favorite{UserId: int(userID), MovieId: int(movieID)})
}

// RemoveFavorite removes a bookmark.
func (c *Catalog) RemoveFavorite(ctx context.Context, userID, movieID int64) error {
	f, err := c.favorite(ctx, userID, movieID)
	if err != nil {
		return err
	}
	return c.Favorites.Delete(ctx, int64(f.Id))
}

func (c *Catalog) favorite(ctx context.Context, userID, movieID int64) (*Favorite, error) {
	f, err := c.Favorites.FirstOrDefault(ctx, predicate.And(
		FavoriteColumns.UserId.EQ(int(userID)),
		FavoriteColumns.MovieId.EQ(int(movieID)),
	))
	if tabula.IsNotFound(err) {
		return nil, ErrNotFavorite
	}
	return f, err
}
