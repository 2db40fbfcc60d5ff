package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vanshika/moviegraph/internal/apperr"
	"github.com/vanshika/moviegraph/internal/domain"
)

// GraphRepository abstracts the persistence operations required by the catalog.
type GraphRepository interface {
	EnsureConstraints(ctx context.Context) error
	UpsertUser(ctx context.Context, userID, name string) (domain.User, error)
	UpsertMovie(ctx context.Context, movie domain.Movie) (domain.Movie, error)
	UpsertPerson(ctx context.Context, person domain.Person, movieID int64, roles []string) (domain.Person, error)
	UpsertRating(ctx context.Context, userID string, movieID int64, rating int, timestamp int64) (domain.Rating, error)
	FindUser(ctx context.Context, userID string) (domain.User, bool, error)
	FindMovie(ctx context.Context, movieID int64) (domain.Movie, bool, error)
	FindUserRating(ctx context.Context, userID string, movieID int64) (domain.UserRating, bool, error)
}

// CatalogService validates inbound payloads before handing them to the graph repository.
type CatalogService struct {
	repo     GraphRepository
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewCatalogService wires the service with its repository. A nil logger is
// replaced by a no-op one.
func NewCatalogService(repo GraphRepository, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CatalogService{
		repo:     repo,
		validate: v,
		logger:   logger.Named("catalog"),
		now:      time.Now,
	}
}

// WithClock overrides the time source used to stamp ratings without a timestamp.
func (s *CatalogService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.now = nowFn
	}
}

// CreateUser gets or creates a user.
func (s *CatalogService) CreateUser(ctx context.Context, input UserInput) (domain.User, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = normalizeName(input.Name)
	if err := s.check("create_user", input); err != nil {
		return domain.User{}, err
	}
	return s.repo.UpsertUser(ctx, input.UserID, input.Name)
}

// CreateMovie gets or creates a movie.
func (s *CatalogService) CreateMovie(ctx context.Context, input MovieInput) (domain.Movie, error) {
	input.Title = normalizeName(input.Title)
	input.Countries = normalizeList(input.Countries)
	input.Languages = normalizeList(input.Languages)
	if err := s.check("create_movie", input); err != nil {
		return domain.Movie{}, err
	}
	return s.repo.UpsertMovie(ctx, input.toDomain())
}

// AddPerson credits a person on a movie. Roles are trimmed and deduplicated first.
func (s *CatalogService) AddPerson(ctx context.Context, input PersonInput) (domain.Person, error) {
	input.Name = normalizeName(input.Name)
	input.Roles = normalizeRoles(input.Roles)
	if err := s.check("add_person", input); err != nil {
		return domain.Person{}, err
	}
	return s.repo.UpsertPerson(ctx, input.toDomain(), input.MovieID, input.Roles)
}

// RateMovie records a user's rating of a movie.
func (s *CatalogService) RateMovie(ctx context.Context, input RatingInput) (domain.Rating, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	if err := s.check("rate_movie", input); err != nil {
		return domain.Rating{}, err
	}
	timestamp := s.now().Unix()
	if input.Timestamp != nil {
		timestamp = *input.Timestamp
	}
	return s.repo.UpsertRating(ctx, input.UserID, input.MovieID, input.Rating, timestamp)
}

// GetUser looks a user up by id.
func (s *CatalogService) GetUser(ctx context.Context, userID string) (domain.User, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.User{}, false, apperr.Validation("get_user", "userId is required")
	}
	return s.repo.FindUser(ctx, userID)
}

// GetMovie looks a movie up by id.
func (s *CatalogService) GetMovie(ctx context.Context, movieID int64) (domain.Movie, bool, error) {
	return s.repo.FindMovie(ctx, movieID)
}

// GetUserRating returns the rating userID gave movieID.
func (s *CatalogService) GetUserRating(ctx context.Context, userID string, movieID int64) (domain.UserRating, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.UserRating{}, false, apperr.Validation("get_user_rating", "userId is required")
	}
	return s.repo.FindUserRating(ctx, userID, movieID)
}

func (s *CatalogService) check(op string, input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Validation(op, "%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return apperr.Validation(op, "%s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL", fe.Field())
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}
