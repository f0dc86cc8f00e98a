package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiMiddleware "github.com/weilandt/circ-api/internal/api/middleware"
	"github.com/weilandt/circ-api/internal/domain"
	"github.com/weilandt/circ-api/internal/service"
	"github.com/weilandt/circ-api/internal/service/auth"
)

const testSecret = "a-jwt-secret-that-is-at-least-32-chars"

var handlerNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeCirculation implements service.CirculationService with overridable
// behavior per test.
type fakeCirculation struct {
	searchFn     func(keyword string) ([]*domain.MediaItem, error)
	addFn        func(id, title, author string, category domain.Category, total int) (*domain.MediaItem, error)
	setCopiesFn  func(mediaID string, total int) (*domain.MediaItem, error)
	borrowFn     func(username, mediaID string) (*domain.LoanRecord, error)
	returnFn     func(loanID uuid.UUID) error
	overdueFn    func(username string) ([]*domain.LoanRecord, error)
	payFn        func(username string, amount decimal.Decimal) error
	reminderFn   func(username string) error
	overdueAllFn func() (map[string][]*domain.LoanRecord, error)
}

func (f *fakeCirculation) SearchMedia(ctx context.Context, keyword string) ([]*domain.MediaItem, error) {
	return f.searchFn(keyword)
}

func (f *fakeCirculation) AddMedia(ctx context.Context, id, title, author string, category domain.Category, total int) (*domain.MediaItem, error) {
	return f.addFn(id, title, author, category, total)
}

func (f *fakeCirculation) SetTotalCopies(ctx context.Context, mediaID string, total int) (*domain.MediaItem, error) {
	return f.setCopiesFn(mediaID, total)
}

func (f *fakeCirculation) Borrow(ctx context.Context, username, mediaID string) (*domain.LoanRecord, error) {
	return f.borrowFn(username, mediaID)
}

func (f *fakeCirculation) Return(ctx context.Context, loanID uuid.UUID) error {
	return f.returnFn(loanID)
}

func (f *fakeCirculation) CheckOverdue(ctx context.Context, username string) ([]*domain.LoanRecord, error) {
	if f.overdueFn == nil {
		return nil, nil
	}
	return f.overdueFn(username)
}

func (f *fakeCirculation) CheckOverdueAll(ctx context.Context) (map[string][]*domain.LoanRecord, error) {
	return f.overdueAllFn()
}

func (f *fakeCirculation) PayFine(ctx context.Context, username string, amount decimal.Decimal) error {
	return f.payFn(username, amount)
}

func (f *fakeCirculation) SendReminder(ctx context.Context, username string) error {
	return f.reminderFn(username)
}

// fakeMembership implements service.MembershipService.
type fakeMembership struct {
	registerFn  func(name, password, email string) (*domain.User, error)
	authFn      func(name, password string) (*domain.User, error)
	authAdminFn func(name, password string) (*domain.Admin, error)
	getUserFn   func(name string) (*domain.User, error)
}

func (f *fakeMembership) Register(ctx context.Context, name, password, email string) (*domain.User, error) {
	return f.registerFn(name, password, email)
}

func (f *fakeMembership) Authenticate(ctx context.Context, name, password string) (*domain.User, error) {
	return f.authFn(name, password)
}

func (f *fakeMembership) Unregister(ctx context.Context, name string) error {
	return nil
}

func (f *fakeMembership) GetUser(ctx context.Context, name string) (*domain.User, error) {
	return f.getUserFn(name)
}

func (f *fakeMembership) RegisterAdmin(ctx context.Context, name, password string) (*domain.Admin, error) {
	return nil, nil
}

func (f *fakeMembership) AuthenticateAdmin(ctx context.Context, name, password string) (*domain.Admin, error) {
	return f.authAdminFn(name, password)
}

func testTokenService() auth.TokenService {
	return auth.NewTestTokenService(testSecret, time.Hour, time.Now)
}

func authHeaderFor(t *testing.T, username string, role auth.Role) string {
	t.Helper()
	token, err := testTokenService().GenerateToken(context.Background(), username, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func testMedia(t *testing.T) *domain.MediaItem {
	t.Helper()
	item, err := domain.NewMediaItem("111", "Java Basics", "Yaman", domain.CategoryBook, 3)
	require.NoError(t, err)
	return item
}

func testUser(t *testing.T) *domain.User {
	t.Helper()
	user, err := domain.NewUser("yaman", "yaman@example.com", "password123")
	require.NoError(t, err)
	return user
}

// newTestRouter builds the protected route surface the server exposes, with
// the fakes behind it.
func newTestRouter(circ service.CirculationService, membership service.MembershipService) http.Handler {
	r := chi.NewRouter()
	authMw := apiMiddleware.NewAuthMiddleware(testTokenService())

	circHandler := NewCirculationHandler(circ, membership)
	catalogHandler := NewCatalogHandler(circ)
	authHandler := NewAuthHandler(membership, circ, testTokenService(), time.Hour)

	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/auth/refresh", authHandler.RefreshToken)

	r.Group(func(r chi.Router) {
		r.Use(authMw.Authenticate)
		r.Get("/api/media", catalogHandler.Search)
		r.Post("/api/loans", circHandler.Borrow)
		r.Post("/api/loans/{id}/return", circHandler.Return)
		r.Get("/api/me/overdue", circHandler.Overdue)
		r.Post("/api/me/fines/pay", circHandler.PayFine)
		r.Post("/api/me/reminder", circHandler.Reminder)

		r.Group(func(r chi.Router) {
			r.Use(authMw.RequireAdmin)
			r.Post("/api/media", catalogHandler.CreateMedia)
			r.Put("/api/media/{id}/copies", catalogHandler.UpdateCopies)
		})
	})

	return r
}

func doJSON(t *testing.T, handler http.Handler, method, path, authHeader string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates account and returns token pair", func(t *testing.T) {
		membership := &fakeMembership{
			registerFn: func(name, password, email string) (*domain.User, error) {
				user, err := domain.NewUser(name, email, password)
				require.NoError(t, err)
				return user, nil
			},
		}
		router := newTestRouter(&fakeCirculation{}, membership)

		rr := doJSON(t, router, http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Name:     "yaman",
			Email:    "yaman@example.com",
			Password: "password123",
		})

		require.Equal(t, http.StatusCreated, rr.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "yaman", resp.Username)
		assert.Equal(t, "member", resp.Role)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		router := newTestRouter(&fakeCirculation{}, &fakeMembership{})

		rr := doJSON(t, router, http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Name:     "yaman",
			Email:    "not-an-email",
			Password: "password123",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("member login freshens the overdue scan", func(t *testing.T) {
		scanned := false
		membership := &fakeMembership{
			authFn: func(name, password string) (*domain.User, error) {
				user, err := domain.NewUser(name, "yaman@example.com", password)
				require.NoError(t, err)
				return user, nil
			},
		}
		circ := &fakeCirculation{
			overdueFn: func(username string) ([]*domain.LoanRecord, error) {
				scanned = true
				return nil, nil
			},
		}
		router := newTestRouter(circ, membership)

		rr := doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{
			Name:     "yaman",
			Password: "password123",
		})

		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, scanned)
	})

	t.Run("wrong credentials yield 401", func(t *testing.T) {
		membership := &fakeMembership{
			authFn: func(name, password string) (*domain.User, error) {
				return nil, service.ErrInvalidCredentials
			},
			authAdminFn: func(name, password string) (*domain.Admin, error) {
				return nil, service.ErrInvalidCredentials
			},
		}
		router := newTestRouter(&fakeCirculation{}, membership)

		rr := doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{
			Name:     "yaman",
			Password: "wrong",
		})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("admin name logs in with admin role", func(t *testing.T) {
		membership := &fakeMembership{
			authFn: func(name, password string) (*domain.User, error) {
				return nil, service.ErrInvalidCredentials
			},
			authAdminFn: func(name, password string) (*domain.Admin, error) {
				return domain.NewAdmin(name, "hashed")
			},
		}
		router := newTestRouter(&fakeCirculation{}, membership)

		rr := doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{
			Name:     "librarian",
			Password: "adminpass",
		})

		require.Equal(t, http.StatusOK, rr.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "admin", resp.Role)
	})
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(&fakeCirculation{
		searchFn: func(keyword string) ([]*domain.MediaItem, error) { return nil, nil },
	}, &fakeMembership{})

	t.Run("missing header", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodGet, "/api/media", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodGet, "/api/media", "Bearer garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid member token passes", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodGet, "/api/media", authHeaderFor(t, "yaman", auth.RoleMember), nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("member token cannot manage the catalog", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/media", authHeaderFor(t, "yaman", auth.RoleMember), CreateMediaRequest{
			ID: "111", Title: "Java Basics", Category: "book", TotalCopies: 1,
		})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestCatalogEndpoints(t *testing.T) {
	t.Run("admin can add media", func(t *testing.T) {
		circ := &fakeCirculation{
			addFn: func(id, title, author string, category domain.Category, total int) (*domain.MediaItem, error) {
				return domain.NewMediaItem(id, title, author, category, total)
			},
		}
		router := newTestRouter(circ, &fakeMembership{})

		rr := doJSON(t, router, http.MethodPost, "/api/media", authHeaderFor(t, "librarian", auth.RoleAdmin), CreateMediaRequest{
			ID: "111", Title: "Java Basics", Author: "Yaman", Category: "book", TotalCopies: 3,
		})

		require.Equal(t, http.StatusCreated, rr.Code)
		var resp MediaResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Available)
	})

	t.Run("rejects an unknown category before the service runs", func(t *testing.T) {
		router := newTestRouter(&fakeCirculation{}, &fakeMembership{})

		rr := doJSON(t, router, http.MethodPost, "/api/media", authHeaderFor(t, "librarian", auth.RoleAdmin), CreateMediaRequest{
			ID: "111", Title: "Java Basics", Category: "vinyl", TotalCopies: 3,
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("copy count below available maps to 400", func(t *testing.T) {
		circ := &fakeCirculation{
			setCopiesFn: func(mediaID string, total int) (*domain.MediaItem, error) {
				return nil, domain.ErrInvalidCopyCount
			},
		}
		router := newTestRouter(circ, &fakeMembership{})

		rr := doJSON(t, router, http.MethodPut, "/api/media/111/copies", authHeaderFor(t, "librarian", auth.RoleAdmin), UpdateCopiesRequest{
			TotalCopies: 1,
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestBorrowEndpoint(t *testing.T) {
	t.Run("returns the created loan", func(t *testing.T) {
		media := testMedia(t)
		circ := &fakeCirculation{
			borrowFn: func(username, mediaID string) (*domain.LoanRecord, error) {
				return domain.NewLoanRecord(media, handlerNow)
			},
		}
		router := newTestRouter(circ, &fakeMembership{})

		rr := doJSON(t, router, http.MethodPost, "/api/loans", authHeaderFor(t, "yaman", auth.RoleMember), BorrowRequest{
			MediaID: "111",
		})

		require.Equal(t, http.StatusCreated, rr.Code)
		var resp LoanResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "111", resp.MediaID)
		assert.Equal(t, handlerNow.AddDate(0, 0, 28), resp.DueAt)
	})

	t.Run("no copies maps to 409", func(t *testing.T) {
		circ := &fakeCirculation{
			borrowFn: func(username, mediaID string) (*domain.LoanRecord, error) {
				return nil, service.ErrMediaUnavailable
			},
		}
		router := newTestRouter(circ, &fakeMembership{})

		rr := doJSON(t, router, http.MethodPost, "/api/loans", authHeaderFor(t, "yaman", auth.RoleMember), BorrowRequest{
			MediaID: "111",
		})

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("blocked account maps to 422", func(t *testing.T) {
		circ := &fakeCirculation{
			borrowFn: func(username, mediaID string) (*domain.LoanRecord, error) {
				return nil, service.ErrUserBlocked
			},
		}
		router := newTestRouter(circ, &fakeMembership{})

		rr := doJSON(t, router, http.MethodPost, "/api/loans", authHeaderFor(t, "yaman", auth.RoleMember), BorrowRequest{
			MediaID: "111",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}

func TestReturnEndpoint(t *testing.T) {
	returned := uuid.Nil
	circ := &fakeCirculation{
		returnFn: func(loanID uuid.UUID) error {
			returned = loanID
			return nil
		},
	}
	router := newTestRouter(circ, &fakeMembership{})

	loanID := uuid.New()
	rr := doJSON(t, router, http.MethodPost, "/api/loans/"+loanID.String()+"/return", authHeaderFor(t, "yaman", auth.RoleMember), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, loanID, returned)

	rr = doJSON(t, router, http.MethodPost, "/api/loans/not-a-uuid/return", authHeaderFor(t, "yaman", auth.RoleMember), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOverdueEndpoint(t *testing.T) {
	media := testMedia(t)
	user := testUser(t)
	user.AddFine(decimal.NewFromInt(60))

	loan, err := domain.NewLoanRecord(media, handlerNow.AddDate(0, 0, -40))
	require.NoError(t, err)

	circ := &fakeCirculation{
		overdueFn: func(username string) ([]*domain.LoanRecord, error) {
			return []*domain.LoanRecord{loan}, nil
		},
	}
	membership := &fakeMembership{
		getUserFn: func(name string) (*domain.User, error) { return user, nil },
	}
	router := newTestRouter(circ, membership)

	rr := doJSON(t, router, http.MethodGet, "/api/me/overdue", authHeaderFor(t, "yaman", auth.RoleMember), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp OverdueResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Overdue, 1)
	assert.Equal(t, "60", resp.FineBalance)
	assert.True(t, resp.Blocked)
}

func TestPayFineEndpoint(t *testing.T) {
	user := testUser(t)
	membership := &fakeMembership{
		getUserFn: func(name string) (*domain.User, error) { return user, nil },
	}

	t.Run("positive amount is forwarded", func(t *testing.T) {
		var paid decimal.Decimal
		circ := &fakeCirculation{
			payFn: func(username string, amount decimal.Decimal) error {
				paid = amount
				return nil
			},
		}
		router := newTestRouter(circ, membership)

		rr := doJSON(t, router, http.MethodPost, "/api/me/fines/pay", authHeaderFor(t, "yaman", auth.RoleMember), map[string]string{
			"amount": "25.50",
		})

		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, decimal.RequireFromString("25.50").Equal(paid))
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		router := newTestRouter(&fakeCirculation{}, membership)

		rr := doJSON(t, router, http.MethodPost, "/api/me/fines/pay", authHeaderFor(t, "yaman", auth.RoleMember), map[string]string{
			"amount": "-5",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestReminderEndpoint(t *testing.T) {
	user := testUser(t)
	media := testMedia(t)
	loan, err := domain.NewLoanRecord(media, handlerNow.AddDate(0, 0, -40))
	require.NoError(t, err)
	user.Loans = append(user.Loans, loan)

	var reminded string
	circ := &fakeCirculation{
		reminderFn: func(username string) error {
			reminded = username
			return nil
		},
	}
	membership := &fakeMembership{
		getUserFn: func(name string) (*domain.User, error) { return user, nil },
	}
	router := newTestRouter(circ, membership)

	rr := doJSON(t, router, http.MethodPost, "/api/me/reminder", authHeaderFor(t, "yaman", auth.RoleMember), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "yaman", reminded)

	var resp ReminderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.OverdueCount)
	assert.True(t, resp.Sent)
}
