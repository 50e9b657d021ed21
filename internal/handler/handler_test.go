package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/N-Srikar/Athena/internal/errs"
	"github.com/N-Srikar/Athena/internal/handler"
	"github.com/N-Srikar/Athena/internal/model"
	"github.com/N-Srikar/Athena/pkg/auth"
	"github.com/N-Srikar/Athena/pkg/validate"

	service_mocks "github.com/N-Srikar/Athena/internal/handler/mocks"
)

func newTestHandler(t *testing.T) (*handler.Handler, *service_mocks.MockBorrowService, *service_mocks.MockCatalogService, *service_mocks.MockAuthService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	borrowSvc := service_mocks.NewMockBorrowService(c)
	catalogSvc := service_mocks.NewMockCatalogService(c)
	authSvc := service_mocks.NewMockAuthService(c)
	statsSvc := service_mocks.NewMockStatsService(c)
	log := zap.NewExample().Named("test")
	return handler.New(borrowSvc, catalogSvc, authSvc, statsSvc, log), borrowSvc, catalogSvc, authSvc
}

func TestHandler_RequestBorrow(t *testing.T) {
	t.Parallel()
	ctx := auth.SetAuthContext(context.Background(), "reader@athena.io", string(model.RoleMember))
	requestDate := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	dueDate := requestDate.Add(14 * 24 * time.Hour)

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		ctx          context.Context
		response     response
	}{
		{
			name: "created",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					RequestBorrow(ctx, model.CreateBorrowRequest{
						BookUid:  "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
						Username: "reader@athena.io",
					}).
					Return(model.BorrowRecord{
						RecordUid:   "4b291bb1-bc25-4dcd-a4b1-07cbe0e03372",
						Username:    "reader@athena.io",
						BookUid:     "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
						RequestDate: requestDate,
						DueDate:     dueDate,
						Status:      model.StatusPending,
					}, nil)
			},
			body: `{"bookUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27"}`,
			ctx:  ctx,
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"recordUid":"4b291bb1-bc25-4dcd-a4b1-07cbe0e03372","username":"reader@athena.io","bookUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","requestDate":"2026-03-01T10:00:00Z","dueDate":"2026-03-15T10:00:00Z","status":"PENDING","fine":0,"finePaid":false}`,
			},
		},
		{
			name: "err. book unavailable",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					RequestBorrow(ctx, gomock.Any()).
					Return(model.BorrowRecord{}, errs.ErrBookUnavailable)
			},
			body: `{"bookUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27"}`,
			ctx:  ctx,
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"book not available"}`,
			},
		},
		{
			name:         "err. no username in context",
			mockBehavior: func(r *service_mocks.MockBorrowService) {},
			body:         `{"bookUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27"}`,
			ctx:          context.Background(),
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"username is required"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, borrowSvc, _, _ := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/borrows", h.RequestBorrow)

			r := httptest.NewRequest(http.MethodPost, "/borrows", strings.NewReader(tt.body))
			r = r.WithContext(tt.ctx)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(borrowSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ApproveBorrow(t *testing.T) {
	t.Parallel()
	const recordUid = "4b291bb1-bc25-4dcd-a4b1-07cbe0e03372"
	requestDate := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	approvedAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ApproveBorrow(context.Background(), recordUid).
					Return(model.BorrowRecord{
						RecordUid:   recordUid,
						Username:    "reader@athena.io",
						BookUid:     "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
						RequestDate: requestDate,
						DueDate:     requestDate.Add(14 * 24 * time.Hour),
						ApprovedAt:  &approvedAt,
						Status:      model.StatusApproved,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"recordUid":"4b291bb1-bc25-4dcd-a4b1-07cbe0e03372","username":"reader@athena.io","bookUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","requestDate":"2026-03-01T10:00:00Z","dueDate":"2026-03-15T10:00:00Z","approvedAt":"2026-03-02T09:30:00Z","status":"APPROVED","fine":0,"finePaid":false}`,
			},
		},
		{
			name: "err. invalid transition",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ApproveBorrow(context.Background(), recordUid).
					Return(model.BorrowRecord{}, errors.Wrap(errs.ErrInvalidTransition, "RETURNED -> APPROVED"))
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"RETURNED -> APPROVED: invalid status transition"}`,
			},
		},
		{
			name: "err. not found",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ApproveBorrow(context.Background(), recordUid).
					Return(model.BorrowRecord{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
		{
			name: "err. no copies left",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ApproveBorrow(context.Background(), recordUid).
					Return(model.BorrowRecord{}, errs.ErrInventoryExhausted)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"no copies available"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, borrowSvc, _, _ := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/borrows/:recordUid/approve", h.ApproveBorrow)

			r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/borrows/%s/approve", recordUid), http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(borrowSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ReturnBorrow(t *testing.T) {
	t.Parallel()
	const recordUid = "4b291bb1-bc25-4dcd-a4b1-07cbe0e03372"
	requestDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	dueDate := requestDate.Add(14 * 24 * time.Hour)
	approvedAt := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	returnedAt := dueDate.Add(20 * 24 * time.Hour)

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok. twenty days late",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ReturnBorrow(context.Background(), recordUid, model.ReturnBorrowRequest{Date: &returnedAt}).
					Return(model.BorrowRecord{
						RecordUid:   recordUid,
						Username:    "reader@athena.io",
						BookUid:     "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
						RequestDate: requestDate,
						DueDate:     dueDate,
						ApprovedAt:  &approvedAt,
						ReturnedAt:  &returnedAt,
						Status:      model.StatusReturned,
						Fine:        100,
					}, nil)
			},
			body: `{"date":"2026-04-04T00:00:00Z"}`,
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"recordUid":"4b291bb1-bc25-4dcd-a4b1-07cbe0e03372","username":"reader@athena.io","bookUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","requestDate":"2026-03-01T00:00:00Z","dueDate":"2026-03-15T00:00:00Z","approvedAt":"2026-03-02T00:00:00Z","returnedAt":"2026-04-04T00:00:00Z","status":"RETURNED","fine":100,"finePaid":false}`,
			},
		},
		{
			name: "err. not approved yet",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					ReturnBorrow(context.Background(), recordUid, model.ReturnBorrowRequest{}).
					Return(model.BorrowRecord{}, errors.Wrap(errs.ErrInvalidTransition, "PENDING -> RETURNED"))
			},
			body: `{}`,
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"PENDING -> RETURNED: invalid status transition"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, borrowSvc, _, _ := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/borrows/:recordUid/return", h.ReturnBorrow)

			r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/borrows/%s/return", recordUid), strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(borrowSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CheckAvailable(t *testing.T) {
	t.Parallel()
	const bookUid = "f7cdc58f-2caf-4b15-9727-f89dcc629b27"

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					CheckAvailable(context.Background(), bookUid).
					Return(model.AvailableResponse{BookUid: bookUid, AvailableCopies: 2}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"bookUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","availableCopies":2}`,
			},
		},
		{
			name: "err. not found",
			mockBehavior: func(r *service_mocks.MockBorrowService) {
				r.EXPECT().
					CheckAvailable(context.Background(), bookUid).
					Return(model.AvailableResponse{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, borrowSvc, _, _ := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/books/:bookUid/available", h.CheckAvailable)

			r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/books/%s/available", bookUid), http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(borrowSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetBooks(t *testing.T) {
	t.Parallel()

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		target       string
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					ListBooks(context.Background(), model.BookFilter{Author: "Bjarne Stroustrup"}, 1, 10).
					Return(model.ListBooks{
						Paging: model.Paging{Page: 1, PageSize: 10, TotalElements: 1},
						Items: []model.Book{
							{
								BookUid:         "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
								Title:           "The C++ Programming Language",
								Author:          "Bjarne Stroustrup",
								Category:        "Programming",
								TotalCopies:     3,
								AvailableCopies: 2,
							},
						},
					}, nil)
			},
			target: "/books?author=Bjarne+Stroustrup&page=1&size=10",
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":1,"pageSize":10,"totalElements":1,"items":[{"bookUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","title":"The C++ Programming Language","author":"Bjarne Stroustrup","category":"Programming","totalCopies":3,"availableCopies":2}]}`,
			},
		},
		{
			name:         "err. page invalid",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			target:       "/books?page=abc",
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"page is invalid"}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					ListBooks(context.Background(), model.BookFilter{}, 0, 0).
					Return(model.ListBooks{}, errors.New("db internal"))
			},
			target: "/books",
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _, catalogSvc, _ := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/books", h.GetBooks)

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(catalogSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok. zero copies",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					CreateBook(context.Background(), model.CreateBookRequest{
						Title:  "Out-of-print pamphlet",
						Author: "Anon",
					}).
					Return(model.Book{
						BookUid: "9a1e2f3c-5b6d-4c7e-8f90-123456789abc",
						Title:   "Out-of-print pamphlet",
						Author:  "Anon",
					}, nil)
			},
			body: `{"title":"Out-of-print pamphlet","author":"Anon","totalCopies":0}`,
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"bookUid":"9a1e2f3c-5b6d-4c7e-8f90-123456789abc","title":"Out-of-print pamphlet","author":"Anon","category":"","totalCopies":0,"availableCopies":0}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					CreateBook(context.Background(), gomock.Any()).
					Return(model.Book{}, errors.New("db internal"))
			},
			body: `{"title":"The C++ Programming Language","author":"Bjarne Stroustrup","totalCopies":3}`,
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _, catalogSvc, _ := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/books", h.CreateBook)

			r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(catalogSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockAuthService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					Login(context.Background(), model.AuthRequest{Email: "reader@athena.io", Password: "secret-pass"}).
					Return(model.AuthResponse{AccessToken: "token", ExpiresIn: 86400}, nil)
			},
			body: `{"email":"reader@athena.io","password":"secret-pass"}`,
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"accessToken":"token","expiresIn":86400}`,
			},
		},
		{
			name: "err. invalid credentials",
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					Login(context.Background(), gomock.Any()).
					Return(model.AuthResponse{}, errs.ErrInvalidCredentials)
			},
			body: `{"email":"reader@athena.io","password":"wrong"}`,
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"invalid credentials"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _, _, authSvc := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/login", h.Login)

			r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(authSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
