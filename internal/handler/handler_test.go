package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"instagram-agent/internal/audit"
	"instagram-agent/internal/instagram"
	"instagram-agent/internal/model"
	"instagram-agent/internal/quota"
	"instagram-agent/internal/tenant"
	"instagram-agent/internal/webhook"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Tenant{}, &model.APIKey{}, &model.Message{}, &model.WebhookEvent{}))
	return db
}

type testEnv struct {
	db        *gorm.DB
	directory *tenant.Directory
	limiter   *quota.Limiter
	auditLog  *audit.Log
	api       *fakeAPI
	router    *webhook.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	log := zap.NewNop()
	api := &fakeAPI{}
	limiter := quota.NewLimiter(db, log)
	auditLog := audit.NewLog(db, log)
	factory := func(tn *model.Tenant) instagram.API { return api }

	return &testEnv{
		db:        db,
		directory: tenant.NewDirectory(db, log),
		limiter:   limiter,
		auditLog:  auditLog,
		api:       api,
		router:    webhook.NewRouter(limiter, auditLog, factory, log),
	}
}

func (env *testEnv) factory() instagram.Factory {
	return func(tn *model.Tenant) instagram.API { return env.api }
}

func (env *testEnv) registerTenant(t *testing.T, mutate func(*tenant.RegisterInput)) *model.Tenant {
	t.Helper()
	input := tenant.RegisterInput{
		Name:               "Loja Morada",
		Email:              fmt.Sprintf("%d@example.com", time.Now().UnixNano()),
		AccessToken:        "token",
		InstagramAccountID: "ig-1",
		PageID:             "page-1",
	}
	if mutate != nil {
		mutate(&input)
	}
	tn, err := env.directory.Register(input)
	require.NoError(t, err)
	return tn
}

// fakeAPI mirrors the outbound adapter so handler tests stay off the
// network.
type fakeAPI struct {
	sent      []string
	failSends bool
}

func (f *fakeAPI) SendMessage(recipientID, text string) (instagram.Result, error) {
	if f.failSends {
		return nil, errors.New("graph api: status 400: invalid token")
	}
	f.sent = append(f.sent, text)
	return instagram.Result{"message_id": "mid-1"}, nil
}

func (f *fakeAPI) SendMedia(recipientID, mediaURL, mediaType string) (instagram.Result, error) {
	if f.failSends {
		return nil, errors.New("graph api: status 400: invalid token")
	}
	f.sent = append(f.sent, mediaURL)
	return instagram.Result{"message_id": "mid-1"}, nil
}

func (f *fakeAPI) ReplyToComment(commentID, text string) (instagram.Result, error) {
	if f.failSends {
		return nil, errors.New("graph api: status 400: invalid token")
	}
	f.sent = append(f.sent, text)
	return instagram.Result{"id": "reply-1"}, nil
}

// newRequestContext builds an echo context for one request and returns
// it with the response recorder.
func newRequestContext(method, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
