package webserver

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/harborview-partners/panel/src/api/config"
	"github.com/harborview-partners/panel/src/api/data"
	"github.com/harborview-partners/panel/src/api/types"
	"github.com/harborview-partners/panel/src/pipeline"
)

const testSecret = "test-secret"

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "panel.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&types.Member{}, &types.Page{}, &types.Proposal{}, &types.ProposalVote{},
		&types.Stage{}, &types.Deal{}, &types.Company{}, &types.Contact{}, &types.Setting{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := pipeline.SeedStages(db); err != nil {
		t.Fatalf("seed stages: %v", err)
	}
	if err := db.Create(&types.Setting{Name: data.SettingQuorumPercentage, Value: "50"}).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	if err := data.LoadSettings(db); err != nil {
		t.Fatalf("load settings: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := config.Config{
		JWTSecret:      testSecret,
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	return &testServer{router: New(cfg, db, rdb), db: db, redis: mr}
}

func (s *testServer) addMember(t *testing.T, email, password, role string) types.Member {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	m := types.Member{Email: email, Name: email, PasswordHash: string(hash), Role: role}
	if err := s.db.Create(&m).Error; err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m
}

func (s *testServer) token(t *testing.T, m types.Member) string {
	t.Helper()
	tok, err := issueJWT(m.ID, m.Role, []byte(testSecret))
	if err != nil {
		t.Fatalf("issueJWT: %v", err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}
