package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"sync"
	"time"

	"dripmateapi/config"
	"dripmateapi/llm"
	"dripmateapi/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	FakeUserEmail    = "email@example.com"
	FakeUserPassword = "password123"

	// matches the value dbhelper.SetupTestDB exports
	defaultJWTSecret = "test-secret"
)

func jwtSecret() string {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	return defaultJWTSecret
}

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(jwtSecret()))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func NewJSONAuthRequestRaw(method string, target string, userPk string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

// NewMultipartAuthRequest builds a POST with a single file part and optional
// plain form fields.
func NewMultipartAuthRequest(target string, userPk string, fileName string, contentType string, content []byte, fields map[string]string) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		writer.WriteField(key, value)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		log.Fatalf("Error when creating multipart file part: %s", err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func FakeUser(db *gorm.DB) *models.UserAccount {
	return FakeUserV2(db, "OurName", FakeUserEmail)
}

func FakeUserV2(db *gorm.DB, userName string, email string) *models.UserAccount {
	if email == "" {
		email = FakeUserEmail
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(FakeUserPassword), bcrypt.MinCost)
	if err != nil {
		log.Fatalf("Error when hashing fake user password: %s", err)
	}
	ageGroup := "25-34"
	user := &models.UserAccount{
		Name:     userName,
		Email:    email,
		Password: string(hash),
		Gender:   "male",
		AgeGroup: &ageGroup,
		Platform: models.PlatformIOS,
		LastIp:   "123.122.122.122",
	}
	db.Create(&user)

	tokenDb := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      "android",
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU",
		Active:        true,
	}
	db.Save(&tokenDb)
	db.First(&user, user.ID)
	return user
}

func TestConfig(tmpDir string) *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      jwtSecret(),
			TokenExpiryHrs: 1,
		},
		LLM: config.LLMConfig{
			DefaultProvider: string(llm.KindOllama),
		},
		Storage: config.StorageConfig{
			BucketName: "dripmate-test",
		},
		Uploads: config.UploadConfig{
			TmpDir: tmpDir,
		},
	}
}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	if awsService.MockUrl != "" {
		return awsService.MockUrl, nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/read/%s", fileKey), nil
}

// URLCacheMock fails every lookup when Err is set so callers exercise their
// direct presign fallback.
type URLCacheMock struct {
	Err error
}

func (m URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("https://cached.example.com/%s", objectKey), nil
}

// ScriptedProvider answers with Replies in order and records every request.
type ScriptedProvider struct {
	ProviderKind llm.ProviderKind
	Replies      []string
	Err          error

	mu       sync.Mutex
	requests []llm.Request
	// whether the image file was on disk when the request arrived
	imageSeen []bool
}

func (p *ScriptedProvider) Kind() llm.ProviderKind {
	if p.ProviderKind == "" {
		return llm.KindOllama
	}
	return p.ProviderKind
}

func (p *ScriptedProvider) Generate(ctx context.Context, req llm.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)
	seen := false
	if req.Image != nil {
		_, err := os.Stat(req.Image.Path)
		seen = err == nil
	}
	p.imageSeen = append(p.imageSeen, seen)

	if p.Err != nil {
		return "", &llm.InvocationError{Provider: p.Kind(), Cause: p.Err}
	}
	if len(p.Replies) == 0 {
		return "", &llm.InvocationError{Provider: p.Kind(), Cause: llm.ErrEmptyResponse}
	}
	reply := p.Replies[0]
	p.Replies = p.Replies[1:]
	return reply, nil
}

func (p *ScriptedProvider) Requests() []llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.Request(nil), p.requests...)
}

func (p *ScriptedProvider) ImageSeen() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.imageSeen...)
}

type EnqueuerMock struct {
	mu    sync.Mutex
	Tasks []*asynq.Task
	Err   error
}

func (m *EnqueuerMock) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.Tasks = append(m.Tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(m.Tasks)), Type: task.Type()}, nil
}
