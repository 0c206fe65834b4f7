package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const devSigningKey = "dev-secret-key-change-in-production"

// TestContext talks to a running coopreg instance and keeps the state one
// scenario builds up.
type TestContext struct {
	BaseURL    string
	signingKey []byte
	issuer     string
	client     *http.Client

	tenantID string
	// users maps a role name to the user id acting in that role.
	users map[string]string
	role  string

	lastStatus int
	lastBody   []byte
	saved      map[string]string
}

func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:    envOr("E2E_BASE_URL", "http://localhost:8080"),
		signingKey: []byte(envOr("JWT_SIGNING_KEY", devSigningKey)),
		issuer:     envOr("JWT_ISSUER", "coopreg"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset starts a fresh tenant so scenarios never see each other's data.
func (tc *TestContext) Reset() {
	tc.tenantID = uuid.NewString()
	tc.users = map[string]string{}
	tc.role = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.saved = map[string]string{}
}

func (tc *TestContext) ActAs(role string) {
	if _, ok := tc.users[role]; !ok {
		tc.users[role] = uuid.NewString()
	}
	tc.role = role
}

func (tc *TestContext) token() (string, error) {
	if tc.role == "" {
		return "", nil
	}
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   tc.users[tc.role],
		"role":      tc.role,
		"tenant_id": tc.tenantID,
		"iss":       tc.issuer,
		"iat":       now.Unix(),
		"exp":       now.Add(time.Hour).Unix(),
	}).SignedString(tc.signingKey)
}

func (tc *TestContext) POST(path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return tc.do(http.MethodPost, path, bytes.NewReader(payload))
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, tc.BaseURL+tc.Expand(path), body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := tc.token()
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

// GetResponseField reads a dotted path such as "application.status" from the
// last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var current any
	if err := json.Unmarshal(tc.lastBody, &current); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		if current, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %q not found in response: %s", field, tc.lastBody)
		}
	}
	return current, nil
}

func (tc *TestContext) GetLastResponseStatus() int  { return tc.lastStatus }
func (tc *TestContext) GetLastResponseBody() []byte { return tc.lastBody }
func (tc *TestContext) UserID(role string) string   { return tc.users[role] }

func (tc *TestContext) Save(name, value string) { tc.saved[name] = value }

// Expand replaces {name} placeholders with saved values.
func (tc *TestContext) Expand(s string) string {
	for k, v := range tc.saved {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
