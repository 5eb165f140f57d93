package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

// BaseSuite drives the relay over its public surface only: REST calls plus
// websocket dials against a live server named by SERVER_ADDR.
type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("SERVER_ADDR not set, skipping e2e scenarios")
	}
}

// Step prints a colorized scenario step header in logs
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Call performs a JSON request and decodes the response into out (may be nil).
func (s *BaseSuite) Call(method, path, token string, body, out any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	if s.Config.DebugJSON && body != nil {
		s.T().Logf("%s %s >> %s", method, path, buf.String())
	}

	req, err := http.NewRequest(method, s.Config.ServerAddr+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })

	if out != nil && resp.StatusCode < 300 {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
		if s.Config.DebugJSON {
			dump, _ := json.Marshal(out)
			s.T().Logf("%s %s << %s", method, path, dump)
		}
	}
	return resp
}

// RegisterUser creates a throwaway account and returns its token and id.
// Email is made unique per run so scenarios can be replayed against the same
// database.
func (s *BaseSuite) RegisterUser(name string) (token, userID string) {
	email := fmt.Sprintf("%s-%d@e2e.local", name, time.Now().UnixNano())
	var result struct {
		Token string `json:"token"`
	}
	resp := s.Call(http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": email, "password": "Str0ng!Passw0rd"}, &result)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var me struct {
		ID string `json:"id"`
	}
	resp = s.Call(http.MethodGet, "/api/users/me", result.Token, nil, &me)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	return result.Token, me.ID
}

// DialWS opens an authenticated websocket to the relay.
func (s *BaseSuite) DialWS(token string) *websocket.Conn {
	wsURL := strings.Replace(s.Config.ServerAddr, "http", "ws", 1) + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

// Frame is the outbound wire shape delivered to websocket clients.
type Frame struct {
	Type       string          `json:"type"`
	FromUserID string          `json:"fromUserId"`
	Payload    json.RawMessage `json:"payload"`
}

// ReadFrame blocks until the next event or fails the test after timeout.
func (s *BaseSuite) ReadFrame(conn *websocket.Conn, timeout time.Duration) Frame {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(timeout)))
	var frame Frame
	s.Require().NoError(conn.ReadJSON(&frame))
	return frame
}
