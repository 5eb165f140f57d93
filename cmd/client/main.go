package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/olekukonko/tablewriter"
)

// Command line companion for the relay: register, login, browse the catalog,
// request sessions and listen for live notifications from a terminal.
func main() {
	server := flag.String("server", "http://localhost:8080", "Server base URL")
	token := flag.String("token", os.Getenv("SKILLSWAP_TOKEN"), "Bearer token (or SKILLSWAP_TOKEN)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	c := &client{server: strings.TrimRight(*server, "/"), token: *token}

	var err error
	switch args[0] {
	case "register":
		err = c.authenticate("/api/auth/register", args[1:])
	case "login":
		err = c.authenticate("/api/auth/login", args[1:])
	case "skills":
		err = c.listSkills()
	case "search":
		err = c.searchSkills(args[1:])
	case "sessions":
		err = c.listSessions()
	case "request":
		err = c.requestSession(args[1:])
	case "notify":
		err = c.notify(args[1:])
	case "listen":
		err = c.listen()
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		color.Error.Println(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`Usage: client [-server URL] [-token TOKEN] COMMAND

Commands:
  register EMAIL PASSWORD     Create an account and print a token
  login EMAIL PASSWORD        Print a fresh token
  skills                      List the full skill catalog
  search TERMS...             Full-text search the catalog
  sessions                    List your sessions
  request HOST_ID TITLE       Request a session with a host
  notify USER_ID MESSAGE...   Send a notification to a member
  listen                      Print live notifications until interrupted`)
}

type client struct {
	server string
	token  string
}

func (c *client) do(method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, c.server+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return fmt.Errorf("%s %s: %s (%s)", method, path, resp.Status, failure.Error)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *client) authenticate(path string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected EMAIL PASSWORD")
	}
	var result struct {
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, path, map[string]string{
		"email": args[0], "password": args[1],
	}, &result)
	if err != nil {
		return err
	}
	color.Success.Println("Authenticated.")
	fmt.Println(result.Token)
	return nil
}

type skillRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	UserID   string `json:"userId"`
}

func (c *client) listSkills() error {
	var skills []skillRow
	if err := c.do(http.MethodGet, "/api/skills", nil, &skills); err != nil {
		return err
	}
	printSkills(skills)
	return nil
}

func (c *client) searchSkills(terms []string) error {
	if len(terms) == 0 {
		return fmt.Errorf("expected search TERMS")
	}
	var skills []skillRow
	path := "/api/skills/search?q=" + strings.Join(terms, "+")
	if err := c.do(http.MethodGet, path, nil, &skills); err != nil {
		return err
	}
	printSkills(skills)
	return nil
}

func printSkills(skills []skillRow) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Category", "Offered By"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, s := range skills {
		table.Append([]string{s.ID, s.Name, s.Category, s.UserID})
	}
	table.Render()
}

type sessionRow struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Status   string    `json:"status"`
	UserID   string    `json:"userId"`
	HostID   string    `json:"hostId"`
	DateTime time.Time `json:"dateTime"`
}

func (c *client) listSessions() error {
	var sessions []sessionRow
	if err := c.do(http.MethodGet, "/api/sessions", nil, &sessions); err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "Status", "Requester", "Host", "When"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, s := range sessions {
		table.Append([]string{
			s.ID, s.Title, s.Status, s.UserID, s.HostID,
			s.DateTime.Local().Format("Mon 02 Jan 15:04"),
		})
	}
	table.Render()
	return nil
}

func (c *client) requestSession(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("expected HOST_ID TITLE")
	}
	var session sessionRow
	err := c.do(http.MethodPost, "/api/sessions/request", map[string]any{
		"hostId":   args[0],
		"title":    strings.Join(args[1:], " "),
		"dateTime": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}, &session)
	if err != nil {
		return err
	}
	color.Success.Printf("Session %s requested (%s)\n", session.ID, session.Status)
	return nil
}

func (c *client) notify(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("expected USER_ID MESSAGE")
	}
	err := c.do(http.MethodPost, "/api/notifications", map[string]any{
		"toUserId": args[0],
		"payload":  map[string]string{"message": strings.Join(args[1:], " ")},
	}, nil)
	if err != nil {
		return err
	}
	color.Success.Println("Notification accepted for relay.")
	return nil
}

// listen connects the websocket and prints every event until Ctrl-C.
func (c *client) listen() error {
	if c.token == "" {
		return fmt.Errorf("listen requires a token")
	}

	wsURL := strings.Replace(c.server, "http", "ws", 1) + "/ws?token=" + c.token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()
	color.Success.Println("Connected. Waiting for notifications...")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	for {
		var frame struct {
			Type       string          `json:"type"`
			FromUserID string          `json:"fromUserId"`
			Payload    json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}

		header := color.New(color.BgBlack, color.FgGreen).
			Render(fmt.Sprintf("[%s]", frame.Type))
		from := frame.FromUserID
		if from == "" {
			from = "system"
		}
		fmt.Printf("%s from %s: %s\n", header, from, string(frame.Payload))
	}
}
