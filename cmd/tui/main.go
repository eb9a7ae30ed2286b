package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type Poll struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Questions []Question     `json:"questions"`
	Status    string         `json:"status"`
	Votes     map[string]int `json:"votes"`
}

type CreatePollResponse struct {
	Success bool   `json:"success"`
	PollID  string `json:"pollId"`
}

type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type WSEvent struct {
	Type    string `json:"type"`
	Poll    *Poll  `json:"poll,omitempty"`
	Action  string `json:"action,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

type Client struct {
	baseURL     string
	currentPoll string
	httpClient  *http.Client
	wsConn      *websocket.Conn
	wsDone      chan struct{}
	scanner     *bufio.Scanner
}

func NewClient(baseURL string, scanner *bufio.Scanner) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		scanner:    scanner,
	}
}

func (c *Client) prompt(label string) (string, error) {
	fmt.Print(label)
	if !c.scanner.Scan() {
		return "", fmt.Errorf("input closed")
	}
	return strings.TrimSpace(c.scanner.Text()), nil
}

func (c *Client) makeRequest(method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Kind != "" {
			return nil, fmt.Errorf("%s: %s", e.Kind, e.Message)
		}
		return nil, fmt.Errorf("%s - %s", resp.Status, string(raw))
	}
	return raw, nil
}

func (c *Client) CreatePoll() error {
	name, err := c.prompt("Poll name: ")
	if err != nil {
		return err
	}

	var questions []Question
	for {
		text, err := c.prompt("Question (empty to finish): ")
		if err != nil {
			return err
		}
		if text == "" {
			break
		}
		options, err := c.prompt("Options (comma separated): ")
		if err != nil {
			return err
		}
		q := Question{Text: text}
		for _, o := range strings.Split(options, ",") {
			if o = strings.TrimSpace(o); o != "" {
				q.Options = append(q.Options, o)
			}
		}
		questions = append(questions, q)
	}

	raw, err := c.makeRequest(http.MethodPost, "/polls", map[string]any{
		"name":      name,
		"questions": questions,
	})
	if err != nil {
		return err
	}

	var resp CreatePollResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return err
	}
	c.currentPoll = resp.PollID
	fmt.Printf("Poll created: %s\n", resp.PollID)
	return nil
}

func (c *Client) SelectPoll() error {
	id, err := c.prompt("Poll id: ")
	if err != nil {
		return err
	}
	c.currentPoll = id
	return c.ShowPoll()
}

func (c *Client) ShowPoll() error {
	if c.currentPoll == "" {
		return fmt.Errorf("no poll selected")
	}
	raw, err := c.makeRequest(http.MethodGet, "/polls/"+c.currentPoll, nil)
	if err != nil {
		return err
	}
	var p Poll
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	printPoll(p)
	return nil
}

func (c *Client) Vote() error {
	if c.currentPoll == "" {
		return fmt.Errorf("no poll selected")
	}
	rawIndex, err := c.prompt("Question number: ")
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return fmt.Errorf("question number must be an integer")
	}
	option, err := c.prompt("Option: ")
	if err != nil {
		return err
	}

	_, err = c.makeRequest(http.MethodPost, "/polls/"+c.currentPoll+"/votes", map[string]any{
		"questionIndex": index,
		"option":        option,
	})
	return err
}

func (c *Client) ChangeStatus() error {
	if c.currentPoll == "" {
		return fmt.Errorf("no poll selected")
	}
	status, err := c.prompt("Status (paused, playing, stopped, next): ")
	if err != nil {
		return err
	}
	_, err = c.makeRequest(http.MethodPatch, "/polls/"+c.currentPoll+"/status", map[string]string{"status": status})
	return err
}

func (c *Client) DownloadResults() error {
	if c.currentPoll == "" {
		return fmt.Errorf("no poll selected")
	}
	raw, err := c.makeRequest(http.MethodGet, "/polls/"+c.currentPoll+"/results.csv", nil)
	if err != nil {
		return err
	}
	fmt.Print(string(raw))
	return nil
}

// Watch connects to the poll's live channel and prints every update until
// the connection closes.
func (c *Client) Watch() error {
	if c.currentPoll == "" {
		return fmt.Errorf("no poll selected")
	}
	if c.wsConn != nil {
		return fmt.Errorf("already watching")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/polls/" + c.currentPoll + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return err
	}
	c.wsConn = conn
	c.wsDone = make(chan struct{})

	go c.listen()
	fmt.Println("Watching poll updates")
	return nil
}

func (c *Client) listen() {
	defer close(c.wsDone)

	for {
		var event WSEvent
		if err := c.wsConn.ReadJSON(&event); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				fmt.Printf("\nlive channel closed: %v\n", err)
			}
			return
		}

		switch event.Type {
		case "poll update":
			if event.Action == "next" {
				fmt.Println("\n>> next question")
			}
			if event.Poll != nil {
				printPoll(*event.Poll)
			}
		case "error":
			fmt.Printf("\nerror %s: %s\n", event.Kind, event.Message)
		}
	}
}

func (c *Client) Close() {
	if c.wsConn != nil {
		_ = c.wsConn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.wsConn.Close()
		<-c.wsDone
		c.wsConn = nil
	}
}

func printPoll(p Poll) {
	fmt.Printf("\n%s [%s] %s\n", p.Name, p.Status, p.ID)
	for i, q := range p.Questions {
		fmt.Printf("  %d. %s\n", i, q.Text)
		for _, o := range q.Options {
			fmt.Printf("     - %s: %d\n", o, p.Votes[o])
		}
	}

	var extra []string
	for option := range p.Votes {
		listed := false
		for _, q := range p.Questions {
			for _, o := range q.Options {
				listed = listed || o == option
			}
		}
		if !listed {
			extra = append(extra, option)
		}
	}
	sort.Strings(extra)
	for _, option := range extra {
		fmt.Printf("  * %s: %d\n", option, p.Votes[option])
	}
}

func main() {
	addr := flag.String("addr", "http://localhost:5000/api/v1", "livepoll API base URL")
	flag.Parse()

	scanner := bufio.NewScanner(os.Stdin)
	client := NewClient(*addr, scanner)
	defer client.Close()

	for {
		fmt.Println("\n=== Livepoll Console Client ===")
		if client.currentPoll != "" {
			fmt.Printf("Current poll: %s\n", client.currentPoll)
		}
		fmt.Println("1. Create poll")
		fmt.Println("2. Select poll")
		fmt.Println("3. Show poll")
		fmt.Println("4. Vote")
		fmt.Println("5. Change status")
		fmt.Println("6. Watch live updates")
		fmt.Println("7. Download results")
		fmt.Println("0. Exit")
		fmt.Print("Choose: ")

		if !scanner.Scan() {
			return
		}

		var err error
		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			err = client.CreatePoll()
		case "2":
			err = client.SelectPoll()
		case "3":
			err = client.ShowPoll()
		case "4":
			err = client.Vote()
		case "5":
			err = client.ChangeStatus()
		case "6":
			err = client.Watch()
		case "7":
			err = client.DownloadResults()
		case "0":
			return
		default:
			fmt.Println("Unknown choice")
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}
