package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/config"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"github.com/tidwall/gjson"
)

// Table names
const (
	TableProjects    = "projects"
	TableTasks       = "tasks"
	TableDocuments   = "rag_documents"
	TableTeamMembers = "team_members"
)

// Client talks to the backend REST and functions endpoints.
type Client struct {
	baseURL        string
	restPath       string
	functionsPath  string
	searchFunction string
	ingestFunction string
	apiKey         string
	userID         string
	httpClient     *http.Client
	log            *logging.Logger
}

// NewClient creates a backend client from cfg.
func NewClient(cfg config.BackendConfig, log *logging.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		restPath:       "/" + strings.Trim(cfg.RestPath, "/"),
		functionsPath:  "/" + strings.Trim(cfg.FunctionsPath, "/"),
		searchFunction: cfg.SearchFunction,
		ingestFunction: cfg.IngestFunction,
		apiKey:         cfg.APIKey,
		userID:         cfg.UserID,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		log:            logging.Or(log).WithPrefix("backend"),
	}
}

// UserID returns the user the client acts for.
func (c *Client) UserID() string {
	return c.userID
}

// ListProjects returns all projects, newest first.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	err := c.rest(ctx, "list projects", http.MethodGet, TableProjects, url.Values{
		"select": {"*"},
		"order":  {"created_at.desc"},
	}, nil, &out)
	return out, err
}

// CreateProject inserts a project and returns the stored row.
func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (Project, error) {
	if in.UserID == "" {
		in.UserID = c.userID
	}
	var rows []Project
	if err := c.rest(ctx, "create project", http.MethodPost, TableProjects, nil, in, &rows); err != nil {
		return Project{}, err
	}
	if len(rows) == 0 {
		return Project{}, dasherr.BackendRequestFailed("create project", http.StatusOK, fmt.Errorf("no row returned"))
	}
	return rows[0], nil
}

// UpdateProject patches the project with id and returns the stored row.
func (c *Client) UpdateProject(ctx context.Context, id string, updates map[string]any) (Project, error) {
	var rows []Project
	err := c.rest(ctx, "update project", http.MethodPatch, TableProjects, url.Values{
		"id": {"eq." + id},
	}, updates, &rows)
	if err != nil {
		return Project{}, err
	}
	if len(rows) == 0 {
		return Project{}, dasherr.BackendNotFound(TableProjects, id)
	}
	return rows[0], nil
}

// ListTasks returns all tasks, newest first.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var out []Task
	err := c.rest(ctx, "list tasks", http.MethodGet, TableTasks, url.Values{
		"select": {"*"},
		"order":  {"created_at.desc"},
	}, nil, &out)
	return out, err
}

// CreateTask inserts a task and returns the stored row.
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (Task, error) {
	if in.UserID == "" {
		in.UserID = c.userID
	}
	var rows []Task
	if err := c.rest(ctx, "create task", http.MethodPost, TableTasks, nil, in, &rows); err != nil {
		return Task{}, err
	}
	if len(rows) == 0 {
		return Task{}, dasherr.BackendRequestFailed("create task", http.StatusOK, fmt.Errorf("no row returned"))
	}
	return rows[0], nil
}

// ListDocuments returns knowledge-base documents, newest first.
func (c *Client) ListDocuments(ctx context.Context) ([]RagDocument, error) {
	var out []RagDocument
	err := c.rest(ctx, "list documents", http.MethodGet, TableDocuments, url.Values{
		"select": {"id,content,metadata,created_at"},
		"order":  {"created_at.desc"},
	}, nil, &out)
	return out, err
}

// ListTeamMembers returns the members assigned to projectID.
func (c *Client) ListTeamMembers(ctx context.Context, projectID string) ([]TeamMember, error) {
	var out []TeamMember
	err := c.rest(ctx, "list team members", http.MethodGet, TableTeamMembers, url.Values{
		"select":     {"*"},
		"project_id": {"eq." + projectID},
	}, nil, &out)
	return out, err
}

// AddDocument sends a document to the ingestion function, which embeds and
// stores it. The function may answer with the stored row, a wrapper object,
// or nothing useful; the input is echoed back in the latter case.
func (c *Client) AddDocument(ctx context.Context, in DocumentInput) (RagDocument, error) {
	if in.UserID == "" {
		in.UserID = c.userID
	}
	body, err := c.function(ctx, "add document", c.ingestFunction, in)
	if err != nil {
		return RagDocument{}, err
	}

	doc := RagDocument{Content: in.Content, Metadata: in.Metadata}
	row := gjson.ParseBytes(body)
	if r := row.Get("document"); r.IsObject() {
		row = r
	}
	if id := row.Get("id"); id.Exists() {
		doc.ID = id.String()
	}
	if ts := row.Get("created_at"); ts.Exists() {
		doc.CreatedAt = ts.Time()
	}
	return doc, nil
}

// Search runs semantic search for query. The function answers with a JSON
// array of hits, an object wrapping them under "results", or an object with
// an "error" field.
func (c *Client) Search(ctx context.Context, query, userID string, limit int) ([]SearchResult, error) {
	body, err := c.function(ctx, "semantic search", c.searchFunction, map[string]any{
		"query":  query,
		"userId": userID,
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(body)
	switch {
	case parsed.IsArray():
	case parsed.Get("error").Exists():
		return nil, dasherr.BackendRequestFailed("semantic search", http.StatusOK, fmt.Errorf("%s", errorText(parsed.Get("error"))))
	case parsed.Get("results").IsArray():
		parsed = parsed.Get("results")
	default:
		return nil, dasherr.BackendRequestFailed("semantic search", http.StatusOK, fmt.Errorf("unexpected response shape"))
	}

	var results []SearchResult
	if err := json.Unmarshal([]byte(parsed.Raw), &results); err != nil {
		return nil, dasherr.BackendRequestFailed("semantic search", http.StatusOK, err)
	}
	return results, nil
}

func (c *Client) rest(ctx context.Context, op, method, table string, query url.Values, in, out any) error {
	endpoint := c.baseURL + c.restPath + "/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	body, err := c.do(ctx, op, method, endpoint, in)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return dasherr.BackendRequestFailed(op, http.StatusOK, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) function(ctx context.Context, op, name string, in any) ([]byte, error) {
	return c.do(ctx, op, http.MethodPost, c.baseURL+c.functionsPath+"/"+name, in)
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, in any) ([]byte, error) {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, dasherr.BackendRequestFailed(op, 0, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, dasherr.BackendRequestFailed(op, 0, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=representation")
	}

	c.log.Debug("backend request", logging.Method(method), logging.Path(req.URL.Path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, dasherr.BackendRequestFailed(op, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dasherr.BackendRequestFailed(op, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorText(gjson.ParseBytes(body))
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		if msg == "" {
			msg = resp.Status
		}
		c.log.Warn("backend request failed", logging.Status(resp.StatusCode), logging.Reason(msg))
		return nil, dasherr.BackendRequestFailed(op, resp.StatusCode, fmt.Errorf("%s", msg))
	}
	return body, nil
}

// errorText pulls a human message out of the error shapes PostgREST and the
// functions runtime produce.
func errorText(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.String()
	}
	for _, path := range []string{"message", "error.message", "error", "msg", "details"} {
		if r := v.Get(path); r.Exists() && r.Type == gjson.String {
			return r.String()
		}
	}
	return ""
}
