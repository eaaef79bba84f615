// Package backend is the client for the hosted backend-as-a-service: PostgREST
// style tables for projects, tasks, documents and team members, plus the
// serverless functions for semantic search and document ingestion.
package backend

import "time"

// Project is a row of the projects table
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	Progress    int       `json:"progress"`
	StartDate   string    `json:"start_date,omitempty"`
	EndDate     string    `json:"end_date,omitempty"`
	Client      string    `json:"client,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Task is a row of the tasks table
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	DueDate     string    `json:"due_date,omitempty"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentMetadata is the metadata stored with every knowledge-base document
type DocumentMetadata struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// RagDocument is a row of the rag_documents table
type RagDocument struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	Metadata  DocumentMetadata `json:"metadata"`
	CreatedAt time.Time        `json:"created_at"`
}

// TeamMember is a row of the team_members table
type TeamMember struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Email     string `json:"email,omitempty"`
}

// SearchResult is one hit returned by the semantic-search function
type SearchResult struct {
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity"`
}

// ProjectInput is the insert payload for a project
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Client      string `json:"client,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

// TaskInput is the insert payload for a task
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

// DocumentInput is the ingestion payload for a knowledge-base document
type DocumentInput struct {
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
	UserID   string           `json:"userId,omitempty"`
}
