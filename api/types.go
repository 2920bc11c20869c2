package api

import (
	"github.com/solocreator/planner/models"
	"github.com/solocreator/planner/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	actionHandler actionHandler
	exportHandler exportHandler
	backupHandler backupHandler
	healthHandler healthHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	OK       bool     `json:"ok"`
	Error    string   `json:"error"`
	Status   string   `json:"status"`
	Field    string   `json:"field,omitempty"`
	Details  string   `json:"details,omitempty"`
	Cause    string   `json:"cause,omitempty"`
	Messages []string `json:"errors,omitempty"`
}

// envelope holds the fields every action body may carry.
type envelope struct {
	Action string `json:"action"`
	CSRF   string `json:"csrf"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK   bool   `json:"ok"`
	CSRF string `json:"csrf"`
}

// meResponse has a null id when nobody is logged in.
type meResponse struct {
	ID    *uint  `json:"id"`
	Email string `json:"email,omitempty"`
	CSRF  string `json:"csrf,omitempty"`
}

type createPostRequest struct {
	Post services.NewPost `json:"post"`
}

type updatePostRequest struct {
	ID   uint               `json:"id"`
	Post services.PostPatch `json:"post"`
}

type duplicatePostRequest struct {
	ID        uint              `json:"id"`
	Platforms []models.Platform `json:"platforms"`
}

type idRequest struct {
	ID uint `json:"id"`
}

type createTemplateRequest struct {
	Name       string `json:"name"`
	DaysOfWeek string `json:"days_of_week"`
	Platforms  string `json:"platforms"`
}

type instantiateWeekRequest struct {
	TemplateID uint   `json:"template_id"`
	StartDate  string `json:"start_date"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type createdResponse struct {
	OK bool `json:"ok"`
	ID uint `json:"id"`
}

type duplicatedResponse struct {
	OK     bool   `json:"ok"`
	NewIDs []uint `json:"new_ids"`
}

type instantiatedResponse struct {
	OK      bool   `json:"ok"`
	Created []uint `json:"created"`
}

type snapshotResponse struct {
	OK       bool   `json:"ok"`
	Location string `json:"location"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	StartedAt string `json:"started_at"`
}
