package client

import (
	"fmt"
	"time"

	"github.com/msomdec/taskboard/internal/domain"
)

type wireUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func (u wireUser) toDomain() (domain.User, error) {
	createdAt, err := parseTime(u.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("user createdAt: %w", err)
	}
	return domain.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: createdAt,
	}, nil
}

type wireAuth struct {
	AccessToken string   `json:"accessToken"`
	User        wireUser `json:"user"`
}

type wireTask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func (t wireTask) toDomain() (domain.Task, error) {
	status, err := domain.ParseTaskStatus(t.Status)
	if err != nil {
		return domain.Task{}, err
	}
	createdAt, err := parseTime(t.CreatedAt)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task createdAt: %w", err)
	}
	updatedAt, err := parseTime(t.UpdatedAt)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task updatedAt: %w", err)
	}
	return domain.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

type wireTaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func toWirePatch(p domain.TaskPatch) wireTaskPatch {
	w := wireTaskPatch{Title: p.Title, Description: p.Description}
	if p.Status != nil {
		s := string(*p.Status)
		w.Status = &s
	}
	return w
}

type wireProfile struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
