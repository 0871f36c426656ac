package handler

import (
	"time"

	"github.com/msomdec/taskboard/internal/domain"
)

// UserDTO is the JSON representation of a user. The password hash never leaves the server.
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// AuthResponseDTO is returned by login and register.
type AuthResponseDTO struct {
	AccessToken string  `json:"accessToken"`
	User        UserDTO `json:"user"`
}

func toAuthResponseDTO(res *domain.AuthResult) AuthResponseDTO {
	return AuthResponseDTO{
		AccessToken: res.AccessToken,
		User:        toUserDTO(&res.User),
	}
}

// TaskDTO is the JSON representation of a task.
type TaskDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTaskDTOs(tasks []domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = toTaskDTO(&tasks[i])
	}
	return dtos
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

func (p profileRequest) toDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{Name: p.Name, Email: p.Email, Avatar: p.Avatar}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (u updateTaskRequest) toDomain() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{Title: u.Title, Description: u.Description}
	if u.Status != nil {
		status, err := domain.ParseTaskStatus(*u.Status)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.Status = &status
	}
	return patch, nil
}
