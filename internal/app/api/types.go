package api

import (
	"strings"
	"time"

	"zimage/internal/app/user"
)

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobDone      JobStatus = "done"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Pending reports whether the job may still change status on its own.
func (s JobStatus) Pending() bool {
	return s == JobQueued || s == JobRunning
}

// Terminal reports whether the job has finished, successfully or not.
func (s JobStatus) Terminal() bool {
	return !s.Pending()
}

// Job is one generation request. Optional fields are pointers so "absent" stays visible.
type Job struct {
	ID             string    `json:"id"`
	Status         JobStatus `json:"status"`
	Prompt         string    `json:"prompt"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Steps          int       `json:"steps,omitempty"`
	Seed           int64     `json:"seed,omitempty"`
	ImageURL       *string   `json:"image_url"`
	ErrorMessage   *string   `json:"error_message"`
	CreatedAt      string    `json:"created_at"`
	StartedAt      *string   `json:"started_at"`
	FinishedAt     *string   `json:"finished_at"`
	ElapsedSeconds *float64  `json:"elapsed_seconds"`
	QueuePosition  *int      `json:"queue_position"`
	QueueOverload  bool      `json:"queue_overload"`
	IsPublic       bool      `json:"is_public"`
	IsAnonymous    bool      `json:"is_anonymous"`
}

// HasImage reports whether the job produced an image that can be downloaded.
func (j *Job) HasImage() bool {
	return j.ImageURL != nil && *j.ImageURL != ""
}

// CreateJobRequest is the body of a job submission. A nil Seed lets the backend pick one.
type CreateJobRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	Steps          int    `json:"steps,omitempty"`
	Seed           *int64 `json:"seed,omitempty"`
}

// JobList is one page of the caller's jobs.
type JobList struct {
	Jobs       []Job `json:"jobs"`
	Total      int   `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// ActionResult is the acknowledgement returned by mutating endpoints.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// GPUInfo describes a worker's accelerator.
type GPUInfo struct {
	Name     string  `json:"name"`
	MemoryGB float64 `json:"memory_gb"`
}

// Worker is a GPU executor registered with the backend.
type Worker struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	IsBusy       bool     `json:"is_busy"`
	CurrentJobID *string  `json:"current_job_id"`
	GPUInfo      *GPUInfo `json:"gpu_info"`
	LastSeenAt   string   `json:"last_seen_at"`
}

// Online reports whether the worker's last heartbeat is recent.
func (w *Worker) Online() bool {
	return w.Status == "online"
}

// WorkerList is the public fleet listing.
type WorkerList struct {
	Workers     []Worker `json:"workers"`
	OnlineCount int      `json:"online_count"`
	TotalCount  int      `json:"total_count"`
}

// GallerySort selects the order of the public gallery.
type GallerySort string

const (
	SortByTime     GallerySort = "time"
	SortByLikes    GallerySort = "likes"
	SortByComments GallerySort = "comments"
)

// Valid reports whether s is one of the sort keys the backend accepts.
func (s GallerySort) Valid() bool {
	switch s {
	case SortByTime, SortByLikes, SortByComments:
		return true
	}
	return false
}

// GalleryItem is a published job. Author is nil when it was published anonymously.
type GalleryItem struct {
	ID           string       `json:"id"`
	ImageURL     string       `json:"image_url"`
	Prompt       string       `json:"prompt"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	Author       *user.Author `json:"author"`
	CreatedAt    string       `json:"created_at"`
	Seed         *int64       `json:"seed"`
	LikeCount    int          `json:"like_count"`
	CommentCount int          `json:"comment_count"`
}

// GalleryPage is one page of the public gallery.
type GalleryPage struct {
	Items      []GalleryItem `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

// GalleryStats are the headline counters of the gallery.
type GalleryStats struct {
	TotalImages int `json:"total_images"`
	TotalUsers  int `json:"total_users"`
	TodayImages int `json:"today_images"`
}

// LikeStatus is the caller's like on a job together with the current count.
type LikeStatus struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// Comment is one comment on a published job.
type Comment struct {
	ID        int64       `json:"id"`
	Content   string      `json:"content"`
	CreatedAt string      `json:"created_at"`
	User      user.Author `json:"user"`
}

// CommentList is one page of comments.
type CommentList struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
}

// TokenResponse is returned by the development login.
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type,omitempty"`
	User        *user.User `json:"user"`
}

// AdminStats are the dashboard counters.
type AdminStats struct {
	TotalUsers     int `json:"total_users"`
	TotalJobs      int `json:"total_jobs"`
	TotalCompleted int `json:"total_completed"`
	TotalFailed    int `json:"total_failed"`
	TodayJobs      int `json:"today_jobs"`
	OnlineWorkers  int `json:"online_workers"`
	TotalWorkers   int `json:"total_workers"`
}

// AdminUser is an account as seen by administrators.
type AdminUser struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Nickname         string `json:"nickname,omitempty"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	TrustLevel       int    `json:"trust_level"`
	IsAdmin          bool   `json:"is_admin"`
	IsActive         bool   `json:"is_active"`
	DailyQuota       int    `json:"daily_quota"`
	TodayUsedCount   int    `json:"today_used_count"`
	TotalGenerations int    `json:"total_generations"`
	CreatedAt        string `json:"created_at"`
}

// DisplayName returns the nickname, falling back to the username.
func (u *AdminUser) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// AdminUserList is one page of accounts.
type AdminUserList struct {
	Users      []AdminUser `json:"users"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
}

// JobOwner identifies the account a job belongs to in admin listings.
type JobOwner struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// AdminJob is a job as seen by administrators.
type AdminJob struct {
	ID             string    `json:"id"`
	User           JobOwner  `json:"user"`
	Status         JobStatus `json:"status"`
	Prompt         string    `json:"prompt"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	WorkerID       *string   `json:"worker_id"`
	ErrorMessage   *string   `json:"error_message"`
	CreatedAt      string    `json:"created_at"`
	FinishedAt     *string   `json:"finished_at"`
	ElapsedSeconds *float64  `json:"elapsed_seconds"`
	ImageURL       *string   `json:"image_url"`
	IsPublic       bool      `json:"is_public"`
	IsDeleted      bool      `json:"is_deleted"`
}

// AdminJobList is one page of the admin job listing.
type AdminJobList struct {
	Jobs       []AdminJob `json:"jobs"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}

// UserJobs is one page of a single account's jobs.
type UserJobs struct {
	User       JobOwner `json:"user"`
	Jobs       []Job    `json:"jobs"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
}

// JobQuery filters the admin job listing. Zero values are left to the backend defaults.
type JobQuery struct {
	Page      int
	Limit     int
	Status    JobStatus
	Search    string
	SortBy    string // created_at or finished_at
	SortOrder string // asc or desc
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTime parses a backend timestamp. Timestamps without a zone are UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
