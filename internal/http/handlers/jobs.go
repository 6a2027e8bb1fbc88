package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/tabcanvas/internal/scheduler"
)

// JobRunner is the scheduler capability the jobs endpoints need.
type JobRunner interface {
	JobLister
	RunNow(ctx context.Context, name string) error
}

// JobHandler lists and triggers scheduled jobs.
type JobHandler struct {
	jobs JobRunner
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobs JobRunner) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// ListJobsOutput carries scheduled job state.
type ListJobsOutput struct {
	Body struct {
		Jobs []scheduler.JobStatus `json:"jobs"`
	}
}

// RunJobInput names a job to run.
type RunJobInput struct {
	Name string `path:"name" doc:"Job name" example:"rotate_wallpaper"`
}

// Register registers the job routes with the API.
func (h *JobHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listJobs",
		Method:      "GET",
		Path:        "/api/v1/jobs",
		Summary:     "List scheduled jobs",
		Tags:        []string{"Jobs"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID:   "runJob",
		Method:        "POST",
		Path:          "/api/v1/jobs/{name}/run",
		Summary:       "Run job now",
		Tags:          []string{"Jobs"},
		DefaultStatus: 204,
	}, h.Run)
}

// List returns scheduled jobs.
func (h *JobHandler) List(_ context.Context, _ *struct{}) (*ListJobsOutput, error) {
	out := &ListJobsOutput{}
	out.Body.Jobs = h.jobs.Jobs()
	if out.Body.Jobs == nil {
		out.Body.Jobs = []scheduler.JobStatus{}
	}
	return out, nil
}

// Run runs a job synchronously.
func (h *JobHandler) Run(ctx context.Context, input *RunJobInput) (*struct{}, error) {
	if err := h.jobs.RunNow(ctx, input.Name); err != nil {
		if errors.Is(err, scheduler.ErrUnknownJob) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, apiError(ctx, err, "job failed")
	}
	return nil, nil
}
