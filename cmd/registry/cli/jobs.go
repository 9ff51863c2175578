package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/mcit/lawregistry/jobs"
)

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers against the given Redis options.
func NewJobsCLI(opts asynq.RedisClientOpt) *JobsCLI {
	return &JobsCLI{client: jobs.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// Trigger enqueues a supported job by name.
func (c *JobsCLI) Trigger(ctx context.Context, name, at string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	switch name {
	case jobs.TaskLawsSummaryWarmup:
		return c.client.EnqueueSummaryWarmup(ctx, jobs.SummaryWarmupPayload{At: at})
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

// NewJobsCommand builds `registry jobs`. connect is called lazily so that
// --help works without Redis.
func NewJobsCommand(connect func() (*JobsCLI, error)) *cobra.Command {
	root := &cobra.Command{
		Use:   "jobs",
		Short: "Manage background jobs",
	}

	var at string
	trigger := &cobra.Command{
		Use:   "trigger JOB",
		Short: "Enqueue a job now (supported: " + jobs.TaskLawsSummaryWarmup + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			info, err := c.Trigger(cmd.Context(), args[0], at)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return nil
		},
	}
	trigger.Flags().StringVar(&at, "at", "", "Gregorian day (YYYY-MM-DD) whose Lunar Hijri year is warmed")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show default queue statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			s, err := c.InspectQueue(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
				s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry)
			return nil
		},
	}

	root.AddCommand(trigger, stats)
	return root
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
