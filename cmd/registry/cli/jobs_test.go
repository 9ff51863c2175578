package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/mcit/lawregistry/jobs"
)

func TestJobsTrigger(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewJobsCLI(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })

	info, err := c.Trigger(context.Background(), jobs.TaskLawsSummaryWarmup, "2025-01-01")
	require.NoError(t, err)
	require.Equal(t, jobs.TaskLawsSummaryWarmup, info.Type)

	_, err = c.Trigger(context.Background(), "mail:send", "")
	require.ErrorContains(t, err, "unsupported job")
}

func TestJobsCommandTrigger(t *testing.T) {
	mr := miniredis.RunT(t)
	cmd := NewJobsCommand(func() (*JobsCLI, error) {
		return NewJobsCLI(asynq.RedisClientOpt{Addr: mr.Addr()}), nil
	})
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"trigger", jobs.TaskLawsSummaryWarmup})
	require.NoError(t, cmd.Execute())
	require.True(t, strings.HasPrefix(out.String(), "enqueued laws:summary_warmup id="), out.String())
}
