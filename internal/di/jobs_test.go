package di

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterJobs(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.HistoryRetentionDays = 30
	cfg.MaintenanceSchedule = "0 30 3 * * *"

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	sched, err := RegisterJobs(container, cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, sched)
	assert.Equal(t, 2, sched.Len())
}

func TestRegisterJobs_RetentionDisabled(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.MaintenanceSchedule = "@daily"

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	sched, err := RegisterJobs(container, cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, sched)
	assert.Equal(t, 1, sched.Len())
}

func TestRegisterJobs_HistoryDisabled(t *testing.T) {
	cfg := testConfig(t, false)

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	sched, err := RegisterJobs(container, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, sched)
}

func TestRegisterJobs_BadSchedule(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.MaintenanceSchedule = "every tuesday"

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	_, err = RegisterJobs(container, cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestRegisterJobs_NilContainer(t *testing.T) {
	_, err := RegisterJobs(nil, testConfig(t, false), zerolog.Nop())
	assert.Error(t, err)
}
