package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaygate/sms_relay/internal/relay_service/domain"
)

func TestFormatTimestamp(t *testing.T) {
	instant := time.Date(2024, time.January, 3, 9, 5, 7, 123456789, time.Local)

	formatted := domain.FormatTimestamp(instant)
	assert.Equal(t, "2024-01-03 09:05:07", formatted)
	assert.Len(t, formatted, 19)

	// Same instant must always render identically.
	assert.Equal(t, formatted, domain.FormatTimestamp(instant))
}

func TestRoleDirectoryResolveNumber(t *testing.T) {
	dir := domain.NewRoleDirectory(map[string]string{
		"project_manager":  "+15556667777",
		"content_producer": "+14445558888",
	})

	number, err := dir.ResolveNumber(domain.RoleProjectManager)
	require.NoError(t, err)
	assert.Equal(t, "+15556667777", number)

	assert.True(t, dir.Contains(domain.RoleContentProducer))
	assert.False(t, dir.Contains("intern"))

	_, err = dir.ResolveNumber("intern")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}
