package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	app, err := NewApp("1.2.3")

	require.NoError(t, err)
	assert.Equal(t, "reviewbot", app.Name)
	assert.Equal(t, "1.2.3", app.Version)

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"serve", "sweep", "backfill", "review"}, names)
}
