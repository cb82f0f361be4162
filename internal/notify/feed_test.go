package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/honeynil/finboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed(t *testing.T) {
	ctx := context.Background()
	f := NewFeed(3)
	assert.Empty(t, f.Recent(0))

	for i := 1; i <= 5; i++ {
		require.NoError(t, f.Publish(ctx, models.Notification{ID: fmt.Sprintf("n%d", i), Title: "t"}))
	}

	all := f.Recent(0)
	require.Len(t, all, 3)
	assert.Equal(t, "n5", all[0].ID)
	assert.Equal(t, "n3", all[2].ID)

	two := f.Recent(2)
	require.Len(t, two, 2)
	two[0].ID = "changed"
	assert.Equal(t, "n5", f.Recent(1)[0].ID)
}
