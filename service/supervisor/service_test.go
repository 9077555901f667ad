package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/service/dao"
	"github.com/viant/kaiten/service/group"
)

func TestService_Spawn(t *testing.T) {
	release := make(chan struct{})
	var ended []group.State
	s := New(context.Background(), WithDoneListener(func(v *Visit, final group.State, err error) {
		ended = append(ended, final)
	}))
	run := func(ctx context.Context, g *model.Group) (group.State, error) {
		<-release
		if g.ID == 2 {
			return group.Rejected, nil
		}
		return group.Finished, nil
	}
	require.NoError(t, s.Spawn(model.NewGroup(1, 2, 0, false, 3, 0), run))
	s.Observe(1, group.Seated)
	assert.ErrorIs(t, s.Spawn(model.NewGroup(0, 1, 0, false, 1, 0), run), dao.ErrInvalidID)
	assert.True(t, s.Present(1))
	assert.Equal(t, 1, s.Len())

	seated, err := s.Active(context.Background(), group.Seated)
	require.NoError(t, err)
	require.Len(t, seated, 1)
	assert.Equal(t, model.GroupID(1), seated[0].ID)
	waiting, err := s.Active(context.Background(), group.AwaitingSeat, group.Created)
	require.NoError(t, err)
	assert.Empty(t, waiting)

	s.Close()
	assert.ErrorIs(t, s.Spawn(model.NewGroup(2, 1, 0, false, 1, 0), run), ErrClosed)
	close(release)
	require.NoError(t, s.Wait(context.Background()))
	assert.False(t, s.Present(1))
	assert.EqualValues(t, 1, s.Finished())
	assert.Equal(t, []group.State{group.Finished}, ended)
}

func TestService_Shutdown(t *testing.T) {
	s := New(context.Background())
	run := func(ctx context.Context, g *model.Group) (group.State, error) {
		<-ctx.Done()
		return group.Rejected, control.ErrEvacuated
	}
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Spawn(model.NewGroup(model.GroupID(i), 1, 0, false, 1, 0), run))
	}
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Wait(timeoutCtx), context.DeadlineExceeded)

	s.Shutdown()
	assert.EqualValues(t, 3, s.Failed())
	assert.Equal(t, 0, s.Len())
}
