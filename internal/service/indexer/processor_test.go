package indexer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"tripndrop/internal/apperr"
	"tripndrop/internal/domain"
	"tripndrop/internal/logx"
	"tripndrop/internal/service/indexer"
)

var (
	pickup  = domain.Coordinate{Lat: 12.90, Lng: 77.50}
	dropoff = domain.Coordinate{Lat: 12.95, Lng: 77.60}
)

func event(t domain.EventType) domain.Event {
	return domain.Event{
		Type:       t,
		DeliveryID: "d-1",
		Vehicle:    domain.VehicleCar,
		Pickup:     pickup,
		Dropoff:    dropoff,
		OccurredAt: time.Now().UTC(),
	}
}

func TestProcessor_Handle_CreatedAdds(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	idx := NewMockIndex(ctrl)
	idx.EXPECT().Add(gomock.Any(), "d-1", pickup, dropoff).Return(nil)

	p := indexer.NewProcessor(idx, logx.Nop())
	require.NoError(t, p.Handle(context.Background(), event(domain.EventCreated)))
}

func TestProcessor_Handle_AcceptedRemoves(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	idx := NewMockIndex(ctrl)
	idx.EXPECT().Remove(gomock.Any(), "d-1").Return(nil)

	p := indexer.NewProcessor(idx, logx.Nop())
	require.NoError(t, p.Handle(context.Background(), event(domain.EventAccepted)))
}

func TestProcessor_Handle_IgnoresOtherTypes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := indexer.NewProcessor(NewMockIndex(ctrl), logx.Nop())
	for _, typ := range []domain.EventType{domain.EventStarted, domain.EventDelivered, "refunded"} {
		require.NoError(t, p.Handle(context.Background(), event(typ)))
	}
}

func TestProcessor_Handle_CreatedWithBrokenCoordinates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ev := event(domain.EventCreated)
	ev.Dropoff.Lng = 200

	p := indexer.NewProcessor(NewMockIndex(ctrl), logx.Nop())
	require.ErrorIs(t, p.Handle(context.Background(), ev), apperr.ErrInvalid)
}

func TestProcessor_Handle_IndexErrorReturned(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("redis down")
	idx := NewMockIndex(ctrl)
	idx.EXPECT().Remove(gomock.Any(), "d-1").Return(boom)

	p := indexer.NewProcessor(idx, logx.Nop())
	require.ErrorIs(t, p.Handle(context.Background(), event(domain.EventAccepted)), boom)
}

func TestProcessor_Rebuild(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	idx := NewMockIndex(ctrl)
	repo := NewMockPendingLister(ctrl)

	now := time.Now().UTC()
	pending := []domain.Delivery{
		domain.NewDelivery("a", "s1", domain.Draft{Pickup: domain.Location{Coordinate: pickup}, Dropoff: domain.Location{Coordinate: dropoff}, Vehicle: domain.VehicleCar}, now),
		domain.NewDelivery("b", "s2", domain.Draft{Pickup: domain.Location{Coordinate: dropoff}, Dropoff: domain.Location{Coordinate: pickup}, Vehicle: domain.VehicleScooter}, now),
	}

	var watermark time.Time
	gomock.InOrder(
		repo.EXPECT().ListPending(gomock.Any(), domain.VehicleClass("")).Return(pending, nil),
		idx.EXPECT().Replace(gomock.Any(), pending, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ []domain.Delivery, w time.Time) error {
				watermark = w
				return nil
			}),
	)

	before := time.Now().UTC()
	p := indexer.NewProcessor(idx, logx.Nop())
	n, err := p.Rebuild(context.Background(), repo)
	after := time.Now().UTC()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// the watermark trails the rebuild so late commits are still scanned
	require.False(t, watermark.Before(before.Add(-indexer.WatermarkLag)))
	require.False(t, watermark.After(after.Add(-indexer.WatermarkLag)))
}

func TestProcessor_Rebuild_ReplaceErrorReturned(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("redis down")
	idx := NewMockIndex(ctrl)
	repo := NewMockPendingLister(ctrl)
	repo.EXPECT().ListPending(gomock.Any(), gomock.Any()).Return(nil, nil)
	idx.EXPECT().Replace(gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)

	p := indexer.NewProcessor(idx, logx.Nop())
	_, err := p.Rebuild(context.Background(), repo)
	require.ErrorIs(t, err, boom)
}

func TestProcessor_Rebuild_ListError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("db down")
	repo := NewMockPendingLister(ctrl)
	repo.EXPECT().ListPending(gomock.Any(), gomock.Any()).Return(nil, boom)

	p := indexer.NewProcessor(NewMockIndex(ctrl), logx.Nop())
	_, err := p.Rebuild(context.Background(), repo)
	require.ErrorIs(t, err, boom)
}
