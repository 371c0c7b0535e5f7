package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"railbook/internal/domain/seat"
	"railbook/internal/domain/train"
)

type TrainDetailDTO struct {
	Train *train.Train `json:"train"`
	Seats []*seat.Seat `json:"seats"`
}

// GetTrain returns one train with its full seat map, cached briefly in redis.
// The short TTL keeps the seat map close to the ledger while absorbing
// dashboard refresh bursts.
type GetTrain struct {
	redisClient *redis.Client
	trains      TrainStore
	seats       SeatLedger
}

func NewGetTrain(redisClient *redis.Client, trains TrainStore, seats SeatLedger) *GetTrain {
	return &GetTrain{redisClient: redisClient, trains: trains, seats: seats}
}

func (uc *GetTrain) Execute(ctx context.Context, trainID string) (*TrainDetailDTO, error) {
	cacheKey := fmt.Sprintf("train:%s", trainID)

	if uc.redisClient != nil {
		val, err := uc.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var dto TrainDetailDTO
			if err := json.Unmarshal([]byte(val), &dto); err == nil {
				return &dto, nil
			}
		}
	}

	t, err := uc.trains.GetByID(ctx, trainID)
	if err != nil {
		return nil, err
	}

	seats, err := uc.seats.ListByTrain(ctx, trainID)
	if err != nil {
		return nil, fmt.Errorf("get train seats: %w", err)
	}

	dto := &TrainDetailDTO{Train: t, Seats: seats}

	if uc.redisClient != nil {
		data, _ := json.Marshal(dto)
		uc.redisClient.Set(ctx, cacheKey, data, 1*time.Second)
	}

	return dto, nil
}

// ListTrains lists every train for the dashboard. The derived counters are
// recomputed first so the listing never shows a stale availability, even for
// trains whose counters were never touched by a booking.
type ListTrains struct {
	trains TrainStore
}

func NewListTrains(trains TrainStore) *ListTrains {
	return &ListTrains{trains: trains}
}

func (uc *ListTrains) Execute(ctx context.Context) ([]*train.Train, error) {
	if err := uc.trains.RefreshAllAvailability(ctx); err != nil {
		return nil, err
	}
	return uc.trains.List(ctx)
}
