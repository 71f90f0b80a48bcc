package indexer

import (
	"context"

	"tripndrop/internal/domain"
)

type actionFunc func(context.Context, domain.Event) error

type actionFactory struct {
	byType map[domain.EventType]actionFunc
}

func newActionFactory(onCreated, onAccepted actionFunc) *actionFactory {
	return &actionFactory{
		byType: map[domain.EventType]actionFunc{
			domain.EventCreated:  onCreated,
			domain.EventAccepted: onAccepted,
		},
	}
}

func (f *actionFactory) get(t domain.EventType) (actionFunc, bool) {
	fn, ok := f.byType[t]
	return fn, ok
}
