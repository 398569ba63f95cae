package in

import (
	"context"

	"quill/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.Snapshot, error)
	Edit(ctx context.Context, input dto.EditInput) (dto.Snapshot, error)
	Submit(ctx context.Context) (dto.Snapshot, error)
	Reset(ctx context.Context) dto.Snapshot
	TogglePreview(ctx context.Context) dto.Snapshot
	CopyResponse(ctx context.Context) (dto.CopyOutput, error)
	Snapshot(ctx context.Context) dto.Snapshot
	Measure(ctx context.Context, text string) dto.Metrics
	Subscribe(fn func(dto.Snapshot)) (unsubscribe func())
	Close(ctx context.Context)
}
