package app

import "context"

// The cross-aggregate use cases. Each runs in a single transaction and
// dispatches its events only after commit.

type ExecuteFollowUpUseCase interface {
	Execute(ctx context.Context, req ExecuteFollowUpRequest) (*ExecuteFollowUpResult, error)
}

type ReproposeUseCase interface {
	Repropose(ctx context.Context, req ReproposeRequest) (*ReproposeResult, error)
}

type ConvertIdeaUseCase interface {
	Convert(ctx context.Context, req ConvertIdeaRequest) (*ConvertIdeaResult, error)
}

type SyncKPIsUseCase interface {
	Sync(ctx context.Context, req SyncKPIsRequest) (*SyncKPIsResponse, error)
}
