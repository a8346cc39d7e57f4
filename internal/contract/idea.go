package contract

import "github.com/alexanderramin/strategos/internal/app"

type SubmitIdeaRequest = app.SubmitIdeaRequest

type ListIdeasRequest = app.ListIdeasRequest

type ReviewIdeaRequest = app.ReviewIdeaRequest

type ConvertIdeaRequest = app.ConvertIdeaRequest

type ConvertIdeaResult = app.ConvertIdeaResult
